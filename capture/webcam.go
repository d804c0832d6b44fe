//go:build gocv

package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/automoto/lookout/logging"
	"github.com/automoto/lookout/tracking"
	"gocv.io/x/gocv"
)

// Webcam reads frames from a local video device through OpenCV.
type Webcam struct {
	mu     sync.Mutex
	device *gocv.VideoCapture
	mat    gocv.Mat
	seq    uint64
}

// OpenWebcam opens camera id. Failing to open is fatal for the caller;
// failing to read later is not.
func OpenWebcam(id int) (*Webcam, error) {
	device, err := gocv.VideoCaptureDevice(id)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", id, err)
	}
	if !device.IsOpened() {
		device.Close()
		return nil, fmt.Errorf("open camera %d: device not available", id)
	}
	logging.WithComponent("capture").WithField("camera", id).Info("[capture] camera opened")
	return &Webcam{device: device, mat: gocv.NewMat()}, nil
}

func (w *Webcam) NextFrame(ctx context.Context) (tracking.Frame, error) {
	if err := ctx.Err(); err != nil {
		return tracking.Frame{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if ok := w.device.Read(&w.mat); !ok || w.mat.Empty() {
		return tracking.Frame{}, fmt.Errorf("%w: camera read failed", tracking.ErrNoFrame)
	}
	img, err := w.mat.ToImage()
	if err != nil {
		return tracking.Frame{}, fmt.Errorf("%w: convert frame: %v", tracking.ErrNoFrame, err)
	}

	w.seq++
	return tracking.FrameFromImage(img, w.seq), nil
}

func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mat.Close()
	return w.device.Close()
}
