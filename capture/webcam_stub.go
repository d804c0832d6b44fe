//go:build !gocv

package capture

import (
	"context"
	"errors"

	"github.com/automoto/lookout/tracking"
)

// ErrNoOpenCV is returned by camera functions in builds without the gocv tag.
var ErrNoOpenCV = errors.New("built without OpenCV support; rebuild with -tags gocv")

// Webcam is unavailable in this build.
type Webcam struct{}

func OpenWebcam(id int) (*Webcam, error) {
	return nil, ErrNoOpenCV
}

func (w *Webcam) NextFrame(ctx context.Context) (tracking.Frame, error) {
	return tracking.Frame{}, ErrNoOpenCV
}

func (w *Webcam) Close() error {
	return nil
}
