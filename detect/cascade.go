//go:build gocv

package detect

import (
	"errors"
	"fmt"

	"github.com/automoto/lookout/logging"
	"github.com/automoto/lookout/tracking"
	"gocv.io/x/gocv"
)

// Cascade detects faces with an OpenCV Haar cascade.
type Cascade struct {
	classifier gocv.CascadeClassifier
	gray       gocv.Mat
}

// NewCascade loads the classifier file at path.
func NewCascade(path string) (*Cascade, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("load cascade %s", path)
	}
	logging.WithComponent("detect").WithField("cascade", path).Info("[detect] cascade loaded")
	return &Cascade{classifier: classifier, gray: gocv.NewMat()}, nil
}

func (c *Cascade) Detect(frame tracking.Frame) ([]tracking.FaceRegion, error) {
	if frame.Image == nil {
		return nil, errors.New("cascade detector needs frame pixels")
	}

	mat, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	gocv.CvtColor(mat, &c.gray, gocv.ColorRGBToGray)
	gocv.EqualizeHist(c.gray, &c.gray)

	rects := c.classifier.DetectMultiScale(c.gray)
	regions := make([]tracking.FaceRegion, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, tracking.RegionFromRect(r))
	}
	return regions, nil
}

func (c *Cascade) Close() error {
	c.gray.Close()
	return c.classifier.Close()
}
