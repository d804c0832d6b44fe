//go:build !gocv

package detect

import (
	"errors"

	"github.com/automoto/lookout/tracking"
)

// ErrNoOpenCV is returned by the cascade detector in builds without the gocv tag.
var ErrNoOpenCV = errors.New("built without OpenCV support; rebuild with -tags gocv")

// Cascade is unavailable in this build.
type Cascade struct{}

func NewCascade(path string) (*Cascade, error) {
	return nil, ErrNoOpenCV
}

func (c *Cascade) Detect(tracking.Frame) ([]tracking.FaceRegion, error) {
	return nil, ErrNoOpenCV
}

func (c *Cascade) Close() error {
	return nil
}
