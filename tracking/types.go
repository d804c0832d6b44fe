// Package tracking turns camera frames into a single normalized face position
// and hands it to the render loop through a latest-wins slot.
package tracking

import (
	"context"
	"errors"
	"image"
	"math"
	"time"
)

var (
	// ErrNoFrame is returned by a FrameSource when no frame is available right now.
	ErrNoFrame = errors.New("no frame available")
	// ErrMalformedFrame marks frames whose dimensions cannot be normalized against.
	ErrMalformedFrame = errors.New("malformed frame")
)

// Frame is one still image from a video source. Only Width and Height matter
// to the tracker; Image is carried for detectors that need pixels.
type Frame struct {
	Image      image.Image
	Width      int
	Height     int
	Seq        uint64
	CapturedAt time.Time
}

// FrameFromImage builds a Frame sized from img's bounds.
func FrameFromImage(img image.Image, seq uint64) Frame {
	b := img.Bounds()
	return Frame{
		Image:      img,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Seq:        seq,
		CapturedAt: time.Now(),
	}
}

// Valid reports whether the frame has positive dimensions.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0
}

// FaceRegion is a detected face's bounding box in frame pixels, origin top-left.
type FaceRegion struct {
	X, Y          int
	Width, Height int
	Score         float64 // detector confidence, informational only
}

// Area returns Width*Height, or 0 for degenerate boxes.
func (r FaceRegion) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Center returns the box center in float pixels.
func (r FaceRegion) Center() (float64, float64) {
	return float64(r.X) + float64(r.Width)/2, float64(r.Y) + float64(r.Height)/2
}

// RegionFromRect converts an image.Rectangle to a FaceRegion.
func RegionFromRect(rect image.Rectangle) FaceRegion {
	return FaceRegion{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}
}

// NormalizedPosition is a face center relative to the frame center, each axis
// in [-1, 1]. X > 0 is right of center in the camera image, Y > 0 is below.
type NormalizedPosition struct {
	X, Y float64
}

// Clamped returns p with both axes forced into [-1, 1]. NaN collapses to 0.
func (p NormalizedPosition) Clamped() NormalizedPosition {
	return NormalizedPosition{X: clampUnit(p.X), Y: clampUnit(p.Y)}
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// FrameSource supplies frames. A non-nil error is a transient failure; the
// caller skips the cycle and retries.
type FrameSource interface {
	NextFrame(ctx context.Context) (Frame, error)
}

// FaceDetector finds faces in one frame. It is only ever called from the
// producer goroutine.
type FaceDetector interface {
	Detect(frame Frame) ([]FaceRegion, error)
}

// SnapshotReader exposes the latest published position. ok is false when no
// face is currently known.
type SnapshotReader interface {
	Read() (pos NormalizedPosition, ok bool)
}

// FrameSourceFunc adapts a function to FrameSource.
type FrameSourceFunc func(ctx context.Context) (Frame, error)

func (f FrameSourceFunc) NextFrame(ctx context.Context) (Frame, error) { return f(ctx) }

// FaceDetectorFunc adapts a function to FaceDetector.
type FaceDetectorFunc func(frame Frame) ([]FaceRegion, error)

func (f FaceDetectorFunc) Detect(frame Frame) ([]FaceRegion, error) { return f(frame) }
