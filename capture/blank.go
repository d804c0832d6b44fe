package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/automoto/lookout/tracking"
)

// BlankSource emits pixel-less frames of a fixed size. It pairs with
// detectors that do not look at pixels, such as the scripted orbit.
type BlankSource struct {
	width, height int
	ticker        *time.Ticker
	seq           uint64
}

func NewBlankSource(width, height int, interval time.Duration) (*BlankSource, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("blank source size %dx%d: %w", width, height, tracking.ErrMalformedFrame)
	}
	s := &BlankSource{width: width, height: height}
	if interval > 0 {
		s.ticker = time.NewTicker(interval)
	}
	return s, nil
}

// NextFrame blocks until the next tick. It is meant for a single consumer.
func (s *BlankSource) NextFrame(ctx context.Context) (tracking.Frame, error) {
	if err := ctx.Err(); err != nil {
		return tracking.Frame{}, err
	}
	if s.ticker != nil {
		select {
		case <-ctx.Done():
			return tracking.Frame{}, ctx.Err()
		case <-s.ticker.C:
		}
	}

	s.seq++
	return tracking.Frame{
		Width:      s.width,
		Height:     s.height,
		Seq:        s.seq,
		CapturedAt: time.Now(),
	}, nil
}

func (s *BlankSource) Close() error {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	return nil
}
