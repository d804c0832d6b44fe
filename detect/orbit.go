package detect

import (
	"math"
	"sync"
	"time"

	"github.com/automoto/lookout/tracking"
)

// Orbit is a scripted detector for running without a camera. It reports one
// face travelling a figure-eight across the frame, plus a smaller fixed
// decoy, and hides both for part of each cycle.
type Orbit struct {
	period  time.Duration
	visible time.Duration
	hidden  time.Duration
	now     func() time.Time

	once  sync.Once
	start time.Time
}

// NewOrbit builds an orbit that completes one lap per period. With visible
// and hidden both positive the faces disappear for hidden after every
// visible stretch.
func NewOrbit(period, visible, hidden time.Duration) *Orbit {
	if period <= 0 {
		period = 8 * time.Second
	}
	return &Orbit{period: period, visible: visible, hidden: hidden, now: time.Now}
}

// Visible reports whether faces are shown at elapsed time t.
func (o *Orbit) Visible(t time.Duration) bool {
	if o.visible <= 0 || o.hidden <= 0 {
		return true
	}
	return t%(o.visible+o.hidden) < o.visible
}

// At returns the primary face for a width x height frame at elapsed time t.
func (o *Orbit) At(t time.Duration, width, height int) tracking.FaceRegion {
	phase := 2 * math.Pi * float64(t%o.period) / float64(o.period)
	halfW, halfH := float64(width)/2, float64(height)/2

	cx := halfW + 0.8*halfW*math.Sin(phase)
	cy := halfH + 0.6*halfH*math.Sin(2*phase)

	size := float64(min(width, height)) / 4
	return tracking.FaceRegion{
		X:      int(math.Round(cx - size/2)),
		Y:      int(math.Round(cy - size/2)),
		Width:  int(size),
		Height: int(size),
		Score:  0.9,
	}
}

func (o *Orbit) decoy(width, height int) tracking.FaceRegion {
	size := min(width, height) / 10
	return tracking.FaceRegion{X: width / 10, Y: height / 10, Width: size, Height: size, Score: 0.6}
}

func (o *Orbit) Detect(frame tracking.Frame) ([]tracking.FaceRegion, error) {
	o.once.Do(func() { o.start = o.now() })
	t := o.now().Sub(o.start)

	if !o.Visible(t) {
		return nil, nil
	}
	return []tracking.FaceRegion{
		o.decoy(frame.Width, frame.Height),
		o.At(t, frame.Width, frame.Height),
	}, nil
}
