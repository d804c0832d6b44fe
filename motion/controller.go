package motion

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/automoto/lookout/tracking"
)

// Config holds motion tuning. Angles are radians, rates are per second.
type Config struct {
	SmoothingRate   float64       // convergence speed toward the target; higher is snappier
	MaxYaw          float64       // maximum horizontal deflection
	MaxPitch        float64       // maximum vertical deflection
	InvertYaw       bool          // flip the X -> yaw mapping
	InvertPitch     bool          // flip the Y -> pitch mapping
	MaxAngularSpeed float64       // per-axis speed cap; 0 disables
	LostFaceHold    time.Duration // keep the last face target this long before centering; 0 centers at once
}

var (
	ErrSmoothingRate = errors.New("smoothing rate must be positive")
	ErrDeflection    = errors.New("maximum deflection must be positive and at most 90 degrees")
)

// Validate rejects settings the controller cannot run with.
func (c Config) Validate() error {
	if !(c.SmoothingRate > 0) || math.IsInf(c.SmoothingRate, 0) {
		return fmt.Errorf("%w: %v", ErrSmoothingRate, c.SmoothingRate)
	}
	if !(c.MaxYaw > 0) || c.MaxYaw > math.Pi/2 {
		return fmt.Errorf("%w: yaw %v", ErrDeflection, c.MaxYaw)
	}
	if !(c.MaxPitch > 0) || c.MaxPitch > math.Pi/2 {
		return fmt.Errorf("%w: pitch %v", ErrDeflection, c.MaxPitch)
	}
	if c.MaxAngularSpeed < 0 || math.IsNaN(c.MaxAngularSpeed) {
		return fmt.Errorf("max angular speed must not be negative: %v", c.MaxAngularSpeed)
	}
	if c.LostFaceHold < 0 {
		return fmt.Errorf("lost face hold must not be negative: %v", c.LostFaceHold)
	}
	return nil
}

// Controller turns snapshots into an Orientation. It is owned by the render
// loop and must only be ticked from there.
type Controller struct {
	reader tracking.SnapshotReader
	cfg    Config

	current Orientation
	target  Orientation

	lastFace  Orientation
	haveFace  bool
	sinceSeen time.Duration
	tracking  bool
}

func NewController(reader tracking.SnapshotReader, cfg Config) (*Controller, error) {
	if reader == nil {
		return nil, errors.New("motion controller needs a snapshot reader")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{reader: reader, cfg: cfg}, nil
}

// Tick advances the controller by dt and returns this tick's orientation.
func (c *Controller) Tick(dt time.Duration) Orientation {
	pos, ok := c.reader.Read()

	if dt < 0 {
		dt = 0
	}

	if ok {
		c.target = c.TargetFor(pos)
		c.lastFace = c.target
		c.haveFace = true
		c.sinceSeen = 0
	} else {
		c.sinceSeen += dt
		if c.haveFace && c.sinceSeen < c.cfg.LostFaceHold {
			c.target = c.lastFace
		} else {
			c.target = Centered()
		}
	}
	c.tracking = ok

	seconds := dt.Seconds()
	alpha := math.Min(1, c.cfg.SmoothingRate*seconds)

	stepYaw := (c.target.Yaw - c.current.Yaw) * alpha
	stepPitch := (c.target.Pitch - c.current.Pitch) * alpha
	if c.cfg.MaxAngularSpeed > 0 {
		limit := c.cfg.MaxAngularSpeed * seconds
		stepYaw = clampSym(stepYaw, limit)
		stepPitch = clampSym(stepPitch, limit)
	}

	// Bounds that just shrank are reached by smoothing, not by a snap.
	limitYaw := math.Max(c.cfg.MaxYaw, math.Abs(c.current.Yaw))
	limitPitch := math.Max(c.cfg.MaxPitch, math.Abs(c.current.Pitch))
	c.current = Orientation{
		Yaw:   c.current.Yaw + stepYaw,
		Pitch: c.current.Pitch + stepPitch,
	}.Clamp(limitYaw, limitPitch)

	return c.current
}

// TargetFor maps a normalized position linearly onto the deflection range.
func (c *Controller) TargetFor(pos tracking.NormalizedPosition) Orientation {
	pos = pos.Clamped()
	x, y := pos.X, pos.Y
	if c.cfg.InvertYaw {
		x = -x
	}
	if c.cfg.InvertPitch {
		y = -y
	}
	return Orientation{
		Yaw:   x * c.cfg.MaxYaw,
		Pitch: y * c.cfg.MaxPitch,
	}.Clamp(c.cfg.MaxYaw, c.cfg.MaxPitch)
}

// StepBound is the largest per-axis change a single tick of dt can produce.
func (c *Controller) StepBound(dt time.Duration) Orientation {
	if dt <= 0 {
		return Orientation{}
	}
	alpha := math.Min(1, c.cfg.SmoothingRate*dt.Seconds())
	bound := Orientation{Yaw: 2 * c.cfg.MaxYaw * alpha, Pitch: 2 * c.cfg.MaxPitch * alpha}
	if c.cfg.MaxAngularSpeed > 0 {
		limit := c.cfg.MaxAngularSpeed * dt.Seconds()
		bound.Yaw = math.Min(bound.Yaw, limit)
		bound.Pitch = math.Min(bound.Pitch, limit)
	}
	return bound
}

// Current returns the orientation produced by the last tick.
func (c *Controller) Current() Orientation {
	return c.current
}

// Target returns the orientation the controller is converging to.
func (c *Controller) Target() Orientation {
	return c.target
}

// Tracking reports whether the last tick saw a face.
func (c *Controller) Tracking() bool {
	return c.tracking
}

// Config returns the active tuning.
func (c *Controller) Config() Config {
	return c.cfg
}

// SetConfig swaps tuning at runtime. The target is re-clamped to the new
// bounds; the current orientation follows it over the next ticks.
func (c *Controller) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.target = c.target.Clamp(cfg.MaxYaw, cfg.MaxPitch)
	c.lastFace = c.lastFace.Clamp(cfg.MaxYaw, cfg.MaxPitch)
	return nil
}

// Reset forgets the last seen face and aims at center. The eyes glide there
// at the usual smoothing rate.
func (c *Controller) Reset() {
	c.target = Centered()
	c.lastFace = Centered()
	c.haveFace = false
	c.sinceSeen = 0
	c.tracking = false
}
