// Package motion converts the latest tracked face position into a smooth,
// bounded eye orientation, one render tick at a time.
package motion

import "math"

// Orientation is a look direction in radians. Yaw > 0 turns the eyes toward
// the camera image's right, which is the viewer's left when camera and screen
// both face the viewer. Pitch > 0 turns the eyes down.
type Orientation struct {
	Yaw   float64
	Pitch float64
}

// Centered is the neutral pose.
func Centered() Orientation {
	return Orientation{}
}

// Degrees returns yaw and pitch in degrees, for display.
func (o Orientation) Degrees() (yaw, pitch float64) {
	return Degrees(o.Yaw), Degrees(o.Pitch)
}

// Sub returns the per-axis difference o - other.
func (o Orientation) Sub(other Orientation) Orientation {
	return Orientation{Yaw: o.Yaw - other.Yaw, Pitch: o.Pitch - other.Pitch}
}

// Within reports whether both axes are within eps of other.
func (o Orientation) Within(other Orientation, eps float64) bool {
	return math.Abs(o.Yaw-other.Yaw) <= eps && math.Abs(o.Pitch-other.Pitch) <= eps
}

// Clamp bounds each axis to ±maxYaw / ±maxPitch. NaN collapses to 0.
func (o Orientation) Clamp(maxYaw, maxPitch float64) Orientation {
	return Orientation{
		Yaw:   clampSym(o.Yaw, maxYaw),
		Pitch: clampSym(o.Pitch, maxPitch),
	}
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

func clampSym(v, limit float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	}
	return v
}
