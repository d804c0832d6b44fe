package components

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
)

// EyeData is one drawn eye. Pupil is the iris offset from Center in screen
// pixels; Lid is 0 when open and 1 when shut.
type EyeData struct {
	Center math.Vec2
	Radius float64
	Pupil  math.Vec2
	Lid    float64
}

var Eye = donburi.NewComponentType[EyeData]()
