package systems

import (
	gomath "math"

	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/motion"
	"github.com/automoto/lookout/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/features/math"
)

// UpdateGaze advances the motion controller by one fixed tick and points
// every eye at the result. The controller is ticked exactly once per frame.
func UpdateGaze(ecs *ecs.ECS) {
	gazeEntry, ok := components.Gaze.First(ecs.World)
	if !ok {
		return
	}
	gaze := components.Gaze.Get(gazeEntry)
	if gaze.Controller == nil {
		return
	}

	gaze.Current = gaze.Controller.Tick(cfg.Tick())
	gaze.Target = gaze.Controller.Target()
	gaze.Tracking = gaze.Controller.Tracking()

	mc := gaze.Controller.Config()
	offset := PupilOffset(gaze.Current, mc.MaxYaw, mc.MaxPitch)

	tags.Eye.Each(ecs.World, func(entry *donburi.Entry) {
		eye := components.Eye.Get(entry)
		travel := IrisTravel(eye.Radius)
		eye.Pupil = math.NewVec2(offset.X*travel, offset.Y*travel)
	})
}

// PupilOffset maps an orientation onto a unit-disc pupil offset in screen
// axes. Positive yaw looks toward the camera image's right, which is the
// viewer's left, so it moves the pupil toward screen-left. Positive pitch
// moves it down.
func PupilOffset(o motion.Orientation, maxYaw, maxPitch float64) math.Vec2 {
	if maxYaw <= 0 || maxPitch <= 0 {
		return math.Vec2{}
	}
	x := -o.Yaw / maxYaw
	y := o.Pitch / maxPitch
	if n := gomath.Hypot(x, y); n > 1 {
		x, y = x/n, y/n
	}
	return math.NewVec2(x, y)
}

// IrisTravel is how far, in pixels, the iris center may move from the eye
// center at full deflection.
func IrisTravel(radius float64) float64 {
	iris := radius * cfg.Eyes.IrisRatio
	return (radius - iris) * cfg.Eyes.TravelRatio
}
