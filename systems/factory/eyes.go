package factory

import (
	"math/rand/v2"

	"github.com/automoto/lookout/archetypes"
	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/motion"
	"github.com/automoto/lookout/tracking"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"github.com/yohamta/donburi/features/math"
)

// CreateEyes lays cfg.Eyes.Count eyes out in a row centered on the screen.
func CreateEyes(ecs *ecs.ECS) []*donburi.Entry {
	count := cfg.Eyes.Count
	width := float64(count-1) * cfg.Eyes.Spacing
	startX := float64(cfg.C.Width)/2 - width/2
	y := float64(cfg.C.Height) / 2

	eyes := make([]*donburi.Entry, 0, count)
	for i := 0; i < count; i++ {
		eye := archetypes.Eye.Spawn(ecs)
		components.Eye.SetValue(eye, components.EyeData{
			Center: math.NewVec2(startX+float64(i)*cfg.Eyes.Spacing, y),
			Radius: cfg.Eyes.Radius,
		})
		eyes = append(eyes, eye)
	}
	return eyes
}

// CreateGaze creates the shared gaze driven by ctrl. seed fixes the blink
// schedule.
func CreateGaze(ecs *ecs.ECS, ctrl *motion.Controller, seed uint64) *donburi.Entry {
	gaze := archetypes.Gaze.Spawn(ecs)
	components.Gaze.SetValue(gaze, components.GazeData{Controller: ctrl})

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	components.Blink.SetValue(gaze, components.BlinkData{
		Rand: rng,
		Wait: cfg.Blink.MinInterval,
	})
	return gaze
}

func CreateStatus(ecs *ecs.ECS, state *tracking.SharedTrackState, stats func() tracking.ProducerStats) *donburi.Entry {
	status := archetypes.Status.Spawn(ecs)
	components.Status.SetValue(status, components.StatusData{
		State:   state,
		Stats:   stats,
		ShowHUD: cfg.Debug.ShowHUD,
	})
	return status
}

func CreateInput(ecs *ecs.ECS) *donburi.Entry {
	return archetypes.Input.Spawn(ecs)
}
