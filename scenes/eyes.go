package scenes

import (
	"sync"

	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/motion"
	"github.com/automoto/lookout/systems"
	"github.com/automoto/lookout/systems/factory"
	"github.com/automoto/lookout/tracking"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// EyesDeps is what the scene needs from the tracking side.
type EyesDeps struct {
	Controller *motion.Controller
	State      *tracking.SharedTrackState
	Stats      func() tracking.ProducerStats
	Seed       uint64 // blink schedule seed
}

// EyesScene draws the eyes and runs the per-frame gaze, blink and tuning
// systems. It is the only scene.
type EyesScene struct {
	deps EyesDeps
	ecs  *ecs.ECS
	once sync.Once
}

func NewEyesScene(deps EyesDeps) *EyesScene {
	return &EyesScene{deps: deps}
}

func (s *EyesScene) Update() {
	s.once.Do(s.configure)
	s.ecs.Update()
}

func (s *EyesScene) Draw(screen *ebiten.Image) {
	if s.ecs == nil {
		screen.Fill(cfg.Eyes.Background)
		return
	}
	s.ecs.Draw(screen)
}

// Done reports whether the user asked to quit.
func (s *EyesScene) Done() bool {
	if s.ecs == nil {
		return false
	}
	entry, ok := components.Status.First(s.ecs.World)
	if !ok {
		return false
	}
	return components.Status.Get(entry).Quit
}

func (s *EyesScene) configure() {
	ecs := ecs.NewECS(donburi.NewWorld())

	ecs.AddSystem(systems.UpdateInput)
	ecs.AddSystem(systems.UpdateTuning) // Must run before UpdateGaze
	ecs.AddSystem(systems.UpdateGaze)
	ecs.AddSystem(systems.UpdateBlink)

	ecs.AddRenderer(cfg.Default, systems.DrawEyes)
	ecs.AddRenderer(cfg.Default, systems.DrawHUD)

	s.ecs = ecs

	factory.CreateInput(s.ecs)
	factory.CreateStatus(s.ecs, s.deps.State, s.deps.Stats)
	factory.CreateGaze(s.ecs, s.deps.Controller, s.deps.Seed)
	factory.CreateEyes(s.ecs)
}
