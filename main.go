package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/lookout/config"
	"github.com/automoto/lookout/fonts"
	"github.com/automoto/lookout/logging"
	"github.com/automoto/lookout/motion"
	"github.com/automoto/lookout/scenes"
	"github.com/automoto/lookout/systems"
	"github.com/automoto/lookout/tracking"
	"github.com/hajimehoshi/ebiten/v2"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
	Done() bool
}

type Game struct {
	bounds image.Rectangle
	scene  Scene
}

func NewGame(scene Scene) *Game {
	return &Game{
		bounds: image.Rectangle{},
		scene:  scene,
	}
}

func (g *Game) Update() error {
	g.scene.Update()
	if g.scene.Done() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.C.Width, config.C.Height)
	return config.C.Width, config.C.Height
}

func main() {
	fl := registerFlags(flag.CommandLine)
	flag.Parse()

	// Precedence, lowest first: defaults, saved tuning, env, flags.
	envErr := config.LoadEnv(fl.envFile)
	fl.apply(flag.CommandLine)

	logging.Init(logging.Options{
		Level:      config.Log.Level,
		File:       config.Log.File,
		MaxSizeMB:  config.Log.MaxSizeMB,
		MaxAgeDays: config.Log.MaxAgeDays,
		MaxBackups: config.Log.MaxBackups,
		NoColors:   config.Log.NoColors,
		Caller:     config.Log.Caller,
	})
	log := logging.WithComponent("main")
	if envErr != nil {
		log.WithError(envErr).Fatal("[main] bad environment settings")
	}

	if !fl.noPersist {
		if err := systems.InitPersistence("lookout"); err == nil {
			if saved, err := systems.LoadTuning(); err == nil && saved != nil {
				systems.ApplyTuning(saved)
				// Saved tuning sits below env and flags.
				if err := config.ApplyEnv(os.LookupEnv); err != nil {
					log.WithError(err).Fatal("[main] bad environment settings")
				}
				fl.apply(flag.CommandLine)
			}
		}
	}

	if err := config.Validate(); err != nil {
		log.WithError(err).Fatal("[main] invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline()
	if err != nil {
		log.WithError(err).Fatal("[main] could not start tracking")
	}
	defer p.Close()

	state := tracking.NewSharedTrackState()
	producer := tracking.NewProducer(p.source, p.detector, state, config.Producer())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := producer.Run(ctx); err != nil {
			log.WithError(err).Error("[main] tracking stopped, eyes will stay centered")
		}
	}()

	ctrl, err := motion.NewController(state, config.MotionController())
	if err != nil {
		log.WithError(err).Fatal("[main] invalid motion settings")
	}

	if err := fonts.LoadDefaults(); err != nil {
		log.WithError(err).Warn("[main] HUD fonts unavailable")
	}

	ebiten.SetWindowSize(config.C.Width, config.C.Height)
	ebiten.SetWindowTitle(config.C.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.C.TPS)

	scene := scenes.NewEyesScene(scenes.EyesDeps{
		Controller: ctrl,
		State:      state,
		Stats:      producer.Stats,
		Seed:       uint64(time.Now().UnixNano()),
	})

	log.WithFields(logging.Fields{
		"source":   config.Capture.Source,
		"detector": config.Capture.Detector,
		"tps":      config.C.TPS,
	}).Info("[main] starting")

	runErr := ebiten.RunGame(NewGame(scene))
	stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		log.Warn("[main] tracking did not stop in time")
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		log.WithError(runErr).Error("[main] render loop failed")
		p.Close()
		os.Exit(1)
	}
	log.Info("[main] bye")
}
