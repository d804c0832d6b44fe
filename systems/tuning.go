package systems

import (
	"fmt"
	"math"

	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/logging"
	"github.com/yohamta/donburi/ecs"
)

const (
	minSmoothingRate = 0.5
	maxSmoothingRate = 60
	noticeFrames     = 90
)

// UpdateTuning applies keyboard tuning to the live controller and saves it.
// Must run AFTER UpdateInput and BEFORE UpdateGaze.
func UpdateTuning(ecs *ecs.ECS) {
	input := getOrCreateInput(ecs)
	statusEntry, ok := components.Status.First(ecs.World)
	if !ok {
		return
	}
	status := components.Status.Get(statusEntry)
	if status.NoticeFrames > 0 {
		status.NoticeFrames--
	}

	if GetAction(input, cfg.ActionQuit).JustPressed {
		status.Quit = true
		return
	}
	if GetAction(input, cfg.ActionToggleHUD).JustPressed {
		status.ShowHUD = !status.ShowHUD
		saveTuning(status)
	}

	gazeEntry, ok := components.Gaze.First(ecs.World)
	if !ok {
		return
	}
	gaze := components.Gaze.Get(gazeEntry)
	if gaze.Controller == nil {
		return
	}

	if GetAction(input, cfg.ActionRecenter).JustPressed {
		gaze.Controller.Reset()
		notify(status, "recentered")
	}

	changed := false
	switch {
	case GetAction(input, cfg.ActionSmoothingUp).JustPressed:
		cfg.Motion.SmoothingRate = stepSmoothing(cfg.Motion.SmoothingRate, cfg.Input.SmoothingStep)
		notify(status, fmt.Sprintf("smoothing %.1f/s", cfg.Motion.SmoothingRate))
		changed = true
	case GetAction(input, cfg.ActionSmoothingDown).JustPressed:
		cfg.Motion.SmoothingRate = stepSmoothing(cfg.Motion.SmoothingRate, 1/cfg.Input.SmoothingStep)
		notify(status, fmt.Sprintf("smoothing %.1f/s", cfg.Motion.SmoothingRate))
		changed = true
	}
	if GetAction(input, cfg.ActionMirror).JustPressed {
		cfg.Motion.InvertYaw = !cfg.Motion.InvertYaw
		notify(status, onOff("mirror", cfg.Motion.InvertYaw))
		changed = true
	}
	if GetAction(input, cfg.ActionInvertPitch).JustPressed {
		cfg.Motion.InvertPitch = !cfg.Motion.InvertPitch
		notify(status, onOff("invert pitch", cfg.Motion.InvertPitch))
		changed = true
	}
	if !changed {
		return
	}

	if err := gaze.Controller.SetConfig(cfg.MotionController()); err != nil {
		logging.WithComponent("tuning").WithError(err).Warn("[tuning] rejected motion settings")
		return
	}
	saveTuning(status)
}

func stepSmoothing(rate, factor float64) float64 {
	next := math.Round(rate*factor*10) / 10
	return math.Max(minSmoothingRate, math.Min(maxSmoothingRate, next))
}

func notify(status *components.StatusData, msg string) {
	status.Notice = msg
	status.NoticeFrames = noticeFrames
}

func onOff(label string, on bool) string {
	return label + " " + onOffWord(on)
}

func onOffWord(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// storeTuning is swapped out in tests.
var storeTuning = SaveTuning

func saveTuning(status *components.StatusData) {
	if err := storeTuning(CurrentTuning(status.ShowHUD)); err != nil {
		notify(status, "tuning not saved")
	}
}
