package systems

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/motion"
	"github.com/automoto/lookout/systems/factory"
	"github.com/automoto/lookout/tracking"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

func resetConfig(t *testing.T) {
	t.Helper()
	cfg.Reset()
	t.Cleanup(cfg.Reset)
}

type world struct {
	ecs    *ecs.ECS
	state  *tracking.SharedTrackState
	ctrl   *motion.Controller
	eyes   []*donburi.Entry
	gaze   *donburi.Entry
	status *donburi.Entry
	input  *donburi.Entry
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		ecs:   ecs.NewECS(donburi.NewWorld()),
		state: tracking.NewSharedTrackState(),
	}
	ctrl, err := motion.NewController(w.state, cfg.MotionController())
	require.NoError(t, err)
	w.ctrl = ctrl
	w.input = factory.CreateInput(w.ecs)
	w.status = factory.CreateStatus(w.ecs, w.state, nil)
	w.gaze = factory.CreateGaze(w.ecs, ctrl, 7)
	w.eyes = factory.CreateEyes(w.ecs)
	return w
}

// press simulates a key going down this frame.
func (w *world) press(id cfg.ActionID) {
	in := components.Input.Get(w.input)
	in.Previous = [cfg.ActionCount]bool{}
	in.Current = [cfg.ActionCount]bool{}
	in.Current[id] = true
}

func TestPupilOffset(t *testing.T) {
	t.Parallel()
	maxYaw, maxPitch := motion.Radians(45), motion.Radians(30)
	approx := cmpopts.EquateApprox(0, 1e-9)

	tests := []struct {
		name  string
		o     motion.Orientation
		wantX float64
		wantY float64
	}{
		{"centered", motion.Centered(), 0, 0},
		{"positive yaw looks screen-left", motion.Orientation{Yaw: maxYaw / 2}, -0.5, 0},
		{"negative pitch looks up", motion.Orientation{Pitch: -maxPitch / 2}, 0, -0.5},
		{"corner is pulled onto the disc", motion.Orientation{Yaw: maxYaw, Pitch: maxPitch}, -math.Sqrt2 / 2, math.Sqrt2 / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PupilOffset(tt.o, maxYaw, maxPitch)
			if diff := cmp.Diff([]float64{tt.wantX, tt.wantY}, []float64{got.X, got.Y}, approx); diff != "" {
				t.Errorf("offset mismatch (-want +got):\n%s", diff)
			}
			assert.LessOrEqual(t, math.Hypot(got.X, got.Y), 1+1e-9)
		})
	}

	zero := PupilOffset(motion.Orientation{Yaw: 1}, 0, maxPitch)
	assert.Zero(t, zero.X)
	assert.Zero(t, zero.Y)
}

func TestIrisTravel(t *testing.T) {
	resetConfig(t)
	cfg.Eyes.IrisRatio = 0.5
	cfg.Eyes.TravelRatio = 1
	assert.InDelta(t, 50, IrisTravel(100), 1e-9)

	cfg.Eyes.TravelRatio = 0.5
	assert.InDelta(t, 25, IrisTravel(100), 1e-9)
}

func TestCreateEyesLayout(t *testing.T) {
	resetConfig(t)
	cfg.Eyes.Count = 3
	cfg.Eyes.Spacing = 200

	w := newWorld(t)
	require.Len(t, w.eyes, 3)
	var xs []float64
	for _, e := range w.eyes {
		eye := components.Eye.Get(e)
		assert.Equal(t, float64(cfg.C.Height)/2, eye.Center.Y)
		assert.Equal(t, cfg.Eyes.Radius, eye.Radius)
		xs = append(xs, eye.Center.X)
	}
	mid := float64(cfg.C.Width) / 2
	assert.Equal(t, []float64{mid - 200, mid, mid + 200}, xs)
}

func TestUpdateGazeFollowsFace(t *testing.T) {
	resetConfig(t)
	w := newWorld(t)

	// Face in the top-right of the camera image.
	w.state.PublishFace(tracking.NormalizedPosition{X: 1, Y: -1})
	for i := 0; i < 300; i++ {
		UpdateGaze(w.ecs)
	}

	gaze := components.Gaze.Get(w.gaze)
	assert.True(t, gaze.Tracking)
	yaw, pitch := gaze.Current.Degrees()
	assert.InDelta(t, cfg.Motion.MaxYawDegrees, yaw, 1e-3)
	assert.InDelta(t, -cfg.Motion.MaxPitchDegrees, pitch, 1e-3)

	for _, e := range w.eyes {
		eye := components.Eye.Get(e)
		assert.Less(t, eye.Pupil.X, 0.0, "pupil moves toward screen-left")
		assert.Less(t, eye.Pupil.Y, 0.0, "pupil moves up")
		assert.LessOrEqual(t, math.Hypot(eye.Pupil.X, eye.Pupil.Y), IrisTravel(eye.Radius)+1e-9)
	}

	// Face lost: the eyes drift back to center.
	w.state.PublishNone()
	for i := 0; i < 600; i++ {
		UpdateGaze(w.ecs)
	}
	assert.False(t, gaze.Tracking)
	assert.True(t, gaze.Current.Within(motion.Centered(), 1e-6))
}

func TestUpdateGazeWithoutProducerStaysCentered(t *testing.T) {
	resetConfig(t)
	w := newWorld(t)
	w.state.Abandon(assert.AnError)

	for i := 0; i < 30; i++ {
		UpdateGaze(w.ecs)
	}
	gaze := components.Gaze.Get(w.gaze)
	assert.Equal(t, motion.Centered(), gaze.Current)
	for _, e := range w.eyes {
		assert.Zero(t, components.Eye.Get(e).Pupil.X)
	}
}

func TestStepBlink(t *testing.T) {
	resetConfig(t)
	dt := time.Second / 60

	t.Run("one full blink then a random wait", func(t *testing.T) {
		blink := &components.BlinkData{Rand: rand.New(rand.NewPCG(1, 2))}

		var peak float64
		frames := 0
		for started := false; frames < 120; frames++ {
			stepBlink(blink, dt)
			if blink.Tween != nil {
				started = true
			}
			peak = math.Max(peak, blink.Lid)
			if started && blink.Tween == nil {
				break
			}
		}
		assert.Less(t, frames, 120, "blink never finished")
		assert.Greater(t, peak, 0.8)
		assert.Zero(t, blink.Lid)
		assert.GreaterOrEqual(t, blink.Wait, cfg.Blink.MinInterval)
		assert.Less(t, blink.Wait, cfg.Blink.MaxInterval)
	})

	t.Run("waits before blinking", func(t *testing.T) {
		blink := &components.BlinkData{Wait: time.Second}
		for i := 0; i < 59; i++ {
			stepBlink(blink, dt)
		}
		assert.Nil(t, blink.Tween)
		assert.Zero(t, blink.Lid)
	})

	t.Run("disabled keeps eyes open", func(t *testing.T) {
		cfg.Blink.Enabled = false
		t.Cleanup(func() { cfg.Blink.Enabled = true })
		blink := &components.BlinkData{Lid: 0.5, Tween: newBlinkTween()}
		stepBlink(blink, dt)
		assert.Nil(t, blink.Tween)
		assert.Zero(t, blink.Lid)
	})

	t.Run("fixed interval without a random source", func(t *testing.T) {
		assert.Equal(t, cfg.Blink.MinInterval, nextBlinkWait(&components.BlinkData{}))
	})
}

func TestUpdateBlinkSetsEveryLid(t *testing.T) {
	resetConfig(t)
	w := newWorld(t)
	components.Blink.Get(w.gaze).Wait = 0

	UpdateBlink(w.ecs)
	UpdateBlink(w.ecs)
	lid := components.Blink.Get(w.gaze).Lid
	assert.Greater(t, lid, 0.0)
	for _, e := range w.eyes {
		assert.Equal(t, lid, components.Eye.Get(e).Lid)
	}
}

func TestGetAction(t *testing.T) {
	t.Parallel()
	in := &components.InputData{}
	in.Current[cfg.ActionMirror] = true
	in.Previous[cfg.ActionQuit] = true
	in.Current[cfg.ActionToggleHUD] = true
	in.Previous[cfg.ActionToggleHUD] = true

	assert.Equal(t, components.ActionState{Pressed: true, JustPressed: true}, GetAction(in, cfg.ActionMirror))
	assert.Equal(t, components.ActionState{JustReleased: true}, GetAction(in, cfg.ActionQuit))
	assert.Equal(t, components.ActionState{Pressed: true}, GetAction(in, cfg.ActionToggleHUD))
	assert.Equal(t, components.ActionState{}, GetAction(in, cfg.ActionRecenter))
}

func TestUpdateTuning(t *testing.T) {
	t.Run("mirror reaches the controller", func(t *testing.T) {
		resetConfig(t)
		w := newWorld(t)
		w.press(cfg.ActionMirror)
		UpdateTuning(w.ecs)

		assert.True(t, cfg.Motion.InvertYaw)
		assert.True(t, w.ctrl.Config().InvertYaw)
		status := components.Status.Get(w.status)
		assert.Equal(t, "mirror on", status.Notice)
		assert.Equal(t, noticeFrames, status.NoticeFrames)

		// Held key does not toggle again.
		components.Input.Get(w.input).Previous = components.Input.Get(w.input).Current
		UpdateTuning(w.ecs)
		assert.True(t, cfg.Motion.InvertYaw)
		assert.Equal(t, noticeFrames-1, status.NoticeFrames)
	})

	t.Run("smoothing steps up and down", func(t *testing.T) {
		resetConfig(t)
		w := newWorld(t)
		w.press(cfg.ActionSmoothingUp)
		UpdateTuning(w.ecs)
		assert.InDelta(t, 10, w.ctrl.Config().SmoothingRate, 1e-9)

		w.press(cfg.ActionSmoothingDown)
		UpdateTuning(w.ecs)
		assert.InDelta(t, 8, w.ctrl.Config().SmoothingRate, 1e-9)
	})

	t.Run("recenter glides the eyes back", func(t *testing.T) {
		resetConfig(t)
		cfg.Motion.LostFaceHold = 10 * time.Second
		w := newWorld(t)
		w.state.PublishFace(tracking.NormalizedPosition{X: -1})
		for i := 0; i < 60; i++ {
			UpdateGaze(w.ecs)
		}
		looking := w.ctrl.Current()
		require.False(t, looking.Within(motion.Centered(), 1e-3))
		w.state.PublishNone()

		w.press(cfg.ActionRecenter)
		UpdateTuning(w.ecs)
		assert.Equal(t, motion.Centered(), w.ctrl.Target())
		assert.Equal(t, looking, w.ctrl.Current())
		assert.Equal(t, "recentered", components.Status.Get(w.status).Notice)

		UpdateGaze(w.ecs)
		bound := w.ctrl.StepBound(cfg.Tick())
		assert.LessOrEqual(t, math.Abs(w.ctrl.Current().Yaw-looking.Yaw), bound.Yaw+1e-12)

		for i := 0; i < 600; i++ {
			UpdateGaze(w.ecs)
		}
		assert.True(t, w.ctrl.Current().Within(motion.Centered(), 1e-6))
	})

	t.Run("failed save is reported", func(t *testing.T) {
		resetConfig(t)
		w := newWorld(t)
		status := components.Status.Get(w.status)
		storeTuning = func(*SavedTuning) error { return errors.New("disk full") }
		t.Cleanup(func() { storeTuning = SaveTuning })

		w.press(cfg.ActionMirror)
		UpdateTuning(w.ecs)
		assert.True(t, cfg.Motion.InvertYaw)
		assert.Equal(t, "tuning not saved", status.Notice)
		assert.Equal(t, noticeFrames, status.NoticeFrames)
	})

	t.Run("quit and hud", func(t *testing.T) {
		resetConfig(t)
		w := newWorld(t)
		status := components.Status.Get(w.status)

		w.press(cfg.ActionToggleHUD)
		UpdateTuning(w.ecs)
		assert.True(t, status.ShowHUD)

		w.press(cfg.ActionQuit)
		UpdateTuning(w.ecs)
		assert.True(t, status.Quit)
	})
}

func TestStepSmoothing(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 10, stepSmoothing(8, 1.25), 1e-9)
	assert.InDelta(t, 6.4, stepSmoothing(8, 0.8), 1e-9)
	assert.Equal(t, float64(minSmoothingRate), stepSmoothing(0.5, 0.8))
	assert.Equal(t, float64(maxSmoothingRate), stepSmoothing(60, 1.25))
}

func TestTuningRoundTripThroughConfig(t *testing.T) {
	resetConfig(t)
	cfg.Motion.SmoothingRate = 3
	cfg.Motion.InvertPitch = true
	saved := CurrentTuning(true)

	cfg.Reset()
	ApplyTuning(saved)
	assert.Equal(t, 3.0, cfg.Motion.SmoothingRate)
	assert.True(t, cfg.Motion.InvertPitch)
	assert.True(t, cfg.Debug.ShowHUD)
	require.NoError(t, cfg.Validate())
}

func TestApplyTuningIgnoresOutOfRange(t *testing.T) {
	resetConfig(t)
	ApplyTuning(&SavedTuning{SmoothingRate: -1, MaxYawDegrees: 400, MaxPitchDegrees: 0})
	assert.Equal(t, 8.0, cfg.Motion.SmoothingRate)
	assert.Equal(t, 45.0, cfg.Motion.MaxYawDegrees)
	assert.Equal(t, 30.0, cfg.Motion.MaxPitchDegrees)

	ApplyTuning(nil)
	require.NoError(t, cfg.Validate())
}

func TestSaveAndLoadWithoutPersistence(t *testing.T) {
	resetConfig(t)
	require.NoError(t, SaveTuning(CurrentTuning(false)))
	saved, err := LoadTuning()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestHUDLines(t *testing.T) {
	resetConfig(t)
	w := newWorld(t)
	gaze := *components.Gaze.Get(w.gaze)
	gaze.Tracking = true
	gaze.Current = motion.Orientation{Yaw: motion.Radians(12.5)}

	lines := hudLines(gaze, tracking.ProducerStats{
		Cycles:         10,
		Faces:          5,
		LatencyMean:    4 * time.Millisecond,
		LatencySamples: 10,
		LastFace:       tracking.NormalizedPosition{X: 0.5, Y: -0.25},
		HasFace:        true,
	}, tracking.SlotStats{Publishes: 10, Reads: 7, Coalesced: 3})

	require.Len(t, lines, 8)
	assert.Equal(t, "state     tracking", lines[0])
	assert.Equal(t, "face      x +0.50  y -0.25", lines[1])
	assert.Contains(t, lines[2], "yaw  +12.5")
	assert.Contains(t, lines[4], "smoothing 8.0/s")
	assert.Contains(t, lines[5], "faces 50%")
	assert.Contains(t, lines[6], "4.0ms")
	assert.Equal(t, "slot      pub 10  read 7  coalesced 3", lines[7])

	stopped := hudLines(components.GazeData{}, tracking.ProducerStats{}, tracking.SlotStats{Abandoned: true})
	require.Len(t, stopped, 7)
	assert.Equal(t, "state     producer stopped", stopped[0])
	assert.Equal(t, "face      none", stopped[1])
}
