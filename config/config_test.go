package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests mutate package globals, so they do not run in parallel.

func TestDefaultsAreValid(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.NoError(t, Validate())
	assert.Equal(t, 800, C.Width)
	assert.Equal(t, 600, C.Height)
	assert.Equal(t, time.Second/60, Tick())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func()
		want   string
	}{
		{"zero smoothing", func() { Motion.SmoothingRate = 0 }, "motion.SmoothingRate"},
		{"yaw beyond quarter turn", func() { Motion.MaxYawDegrees = 120 }, "motion.MaxYawDegrees"},
		{"unknown source", func() { Capture.Source = "carrier-pigeon" }, "capture.Source"},
		{"dir source without a directory", func() { Capture.Source = SourceDir }, "capture.Dir"},
		{"onnx without a model", func() { Capture.Detector = DetectorONNX }, "capture.ModelPath"},
		{"cascade without a classifier", func() { Capture.Detector = DetectorCascade }, "capture.CascadePath"},
		{"inverted blink interval", func() { Blink.MinInterval = 10 * time.Second }, "blink.MinInterval"},
		{"blink longer than interval", func() { Blink.Close = 3 * time.Second }, "blink: close+open"},
		{"overlapping eyes", func() { Eyes.Spacing = 50 }, "eyes: spacing"},
		{"bad log level", func() { Log.Level = "loud" }, "log.Level"},
		{"negative hold", func() { Motion.LostFaceHold = -time.Second }, "motion.LostFaceHold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Reset()
			t.Cleanup(Reset)
			tt.mutate()

			err := Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMotionControllerConversion(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Motion.MaxYawDegrees = 90
	Motion.MaxPitchDegrees = 45
	Motion.MaxAngularSpeedDegrees = 180
	Motion.InvertYaw = true

	mc := MotionController()
	assert.InDelta(t, math.Pi/2, mc.MaxYaw, 1e-12)
	assert.InDelta(t, math.Pi/4, mc.MaxPitch, 1e-12)
	assert.InDelta(t, math.Pi, mc.MaxAngularSpeed, 1e-12)
	assert.True(t, mc.InvertYaw)
	require.NoError(t, mc.Validate())

	pc := Producer()
	assert.Equal(t, Tracking.MaxDetectionHz, pc.MaxDetectionHz)
	assert.Equal(t, Tracking.AcquireRetryDelay, pc.AcquireRetryDelay)
}

func TestApplyEnv(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	env := map[string]string{
		"LOOKOUT_SMOOTHING":     "12.5",
		"LOOKOUT_MAX_YAW":       " 30 ",
		"LOOKOUT_INVERT_PITCH":  "true",
		"LOOKOUT_RETRY_DELAY":   "250ms",
		"LOOKOUT_SOURCE":        "dir",
		"LOOKOUT_FRAMES_DIR":    "/tmp/frames",
		"LOOKOUT_CONFIDENCE":    "0.7",
		"LOOKOUT_LOG_CALLER":    "true",
		"UNRELATED_SMOOTHING":   "99",
		"LOOKOUT_NOT_A_SETTING": "ignored",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	require.NoError(t, ApplyEnv(lookup))
	assert.Equal(t, 12.5, Motion.SmoothingRate)
	assert.Equal(t, 30.0, Motion.MaxYawDegrees)
	assert.True(t, Motion.InvertPitch)
	assert.Equal(t, 250*time.Millisecond, Tracking.AcquireRetryDelay)
	assert.Equal(t, SourceDir, Capture.Source)
	assert.Equal(t, "/tmp/frames", Capture.Dir)
	assert.InDelta(t, 0.7, Capture.Confidence, 1e-6)
	assert.True(t, Log.Caller)
	assert.NoError(t, Validate())
}

func TestApplyEnvReportsEveryBadValue(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	env := map[string]string{
		"LOOKOUT_SMOOTHING": "fast",
		"LOOKOUT_HUD":       "sometimes",
		"LOOKOUT_MAX_PITCH": "20",
	}
	err := ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOOKOUT_SMOOTHING")
	assert.Contains(t, err.Error(), "LOOKOUT_HUD")
	assert.Equal(t, 20.0, Motion.MaxPitchDegrees, "valid overrides still apply")
	assert.Equal(t, 8.0, Motion.SmoothingRate)
}

func TestLoadEnvFile(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "lookout.env")
	require.NoError(t, os.WriteFile(path, []byte("LOOKOUT_TPS=30\nLOOKOUT_HUD=true\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LOOKOUT_TPS")
		os.Unsetenv("LOOKOUT_HUD")
	})

	require.NoError(t, LoadEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, 30, C.TPS)
	assert.True(t, Debug.ShowHUD)
}
