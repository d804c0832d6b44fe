package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOOKOUT_"

type envBinding struct {
	key string
	set func(string) error
}

func envBindings() []envBinding {
	return []envBinding{
		{"WIDTH", intVar(&C.Width)},
		{"HEIGHT", intVar(&C.Height)},
		{"TPS", intVar(&C.TPS)},

		{"DETECTION_HZ", floatVar(&Tracking.MaxDetectionHz)},
		{"RETRY_DELAY", durationVar(&Tracking.AcquireRetryDelay)},
		{"LOG_EVERY", intVar(&Tracking.LogEveryCycles)},

		{"SMOOTHING", floatVar(&Motion.SmoothingRate)},
		{"MAX_YAW", floatVar(&Motion.MaxYawDegrees)},
		{"MAX_PITCH", floatVar(&Motion.MaxPitchDegrees)},
		{"INVERT_YAW", boolVar(&Motion.InvertYaw)},
		{"INVERT_PITCH", boolVar(&Motion.InvertPitch)},
		{"MAX_SPEED", floatVar(&Motion.MaxAngularSpeedDegrees)},
		{"LOST_HOLD", durationVar(&Motion.LostFaceHold)},

		{"SOURCE", stringVar(&Capture.Source)},
		{"DETECTOR", stringVar(&Capture.Detector)},
		{"CAMERA", intVar(&Capture.CameraID)},
		{"FRAMES_DIR", stringVar(&Capture.Dir)},
		{"FRAMES_LOOP", boolVar(&Capture.Loop)},
		{"FRAME_INTERVAL", durationVar(&Capture.FrameInterval)},
		{"MODEL", stringVar(&Capture.ModelPath)},
		{"ORT_LIB", stringVar(&Capture.RuntimeLib)},
		{"CONFIDENCE", float32Var(&Capture.Confidence)},
		{"GRAYSCALE", boolVar(&Capture.Grayscale)},
		{"CASCADE", stringVar(&Capture.CascadePath)},

		{"BLINK", boolVar(&Blink.Enabled)},

		{"LOG_LEVEL", stringVar(&Log.Level)},
		{"LOG_FILE", stringVar(&Log.File)},
		{"LOG_NO_COLORS", boolVar(&Log.NoColors)},
		{"LOG_CALLER", boolVar(&Log.Caller)},

		{"HUD", boolVar(&Debug.ShowHUD)},
	}
}

// LoadEnv reads the given .env files (".env" when none are named) into the
// process environment and applies LOOKOUT_* overrides. Missing files are
// not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return ApplyEnv(os.LookupEnv)
}

// ApplyEnv applies overrides found through lookup.
func ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	for _, b := range envBindings() {
		raw, ok := lookup(EnvPrefix + b.key)
		if !ok {
			continue
		}
		if err := b.set(strings.TrimSpace(raw)); err != nil {
			errs = append(errs, fmt.Errorf("%s%s=%q: %w", EnvPrefix, b.key, raw, err))
		}
	}
	return errors.Join(errs...)
}

func stringVar(p *string) func(string) error {
	return func(s string) error {
		*p = s
		return nil
	}
}

func intVar(p *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
}

func floatVar(p *float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
}

func float32Var(p *float32) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return err
		}
		*p = float32(v)
		return nil
	}
}

func boolVar(p *bool) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
}

func durationVar(p *time.Duration) func(string) error {
	return func(s string) error {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
}
