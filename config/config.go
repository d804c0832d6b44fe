package config

import (
	"image/color"
	"time"

	"github.com/automoto/lookout/motion"
	"github.com/automoto/lookout/tracking"
	"github.com/yohamta/donburi/ecs"
)

// Default is the only render layer the scene uses.
const Default ecs.LayerID = iota

// Config contains window settings
type Config struct {
	Width  int    `validate:"gt=0"`
	Height int    `validate:"gt=0"`
	Title  string `validate:"required"`
	TPS    int    `validate:"gte=10,lte=240"`
}

// TrackingConfig contains detection loop settings
type TrackingConfig struct {
	MaxDetectionHz    float64       `validate:"gte=0,lte=240"` // 0 runs detection back to back
	AcquireRetryDelay time.Duration `validate:"gte=0"`         // back off after a failed capture
	LogEveryCycles    int           `validate:"gte=0"`         // position log cadence, 0 disables
	LatencyWindow     int           `validate:"gte=0"`
}

// MotionConfig contains eye motion tuning. Angles are in degrees here and
// converted to radians for the controller.
type MotionConfig struct {
	SmoothingRate          float64       `validate:"gt=0,lte=1000"`
	MaxYawDegrees          float64       `validate:"gt=0,lte=90"`
	MaxPitchDegrees        float64       `validate:"gt=0,lte=90"`
	InvertYaw              bool          // mirror mode: follow the viewer's left/right instead of the camera's
	InvertPitch            bool          // eyes look up when the face is low
	MaxAngularSpeedDegrees float64       `validate:"gte=0"` // 0 disables the cap
	LostFaceHold           time.Duration `validate:"gte=0"`
}

// EyesConfig contains eye drawing settings
type EyesConfig struct {
	Count        int     `validate:"gte=1,lte=8"`
	Radius       float64 `validate:"gt=0"`
	Spacing      float64 `validate:"gt=0"`
	IrisRatio    float64 `validate:"gt=0,lt=1"`  // iris radius relative to the eyeball
	PupilRatio   float64 `validate:"gt=0,lt=1"`  // pupil radius relative to the iris
	TravelRatio  float64 `validate:"gt=0,lte=1"` // how far the iris may travel toward the rim at full deflection
	Background   color.RGBA
	Sclera       color.RGBA
	Iris         color.RGBA
	Pupil        color.RGBA
	Lid          color.RGBA
	Highlight    color.RGBA
	OutlineWidth float32 `validate:"gte=0"`
}

// BlinkConfig contains blink animation settings
type BlinkConfig struct {
	Enabled     bool
	MinInterval time.Duration `validate:"gt=0,ltefield=MaxInterval"`
	MaxInterval time.Duration `validate:"gt=0"`
	Close       time.Duration `validate:"gt=0"`
	Open        time.Duration `validate:"gt=0"`
}

// Frame source and detector kinds.
const (
	SourceDir    = "dir"
	SourceBlank  = "blank"
	SourceWebcam = "webcam"

	DetectorOrbit   = "orbit"
	DetectorONNX    = "onnx"
	DetectorCascade = "cascade"
)

// CaptureConfig selects and configures the frame source and face detector
type CaptureConfig struct {
	Source        string        `validate:"oneof=dir blank webcam"`
	Detector      string        `validate:"oneof=orbit onnx cascade"`
	CameraID      int           `validate:"gte=0"`
	Dir           string        `validate:"required_if=Source dir"`
	Loop          bool          // restart the directory after the last image
	FrameInterval time.Duration `validate:"gte=0"`
	FrameWidth    int           `validate:"gt=0"`
	FrameHeight   int           `validate:"gt=0"`

	ModelPath    string  `validate:"required_if=Detector onnx"`
	RuntimeLib   string  // onnxruntime shared library; empty uses the platform default
	ModelInput   int     `validate:"gte=32"`
	Confidence   float32 `validate:"gt=0,lt=1"`
	IoUThreshold float32 `validate:"gt=0,lte=1"`
	Grayscale    bool    // feed luminance to the model
	CascadePath  string  `validate:"required_if=Detector cascade"`

	OrbitPeriod  time.Duration `validate:"gt=0"`
	OrbitVisible time.Duration `validate:"gte=0"` // 0 keeps the scripted face always visible
	OrbitHidden  time.Duration `validate:"gte=0"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level      string `validate:"oneof=trace debug info warn error"`
	File       string
	MaxSizeMB  int `validate:"gte=0"`
	MaxAgeDays int `validate:"gte=0"`
	MaxBackups int `validate:"gte=0"`
	NoColors   bool
	Caller     bool
}

// DebugConfig contains debug settings
type DebugConfig struct {
	ShowHUD    bool // overlay tracking state and stats
	DrawTarget bool // draw the target gaze as a hollow ring
}

var C *Config
var Tracking TrackingConfig
var Motion MotionConfig
var Eyes EyesConfig
var Blink BlinkConfig
var Capture CaptureConfig
var Log LogConfig
var Debug DebugConfig

var (
	White        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Ivory        = color.RGBA{R: 245, G: 240, B: 228, A: 255}
	Charcoal     = color.RGBA{R: 24, G: 24, B: 30, A: 255}
	Midnight     = color.RGBA{R: 15, G: 25, B: 50, A: 255}
	Teal         = color.RGBA{R: 40, G: 130, B: 140, A: 255}
	Black        = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	BrightGreen  = color.RGBA{R: 0, G: 255, B: 60, A: 255}
	LightRed     = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	BlackOverlay = color.RGBA{R: 0, G: 0, B: 0, A: 180}
	Skin         = color.RGBA{R: 196, G: 150, B: 120, A: 255}
)

func init() {
	Reset()
}

// Reset restores every setting to its default.
func Reset() {
	C = &Config{
		Width:  800,
		Height: 600,
		Title:  "Lookout",
		TPS:    60,
	}

	Tracking = TrackingConfig{
		MaxDetectionHz:    30,
		AcquireRetryDelay: 100 * time.Millisecond,
		LogEveryCycles:    30,
		LatencyWindow:     120,
	}

	Motion = MotionConfig{
		SmoothingRate:   8,
		MaxYawDegrees:   45,
		MaxPitchDegrees: 30,
		LostFaceHold:    0,
	}

	Eyes = EyesConfig{
		Count:        2,
		Radius:       110,
		Spacing:      260,
		IrisRatio:    0.45,
		PupilRatio:   0.5,
		TravelRatio:  0.9,
		Background:   Midnight,
		Sclera:       Ivory,
		Iris:         Teal,
		Pupil:        Charcoal,
		Lid:          Skin,
		Highlight:    White,
		OutlineWidth: 4,
	}

	Blink = BlinkConfig{
		Enabled:     true,
		MinInterval: 2 * time.Second,
		MaxInterval: 6 * time.Second,
		Close:       70 * time.Millisecond,
		Open:        120 * time.Millisecond,
	}

	Capture = CaptureConfig{
		Source:        SourceBlank,
		Detector:      DetectorOrbit,
		FrameInterval: 33 * time.Millisecond,
		FrameWidth:    640,
		FrameHeight:   480,
		ModelInput:    640,
		Confidence:    0.5,
		IoUThreshold:  0.45,
		OrbitPeriod:   8 * time.Second,
		OrbitVisible:  6 * time.Second,
		OrbitHidden:   2 * time.Second,
	}

	Log = LogConfig{
		Level:      "info",
		MaxSizeMB:  10,
		MaxAgeDays: 7,
		MaxBackups: 3,
	}

	Debug = DebugConfig{
		ShowHUD: false,
	}
}

// MotionController converts Motion into controller tuning.
func MotionController() motion.Config {
	return motion.Config{
		SmoothingRate:   Motion.SmoothingRate,
		MaxYaw:          motion.Radians(Motion.MaxYawDegrees),
		MaxPitch:        motion.Radians(Motion.MaxPitchDegrees),
		InvertYaw:       Motion.InvertYaw,
		InvertPitch:     Motion.InvertPitch,
		MaxAngularSpeed: motion.Radians(Motion.MaxAngularSpeedDegrees),
		LostFaceHold:    Motion.LostFaceHold,
	}
}

// Producer converts Tracking into producer settings.
func Producer() tracking.ProducerConfig {
	return tracking.ProducerConfig{
		MaxDetectionHz:    Tracking.MaxDetectionHz,
		AcquireRetryDelay: Tracking.AcquireRetryDelay,
		LogEveryCycles:    Tracking.LogEveryCycles,
		LatencyWindow:     Tracking.LatencyWindow,
	}
}

// Tick is the fixed render step.
func Tick() time.Duration {
	return time.Second / time.Duration(C.TPS)
}
