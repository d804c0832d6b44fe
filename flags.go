package main

import (
	"flag"
	"time"

	"github.com/automoto/lookout/config"
)

// cliFlags holds command-line values. Only flags the user actually set are
// copied into config, so env and saved tuning still apply underneath.
type cliFlags struct {
	envFile   string
	noPersist bool

	source, detector, dir, model, ortLib, cascade string
	camera                                        int
	loop, hud, mirror, invertPitch, noBlink       bool
	smoothing, maxYaw, maxPitch, detectionHz      float64
	frameInterval                                 time.Duration
	logLevel, logFile                             string
	logCaller                                     bool
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	f := &cliFlags{}
	fs.StringVar(&f.envFile, "env", ".env", "dotenv file with LOOKOUT_* settings")
	fs.BoolVar(&f.noPersist, "no-persist", false, "do not load or save tuning")

	fs.StringVar(&f.source, "source", config.Capture.Source, "frame source: dir, blank or webcam")
	fs.StringVar(&f.detector, "detector", config.Capture.Detector, "face detector: orbit, onnx or cascade")
	fs.StringVar(&f.dir, "frames", "", "directory of images for -source=dir")
	fs.BoolVar(&f.loop, "loop", false, "restart the frame directory after the last image")
	fs.IntVar(&f.camera, "camera", 0, "webcam device id")
	fs.DurationVar(&f.frameInterval, "frame-interval", config.Capture.FrameInterval, "delay between frames for dir and blank sources")
	fs.StringVar(&f.model, "model", "", "ONNX face model for -detector=onnx")
	fs.StringVar(&f.ortLib, "ort-lib", "", "onnxruntime shared library path")
	fs.StringVar(&f.cascade, "cascade", "", "Haar cascade XML for -detector=cascade")
	fs.Float64Var(&f.detectionHz, "detection-hz", config.Tracking.MaxDetectionHz, "maximum detection cycles per second, 0 for unlimited")

	fs.Float64Var(&f.smoothing, "smoothing", config.Motion.SmoothingRate, "eye smoothing rate per second")
	fs.Float64Var(&f.maxYaw, "max-yaw", config.Motion.MaxYawDegrees, "maximum yaw in degrees")
	fs.Float64Var(&f.maxPitch, "max-pitch", config.Motion.MaxPitchDegrees, "maximum pitch in degrees")
	fs.BoolVar(&f.mirror, "mirror", false, "invert the horizontal mapping")
	fs.BoolVar(&f.invertPitch, "invert-pitch", false, "invert the vertical mapping")
	fs.BoolVar(&f.noBlink, "no-blink", false, "disable blinking")
	fs.BoolVar(&f.hud, "hud", false, "show the tracking HUD")

	fs.StringVar(&f.logLevel, "log-level", config.Log.Level, "trace, debug, info, warn or error")
	fs.StringVar(&f.logFile, "log-file", "", "also write logs to this rotating file")
	fs.BoolVar(&f.logCaller, "log-caller", false, "prefix log lines with the calling file and function")
	return f
}

// apply copies every explicitly set flag into config.
func (f *cliFlags) apply(fs *flag.FlagSet) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "source":
			config.Capture.Source = f.source
		case "detector":
			config.Capture.Detector = f.detector
		case "frames":
			config.Capture.Dir = f.dir
		case "loop":
			config.Capture.Loop = f.loop
		case "camera":
			config.Capture.CameraID = f.camera
		case "frame-interval":
			config.Capture.FrameInterval = f.frameInterval
		case "model":
			config.Capture.ModelPath = f.model
		case "ort-lib":
			config.Capture.RuntimeLib = f.ortLib
		case "cascade":
			config.Capture.CascadePath = f.cascade
		case "detection-hz":
			config.Tracking.MaxDetectionHz = f.detectionHz
		case "smoothing":
			config.Motion.SmoothingRate = f.smoothing
		case "max-yaw":
			config.Motion.MaxYawDegrees = f.maxYaw
		case "max-pitch":
			config.Motion.MaxPitchDegrees = f.maxPitch
		case "mirror":
			config.Motion.InvertYaw = f.mirror
		case "invert-pitch":
			config.Motion.InvertPitch = f.invertPitch
		case "no-blink":
			config.Blink.Enabled = !f.noBlink
		case "hud":
			config.Debug.ShowHUD = f.hud
		case "log-level":
			config.Log.Level = f.logLevel
		case "log-file":
			config.Log.File = f.logFile
		case "log-caller":
			config.Log.Caller = f.logCaller
		}
	})
}
