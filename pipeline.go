package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/automoto/lookout/capture"
	"github.com/automoto/lookout/config"
	"github.com/automoto/lookout/detect"
	"github.com/automoto/lookout/tracking"
)

// pipeline is the frame source and detector chosen by config, plus whatever
// must be released on exit.
type pipeline struct {
	source   tracking.FrameSource
	detector tracking.FaceDetector
	closers  []io.Closer
	once     sync.Once
}

func buildPipeline() (*pipeline, error) {
	p := &pipeline{}

	source, err := buildSource()
	if err != nil {
		return nil, err
	}
	p.source = source
	p.track(source)

	detector, err := buildDetector()
	if err != nil {
		p.Close()
		return nil, err
	}
	p.detector = detector
	p.track(detector)
	return p, nil
}

func (p *pipeline) track(v any) {
	if c, ok := v.(io.Closer); ok {
		p.closers = append(p.closers, c)
	}
}

// Close releases in reverse order of construction. Safe to call twice.
func (p *pipeline) Close() error {
	var errs []error
	p.once.Do(func() {
		for i := len(p.closers) - 1; i >= 0; i-- {
			errs = append(errs, p.closers[i].Close())
		}
	})
	return errors.Join(errs...)
}

func buildSource() (tracking.FrameSource, error) {
	c := config.Capture
	switch c.Source {
	case config.SourceDir:
		return capture.NewDirSource(c.Dir, c.FrameInterval, c.Loop)
	case config.SourceBlank:
		return capture.NewBlankSource(c.FrameWidth, c.FrameHeight, c.FrameInterval)
	case config.SourceWebcam:
		return capture.OpenWebcam(c.CameraID)
	}
	return nil, fmt.Errorf("unknown frame source %q", c.Source)
}

func buildDetector() (tracking.FaceDetector, error) {
	c := config.Capture
	switch c.Detector {
	case config.DetectorOrbit:
		return detect.NewOrbit(c.OrbitPeriod, c.OrbitVisible, c.OrbitHidden), nil
	case config.DetectorONNX:
		return detect.NewONNX(detect.ONNXConfig{
			ModelPath:  c.ModelPath,
			RuntimeLib: c.RuntimeLib,
			InputSize:  c.ModelInput,
			Confidence: c.Confidence,
			IoU:        c.IoUThreshold,
			Grayscale:  c.Grayscale,
		})
	case config.DetectorCascade:
		return detect.NewCascade(c.CascadePath)
	}
	return nil, fmt.Errorf("unknown face detector %q", c.Detector)
}
