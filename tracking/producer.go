package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/automoto/lookout/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ProducerConfig tunes the detection loop.
type ProducerConfig struct {
	MaxDetectionHz    float64       // cycle rate cap; 0 disables pacing
	AcquireRetryDelay time.Duration // back-off after a failed frame read
	LogEveryCycles    int           // log the tracked position every N face cycles; 0 disables
	LatencyWindow     int           // detection latency samples kept for stats
}

// CycleOutcome describes what a single producer cycle published.
type CycleOutcome int

const (
	CycleSkipped     CycleOutcome = iota // frame acquisition failed, nothing published
	CycleFace                            // a face was published
	CycleNoFace                          // no face detected, none published
	CycleDetectError                     // detector or frame failure, none published
)

func (o CycleOutcome) String() string {
	switch o {
	case CycleSkipped:
		return "skipped"
	case CycleFace:
		return "face"
	case CycleNoFace:
		return "no-face"
	case CycleDetectError:
		return "detect-error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Producer owns the frame -> detection -> publish loop.
type Producer struct {
	source   FrameSource
	detector FaceDetector
	state    *SharedTrackState
	cfg      ProducerConfig

	limiter *rate.Limiter
	stats   *statsRecorder
	log     *logrus.Entry

	acquireLog rate.Sometimes
	detectLog  rate.Sometimes

	faceCycles uint64
}

func NewProducer(source FrameSource, detector FaceDetector, state *SharedTrackState, cfg ProducerConfig) *Producer {
	limit := rate.Inf
	if cfg.MaxDetectionHz > 0 {
		limit = rate.Limit(cfg.MaxDetectionHz)
	}

	return &Producer{
		source:     source,
		detector:   detector,
		state:      state,
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, 1),
		stats:      newStatsRecorder(cfg.LatencyWindow),
		log:        logging.WithComponent("producer"),
		acquireLog: rate.Sometimes{First: 3, Interval: 5 * time.Second},
		detectLog:  rate.Sometimes{First: 3, Interval: 5 * time.Second},
	}
}

// Run loops until ctx is cancelled, checking it once per cycle. A panic that
// escapes a cycle abandons the shared slot and is returned as an error so the
// render loop keeps running with centered eyes.
func (p *Producer) Run(ctx context.Context) (err error) {
	p.log.WithField("max_hz", p.cfg.MaxDetectionHz).Info("[producer] started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("producer crashed: %v", r)
			p.state.Abandon(err)
			p.log.WithError(err).Error("[producer] terminated abnormally")
		}
	}()

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			// Either cancelled, or the deadline is closer than the next slot.
			<-ctx.Done()
			p.log.Info("[producer] stopped")
			return nil
		}

		if p.Step(ctx) == CycleSkipped && p.cfg.AcquireRetryDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.AcquireRetryDelay):
			}
		}
	}
}

// Step runs one acquire/detect/select/publish cycle.
func (p *Producer) Step(ctx context.Context) CycleOutcome {
	frame, err := p.source.NextFrame(ctx)
	if err != nil {
		p.stats.acquireFailed()
		p.acquireLog.Do(func() {
			p.log.WithError(err).Warn("[producer] frame acquisition failed, retrying")
		})
		return CycleSkipped
	}

	start := time.Now()
	regions, err := p.detect(frame)
	latency := time.Since(start)

	if err != nil {
		p.detectLog.Do(func() {
			p.log.WithError(err).WithField("seq", frame.Seq).Warn("[producer] detection failed, publishing no face")
		})
		p.state.PublishNone()
		p.stats.cycle(false, true, latency)
		return CycleDetectError
	}

	region, found := SelectFace(regions)
	if !found {
		p.state.PublishNone()
		p.stats.cycle(false, false, latency)
		return CycleNoFace
	}

	pos, err := Normalize(region, frame.Width, frame.Height)
	if err != nil {
		p.state.PublishNone()
		p.stats.cycle(false, true, latency)
		return CycleDetectError
	}

	p.state.PublishFace(pos)
	p.stats.cycle(true, false, latency)
	p.stats.sawFace(pos)

	p.faceCycles++
	if n := p.cfg.LogEveryCycles; n > 0 && p.faceCycles%uint64(n) == 0 {
		p.log.WithFields(logrus.Fields{
			"x":     fmt.Sprintf("%.2f", pos.X),
			"y":     fmt.Sprintf("%.2f", pos.Y),
			"faces": len(regions),
		}).Debug("[producer] tracking face")
	}
	return CycleFace
}

// detect validates the frame and shields the loop from detector panics.
func (p *Producer) detect(frame Frame) (regions []FaceRegion, err error) {
	if !frame.Valid() {
		return nil, fmt.Errorf("%w: %dx%d", ErrMalformedFrame, frame.Width, frame.Height)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()

	regions, err = p.detector.Detect(frame)
	if err != nil {
		return nil, fmt.Errorf("detect frame %d: %w", frame.Seq, err)
	}
	return regions, nil
}

// Stats returns producer counters and recent detection latency.
func (p *Producer) Stats() ProducerStats {
	return p.stats.snapshot()
}
