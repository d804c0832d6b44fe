package systems

import (
	"time"

	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/tags"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// UpdateBlink runs the eyelid tween and schedules the next blink at a random
// interval. Blinking never touches the gaze.
func UpdateBlink(ecs *ecs.ECS) {
	entry, ok := components.Blink.First(ecs.World)
	if !ok {
		return
	}
	blink := components.Blink.Get(entry)
	stepBlink(blink, cfg.Tick())

	tags.Eye.Each(ecs.World, func(e *donburi.Entry) {
		components.Eye.Get(e).Lid = blink.Lid
	})
}

func stepBlink(blink *components.BlinkData, dt time.Duration) {
	if !cfg.Blink.Enabled {
		blink.Tween = nil
		blink.Lid = 0
		return
	}

	if blink.Tween == nil {
		blink.Wait -= dt
		if blink.Wait > 0 {
			return
		}
		blink.Tween = newBlinkTween()
	}

	lid, _, done := blink.Tween.Update(float32(dt.Seconds()))
	blink.Lid = clamp01(float64(lid))
	if done {
		blink.Tween = nil
		blink.Lid = 0
		blink.Wait = nextBlinkWait(blink)
	}
}

func newBlinkTween() *gween.Sequence {
	return gween.NewSequence(
		gween.New(0, 1, float32(cfg.Blink.Close.Seconds()), ease.InQuad),
		gween.New(1, 0, float32(cfg.Blink.Open.Seconds()), ease.OutQuad),
	)
}

func nextBlinkWait(blink *components.BlinkData) time.Duration {
	span := cfg.Blink.MaxInterval - cfg.Blink.MinInterval
	if span <= 0 || blink.Rand == nil {
		return cfg.Blink.MinInterval
	}
	return cfg.Blink.MinInterval + time.Duration(blink.Rand.Int64N(int64(span)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
