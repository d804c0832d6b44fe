package components

import (
	"math/rand/v2"
	"time"

	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

// BlinkData drives the eyelids. While Tween is nil the eyes are open and
// Wait counts down to the next blink.
type BlinkData struct {
	Tween *gween.Sequence
	Lid   float64
	Wait  time.Duration
	Rand  *rand.Rand
}

var Blink = donburi.NewComponentType[BlinkData]()
