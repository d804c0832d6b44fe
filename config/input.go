package config

import "github.com/hajimehoshi/ebiten/v2"

// ActionID represents a logical scene action
type ActionID int

const (
	ActionNone ActionID = iota
	ActionQuit
	ActionSmoothingDown
	ActionSmoothingUp
	ActionToggleHUD
	ActionMirror
	ActionInvertPitch
	ActionRecenter
	ActionCount // Must be last - used for array sizing
)

// InputBinding represents the keys bound to an action
type InputBinding struct {
	Keys []ebiten.Key
}

// InputConfig holds all input mappings
type InputConfig struct {
	Bindings map[ActionID]InputBinding
	// SmoothingStep is the multiplicative step applied by the smoothing keys
	SmoothingStep float64
}

// Input is the global input configuration
var Input InputConfig

func init() {
	Input = InputConfig{
		SmoothingStep: 1.25,
		Bindings: map[ActionID]InputBinding{
			ActionQuit: {
				Keys: []ebiten.Key{ebiten.KeyEscape, ebiten.KeyQ},
			},
			ActionSmoothingDown: {
				Keys: []ebiten.Key{ebiten.KeyBracketLeft},
			},
			ActionSmoothingUp: {
				Keys: []ebiten.Key{ebiten.KeyBracketRight},
			},
			ActionToggleHUD: {
				Keys: []ebiten.Key{ebiten.KeyH},
			},
			ActionMirror: {
				Keys: []ebiten.Key{ebiten.KeyM},
			},
			ActionInvertPitch: {
				Keys: []ebiten.Key{ebiten.KeyV},
			},
			ActionRecenter: {
				Keys: []ebiten.Key{ebiten.KeyC},
			},
		},
	}
}
