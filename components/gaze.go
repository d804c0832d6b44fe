package components

import (
	"github.com/automoto/lookout/motion"
	"github.com/yohamta/donburi"
)

// GazeData holds the shared look direction every eye follows.
type GazeData struct {
	Controller *motion.Controller
	Current    motion.Orientation
	Target     motion.Orientation
	Tracking   bool
}

var Gaze = donburi.NewComponentType[GazeData]()
