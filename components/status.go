package components

import (
	"github.com/automoto/lookout/tracking"
	"github.com/yohamta/donburi"
)

// StatusData carries what the HUD reports and scene-level flags.
type StatusData struct {
	State        *tracking.SharedTrackState
	Stats        func() tracking.ProducerStats
	ShowHUD      bool
	Notice       string // short-lived message after a tuning change
	NoticeFrames int
	Quit         bool
}

var Status = donburi.NewComponentType[StatusData]()
