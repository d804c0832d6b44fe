package systems

import (
	"fmt"
	"time"

	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/fonts"
	"github.com/automoto/lookout/tracking"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
)

const (
	hudMargin     = 10
	hudPadding    = 8
	hudLineHeight = 16
	hudWidth      = 330
)

const keyHelp = "[ ] smoothing  M mirror  V pitch  C center  H hud  Q quit"

// DrawHUD overlays tracking state, producer stats and the latest tuning
// notice. The notice shows even with the HUD hidden.
func DrawHUD(ecs *ecs.ECS, screen *ebiten.Image) {
	if !fonts.Loaded(fonts.HUD) {
		return
	}
	statusEntry, ok := components.Status.First(ecs.World)
	if !ok {
		return
	}
	status := components.Status.Get(statusEntry)

	if status.NoticeFrames > 0 && status.Notice != "" {
		drawNotice(screen, status.Notice)
	}
	if !status.ShowHUD {
		return
	}

	var gaze components.GazeData
	if gazeEntry, ok := components.Gaze.First(ecs.World); ok {
		gaze = *components.Gaze.Get(gazeEntry)
	}
	var ps tracking.ProducerStats
	if status.Stats != nil {
		ps = status.Stats()
	}
	var ss tracking.SlotStats
	if status.State != nil {
		ss = status.State.Stats()
	}

	lines := hudLines(gaze, ps, ss)
	boxH := float32(len(lines)*hudLineHeight + hudPadding*2)
	vector.FillRect(screen, hudMargin, hudMargin, hudWidth, boxH, cfg.BlackOverlay, false)

	face := fonts.HUD.Get()
	for i, line := range lines {
		y := hudMargin + hudPadding + (i+1)*hudLineHeight - 4
		text.Draw(screen, line, face, hudMargin+hudPadding, y, cfg.White)
	}

	help := fonts.HUDSmall.Get()
	text.Draw(screen, keyHelp, help, hudMargin, screen.Bounds().Dy()-hudMargin, cfg.Ivory)
}

func hudLines(gaze components.GazeData, ps tracking.ProducerStats, ss tracking.SlotStats) []string {
	state := "no face"
	if gaze.Tracking {
		state = "tracking"
	}
	if ss.Abandoned {
		state = "producer stopped"
	}
	yaw, pitch := gaze.Current.Degrees()
	tyaw, tpitch := gaze.Target.Degrees()

	face := "none"
	if ps.HasFace {
		face = fmt.Sprintf("x %+.2f  y %+.2f", ps.LastFace.X, ps.LastFace.Y)
	}

	lines := []string{
		fmt.Sprintf("state     %s", state),
		fmt.Sprintf("face      %s", face),
		fmt.Sprintf("gaze      yaw %+6.1f  pitch %+6.1f", yaw, pitch),
		fmt.Sprintf("target    yaw %+6.1f  pitch %+6.1f", tyaw, tpitch),
	}
	if gaze.Controller != nil {
		mc := gaze.Controller.Config()
		lines = append(lines, fmt.Sprintf("smoothing %.1f/s  mirror %s  pitch %s",
			mc.SmoothingRate, onOffWord(mc.InvertYaw), onOffWord(mc.InvertPitch)))
	}
	lines = append(lines,
		fmt.Sprintf("cycles    %d  faces %.0f%%  errors %d/%d",
			ps.Cycles, ps.FaceRate()*100, ps.DetectErrors, ps.AcquireErrors),
		fmt.Sprintf("latency   %.1fms ±%.1fms (n=%d)",
			ms(ps.LatencyMean), ms(ps.LatencyStdDev), ps.LatencySamples),
		fmt.Sprintf("slot      pub %d  read %d  coalesced %d",
			ss.Publishes, ss.Reads, ss.Coalesced),
	)
	return lines
}

func drawNotice(screen *ebiten.Image, msg string) {
	face := fonts.Notice.Get()
	bounds := text.BoundString(face, msg) //nolint:staticcheck // TODO: migrate to text/v2
	w := float32(bounds.Dx() + hudPadding*2)
	h := float32(bounds.Dy() + hudPadding*2)
	x := (float32(screen.Bounds().Dx()) - w) / 2
	y := float32(screen.Bounds().Dy()) - h - 40

	vector.FillRect(screen, x, y, w, h, cfg.BlackOverlay, false)
	text.Draw(screen, msg, face, int(x)+hudPadding, int(y)+hudPadding+bounds.Dy(), cfg.White)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
