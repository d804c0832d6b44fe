package systems

import (
	"github.com/automoto/lookout/components"
	cfg "github.com/automoto/lookout/config"
	"github.com/automoto/lookout/tags"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

var (
	drawOp  = &ebiten.DrawImageOptions{}
	maskOp  = &ebiten.DrawImageOptions{Blend: ebiten.BlendDestinationIn}
	eyeBuf  *ebiten.Image
	eyeMask *ebiten.Image
	bufSize int
)

// DrawEyes renders every eye: sclera, iris, pupil and highlight, then the
// lids, all clipped to the eye's circle.
func DrawEyes(ecs *ecs.ECS, screen *ebiten.Image) {
	screen.Fill(cfg.Eyes.Background)

	tags.Eye.Each(ecs.World, func(e *donburi.Entry) {
		drawEye(screen, components.Eye.Get(e))
	})

	if cfg.Debug.DrawTarget {
		drawTargets(ecs, screen)
	}
}

func drawEye(screen *ebiten.Image, eye *components.EyeData) {
	r := float32(eye.Radius)
	if r <= 0 {
		return
	}
	buf, mask := eyeBuffers(int(r*2) + 2)
	buf.Clear()

	// Buffer coordinates, eye centered in the buffer.
	c := float32(bufSize) / 2
	vector.FillCircle(buf, c, c, r, cfg.Eyes.Sclera, true)

	irisR := r * float32(cfg.Eyes.IrisRatio)
	ix := c + float32(eye.Pupil.X)
	iy := c + float32(eye.Pupil.Y)
	vector.FillCircle(buf, ix, iy, irisR, cfg.Eyes.Iris, true)
	vector.FillCircle(buf, ix, iy, irisR*float32(cfg.Eyes.PupilRatio), cfg.Eyes.Pupil, true)
	vector.FillCircle(buf, ix-irisR*0.3, iy-irisR*0.3, irisR*0.18, cfg.Eyes.Highlight, true)

	drawLids(buf, c, r, float32(eye.Lid))

	buf.DrawImage(mask, maskOp)

	drawOp.GeoM.Reset()
	drawOp.GeoM.Translate(eye.Center.X-float64(c), eye.Center.Y-float64(c))
	screen.DrawImage(buf, drawOp)

	if cfg.Eyes.OutlineWidth > 0 {
		vector.StrokeCircle(screen, float32(eye.Center.X), float32(eye.Center.Y), r,
			cfg.Eyes.OutlineWidth, cfg.Eyes.Lid, true)
	}
}

// drawLids closes the upper lid a little further than the lower one so they
// meet just below center. Each lid is the edge of a larger circle, which gives
// the closing line a slight curve.
func drawLids(buf *ebiten.Image, c, r, lid float32) {
	if lid <= 0 {
		return
	}
	big := r * 3
	upperEdge := c - r + lid*r*1.1
	lowerEdge := c + r - lid*r*0.9
	vector.FillCircle(buf, c, upperEdge-big, big, cfg.Eyes.Lid, true)
	vector.FillCircle(buf, c, lowerEdge+big, big, cfg.Eyes.Lid, true)
}

// eyeBuffers returns the offscreen eye image and its circular mask,
// reallocating both when the eye size changes.
func eyeBuffers(size int) (*ebiten.Image, *ebiten.Image) {
	if eyeBuf != nil && size == bufSize {
		return eyeBuf, eyeMask
	}
	if eyeBuf != nil {
		eyeBuf.Deallocate()
		eyeMask.Deallocate()
	}
	bufSize = size
	eyeBuf = ebiten.NewImage(size, size)
	eyeMask = ebiten.NewImage(size, size)
	c := float32(size) / 2
	vector.FillCircle(eyeMask, c, c, c-1, cfg.White, true)
	return eyeBuf, eyeMask
}

func drawTargets(ecs *ecs.ECS, screen *ebiten.Image) {
	gazeEntry, ok := components.Gaze.First(ecs.World)
	if !ok {
		return
	}
	gaze := components.Gaze.Get(gazeEntry)
	if gaze.Controller == nil {
		return
	}
	mc := gaze.Controller.Config()
	offset := PupilOffset(gaze.Target, mc.MaxYaw, mc.MaxPitch)

	ring := cfg.LightRed
	if gaze.Tracking {
		ring = cfg.BrightGreen
	}
	tags.Eye.Each(ecs.World, func(e *donburi.Entry) {
		eye := components.Eye.Get(e)
		travel := IrisTravel(eye.Radius)
		x := float32(eye.Center.X + offset.X*travel)
		y := float32(eye.Center.Y + offset.Y*travel)
		vector.StrokeCircle(screen, x, y, float32(eye.Radius*cfg.Eyes.IrisRatio), 2, ring, true)
	})
}
