// Package detect provides face detectors for the tracking loop.
package detect

import (
	"fmt"
	"math"
	"sort"

	"github.com/automoto/lookout/tracking"
)

// Detection is one candidate box in source-frame pixels, corners inclusive
// of X1/Y1 and exclusive of X2/Y2.
type Detection struct {
	X1, Y1, X2, Y2 float32
	Confidence     float32
}

func (d Detection) area() float32 {
	w, h := d.X2-d.X1, d.Y2-d.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Region converts the box to a FaceRegion, rounding outward.
func (d Detection) Region() tracking.FaceRegion {
	x1 := int(math.Floor(float64(d.X1)))
	y1 := int(math.Floor(float64(d.Y1)))
	x2 := int(math.Ceil(float64(d.X2)))
	y2 := int(math.Ceil(float64(d.Y2)))
	return tracking.FaceRegion{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1, Score: float64(d.Confidence)}
}

// Layout describes a channel-major YOLO output tensor of shape
// (1, 4+1, Predictions): cx, cy, w, h, confidence.
type Layout struct {
	Predictions int
	InputWidth  int
	InputHeight int
	Normalized  bool // box coordinates are in [0,1] rather than input pixels
}

// DecodePredictions keeps predictions at or above threshold and maps their
// boxes from model input space onto a frameW x frameH frame. Results are
// ordered by descending confidence.
func DecodePredictions(preds []float32, layout Layout, frameW, frameH int, threshold float32) ([]Detection, error) {
	n := layout.Predictions
	if n <= 0 || layout.InputWidth <= 0 || layout.InputHeight <= 0 {
		return nil, fmt.Errorf("invalid output layout %+v", layout)
	}
	if want := 5 * n; len(preds) != want {
		return nil, fmt.Errorf("unexpected predictions length: got %d, want %d", len(preds), want)
	}
	if frameW <= 0 || frameH <= 0 {
		return nil, fmt.Errorf("frame %dx%d: %w", frameW, frameH, tracking.ErrMalformedFrame)
	}

	inW, inH := float32(layout.InputWidth), float32(layout.InputHeight)
	coordScaleX, coordScaleY := float32(1), float32(1)
	if layout.Normalized {
		coordScaleX, coordScaleY = inW, inH
	}
	scaleX := float32(frameW) / inW
	scaleY := float32(frameH) / inH

	out := make([]Detection, 0, 16)
	for i := 0; i < n; i++ {
		conf := preds[4*n+i]
		if conf < threshold || math.IsNaN(float64(conf)) {
			continue
		}
		cx := preds[i] * coordScaleX
		cy := preds[n+i] * coordScaleY
		w := preds[2*n+i] * coordScaleX
		h := preds[3*n+i] * coordScaleY

		d := Detection{
			X1:         clampf((cx-w/2)*scaleX, 0, float32(frameW)),
			Y1:         clampf((cy-h/2)*scaleY, 0, float32(frameH)),
			X2:         clampf((cx+w/2)*scaleX, 0, float32(frameW)),
			Y2:         clampf((cy+h/2)*scaleY, 0, float32(frameH)),
			Confidence: conf,
		}
		if d.area() == 0 {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out, nil
}

// IoU returns the intersection over union of two boxes.
func IoU(a, b Detection) float32 {
	x1 := max(a.X1, b.X1)
	y1 := max(a.Y1, b.Y1)
	x2 := min(a.X2, b.X2)
	y2 := min(a.Y2, b.Y2)
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := a.area() + b.area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// SuppressOverlaps performs greedy non-maximum suppression: walking from the
// most confident box down, any box overlapping a kept one by more than
// threshold is dropped.
func SuppressOverlaps(dets []Detection, threshold float32) []Detection {
	if len(dets) < 2 {
		return dets
	}
	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	for _, d := range sorted {
		overlaps := false
		for _, k := range kept {
			if IoU(d, k) > threshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, d)
		}
	}
	return kept
}

// Regions converts detections to face regions, dropping degenerate boxes.
func Regions(dets []Detection) []tracking.FaceRegion {
	regions := make([]tracking.FaceRegion, 0, len(dets))
	for _, d := range dets {
		r := d.Region()
		if r.Area() > 0 {
			regions = append(regions, r)
		}
	}
	return regions
}

// AnchorCount is the prediction count of a stride 8/16/32 YOLO head for a
// square input of the given size.
func AnchorCount(size int) int {
	total := 0
	for _, stride := range []int{8, 16, 32} {
		cells := size / stride
		total += cells * cells
	}
	return total
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
