package tracking

import "fmt"

// SelectFace picks the most prominent face: the largest area wins and ties go
// to the first one encountered. Degenerate boxes are never selected.
func SelectFace(regions []FaceRegion) (FaceRegion, bool) {
	best := -1
	bestArea := 0
	for i, r := range regions {
		area := r.Area()
		if area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return FaceRegion{}, false
	}
	return regions[best], true
}

// Normalize maps a region's center onto [-1, 1]² relative to the frame center.
// Coordinates outside the frame are clamped onto its edge.
func Normalize(region FaceRegion, width, height int) (NormalizedPosition, error) {
	if width <= 0 || height <= 0 {
		return NormalizedPosition{}, fmt.Errorf("%w: %dx%d", ErrMalformedFrame, width, height)
	}

	cx, cy := region.Center()
	halfW := float64(width) / 2
	halfH := float64(height) / 2

	pos := NormalizedPosition{
		X: (cx - halfW) / halfW,
		Y: (cy - halfH) / halfH,
	}
	return pos.Clamped(), nil
}
