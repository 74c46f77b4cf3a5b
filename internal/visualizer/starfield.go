package visualizer

import (
	"image/color"
	"math"
	"math/rand"
)

// Star is one point of the rotating field, in polar coordinates around the
// surface center. Only Angle changes after creation.
type Star struct {
	Angle    float64
	Distance float64
	Size     float64
	Speed    float64
}

const starMaxDistance = 900

// newStars builds a fixed ensemble. Distances are absolute pixels so a resize
// only moves the projection center.
func newStars(n int, rng *rand.Rand) []Star {
	stars := make([]Star, n)
	for i := range stars {
		stars[i] = Star{
			Angle:    rng.Float64() * 2 * math.Pi,
			Distance: 20 + rng.Float64()*starMaxDistance,
			Size:     0.5 + rng.Float64()*1.5,
			Speed:    0.0002 + rng.Float64()*0.0008,
		}
	}
	return stars
}

// project returns the star's position for the given camera rotation.
func (s Star) project(cx, cy, rotation float64) (float64, float64) {
	a := s.Angle + rotation
	return cx + math.Cos(a)*s.Distance, cy + math.Sin(a)*s.Distance
}

func (e *Engine) drawStarfield(w, h int, sig DriveSignals) {
	e.frame.Rotation += e.cfg.StarRotation
	cx, cy := float64(w)/2, float64(h)/2
	brush := solid(color.NRGBA{R: 255, G: 255, B: 255, A: alpha8(0.2 + sig.Glow*0.8)})
	for i := range e.stars {
		st := &e.stars[i]
		x, y := st.project(cx, cy, e.frame.Rotation)
		if x >= -st.Size && y >= -st.Size && x <= float64(w)+st.Size && y <= float64(h)+st.Size {
			e.off.FillCircle(x, y, st.Size, brush)
		}
		st.Angle += st.Speed
	}
}
