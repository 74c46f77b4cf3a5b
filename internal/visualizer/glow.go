package visualizer

import (
	"image"
	"math"
)

const (
	glowSize    = 0.6
	glowAlpha   = 0.08
	glowBreathe = 0.02
	glowBass    = 0.1
)

// glowScale is the breathing factor applied to the artwork size.
func glowScale(frame uint64, bass float64) float64 {
	return 1 + math.Sin(float64(frame)*0.05)*glowBreathe + bass*glowBass
}

// drawGlow paints the artwork faintly behind everything else. Missing or
// not-yet-decoded artwork is skipped.
func (e *Engine) drawGlow(w, h int, sig DriveSignals) {
	art := e.Artwork()
	if art == nil {
		return
	}
	size := math.Min(float64(w), float64(h)) * glowSize * glowScale(e.frame.Frame, sig.Bass)
	half := size / 2
	cx, cy := float64(w)/2, float64(h)/2
	r := image.Rect(
		int(math.Round(cx-half)), int(math.Round(cy-half)),
		int(math.Round(cx+half)), int(math.Round(cy+half)),
	)
	e.off.DrawImage(art, r, glowAlpha)
}
