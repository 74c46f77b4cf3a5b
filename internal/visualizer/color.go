package visualizer

import (
	"fmt"
	"image/color"
	"math"
)

// RGB is an opaque 8-bit color.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func lerpRGB(a, b RGB, t float64) RGB {
	t = clamp01(t)
	return RGB{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
	}
}

func alpha8(a float64) uint8 {
	return uint8(math.Round(clamp01(a) * 255))
}

func withAlpha(c RGB, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha8(a)}
}

// lerpNRGBA interpolates two straight-alpha colors channel by channel.
func lerpNRGBA(a, b color.NRGBA, t float64) color.NRGBA {
	t = clamp01(t)
	return color.NRGBA{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
		A: lerpChannel(a.A, b.A, t),
	}
}
