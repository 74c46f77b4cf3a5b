package visualizer

import (
	"image/color"
	"sync/atomic"
)

// Palette is the start/end color pair that tints every layer.
type Palette struct {
	Start RGB
	End   RGB
}

// FallbackPalette is used until artwork yields a better pair.
var FallbackPalette = Palette{
	Start: RGB{R: 160, G: 60, B: 200},
	End:   RGB{R: 50, G: 100, B: 255},
}

// DefaultAlpha is the alpha ColorAt callers use when they have no opinion.
const DefaultAlpha = 0.6

// Gradient maps a position in [0,1] to a color between the two palette
// entries. Set may be called from any goroutine; the pair is swapped in a
// single atomic store so readers never see half an update.
type Gradient struct {
	pal atomic.Pointer[Palette]
}

// NewGradient returns a gradient holding the fallback palette.
func NewGradient() *Gradient {
	g := &Gradient{}
	g.Set(FallbackPalette)
	return g
}

// Palette returns the current pair.
func (g *Gradient) Palette() Palette {
	if p := g.pal.Load(); p != nil {
		return *p
	}
	return FallbackPalette
}

// Set replaces the pair.
func (g *Gradient) Set(p Palette) {
	g.pal.Store(&p)
}

// ColorAt interpolates each channel at t, rounds to the nearest integer and
// packs alpha. Both t and alpha are clamped to [0,1].
func (p Palette) ColorAt(t, alpha float64) color.NRGBA {
	return withAlpha(lerpRGB(p.Start, p.End, t), alpha)
}

// ColorAt is Palette().ColorAt on the current pair.
func (g *Gradient) ColorAt(t, alpha float64) color.NRGBA {
	return g.Palette().ColorAt(t, alpha)
}
