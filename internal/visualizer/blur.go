package visualizer

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// blurScale is the downsampling factor of the blur pass. The radius is
// divided by the same factor so the visible softness is unchanged.
const blurScale = 4

// BlurState is the smoothed blur radius of the post-process stage. Each
// engine owns its own.
type BlurState struct {
	Amount float64

	small *image.RGBA
}

// Target is the blur the stage is heading for given the ripple count.
func (b *BlurState) Target(cfg Config, ripples int) float64 {
	if ripples > cfg.BlurRippleThreshold {
		return cfg.BlurAmount
	}
	return 0
}

// Step moves Amount toward target by the configured rate. It never crosses
// the target.
func (b *BlurState) Step(target, rate float64) float64 {
	b.Amount += (target - b.Amount) * rate
	return b.Amount
}

// composite replaces dst with src, blurred when the current amount is large
// enough to matter.
func (b *BlurState) composite(dst, src *image.RGBA, minBlur float64) {
	if src.Rect.Empty() {
		draw.Draw(dst, dst.Rect, image.Transparent, image.Point{}, draw.Src)
		return
	}
	if b.Amount < minBlur {
		draw.Draw(dst, dst.Rect, src, src.Rect.Min, draw.Src)
		return
	}
	small := b.shrink(src)
	blurred := imaging.Blur(small, b.Amount/blurScale)
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, blurred, blurred.Rect, xdraw.Src, nil)
}

// shrink box-averages src into a buffer blurScale times smaller on each
// axis. The buffer is reused while the size holds.
func (b *BlurState) shrink(src *image.RGBA) *image.RGBA {
	w := (src.Rect.Dx() + blurScale - 1) / blurScale
	h := (src.Rect.Dy() + blurScale - 1) / blurScale
	if b.small == nil || b.small.Rect.Dx() != w || b.small.Rect.Dy() != h {
		b.small = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	for y := range h {
		y0, y1 := y*blurScale, min((y+1)*blurScale, sh)
		for x := range w {
			x0, x1 := x*blurScale, min((x+1)*blurScale, sw)
			var r, g, bl, a uint32
			for sy := y0; sy < y1; sy++ {
				i := src.PixOffset(src.Rect.Min.X+x0, src.Rect.Min.Y+sy)
				for sx := x0; sx < x1; sx, i = sx+1, i+4 {
					p := src.Pix[i : i+4 : i+4]
					r += uint32(p[0])
					g += uint32(p[1])
					bl += uint32(p[2])
					a += uint32(p[3])
				}
			}
			n := uint32((x1 - x0) * (y1 - y0))
			o := b.small.PixOffset(x, y)
			d := b.small.Pix[o : o+4 : o+4]
			d[0] = uint8((r + n/2) / n)
			d[1] = uint8((g + n/2) / n)
			d[2] = uint8((bl + n/2) / n)
			d[3] = uint8((a + n/2) / n)
		}
	}
	return b.small
}
