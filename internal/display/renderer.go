package display

import (
	"image"
)

// Renderer converts an RGBA frame into a terminal string.
// It supports two modes:
//   - Color (half-block): "▀" with fg = upper pixel, bg = lower pixel, two
//     pixel rows per terminal row.
//   - ASCII (no color): one brightness character per cell.
//
// Each output pixel is the box average of the source pixels it covers, so
// thin strokes survive the downscale.
type Renderer struct {
	mode colorMode
	buf  []byte
}

// NewRenderer creates a renderer using the current terminal's color
// capabilities.
func NewRenderer() *Renderer {
	return &Renderer{mode: detectColorMode()}
}

// Render draws img into outW x outH terminal cells. Empty input or output
// sizes give "".
func (r *Renderer) Render(img *image.RGBA, outW, outH int) string {
	if img == nil || img.Rect.Empty() || outW <= 0 || outH <= 0 {
		return ""
	}
	// Worst case ~40 bytes per cell (two truecolor escapes + glyph).
	r.buf = r.buf[:0]
	if cap(r.buf) < outW*outH*40 {
		r.buf = make([]byte, 0, outW*outH*40)
	}

	if r.mode == colorOff {
		r.renderASCII(img, outW, outH)
	} else {
		r.renderHalfBlock(img, outW, outH)
	}
	return string(r.buf)
}

type rgb struct{ r, g, b uint8 }

func (r *Renderer) renderHalfBlock(img *image.RGBA, outW, outH int) {
	pixelRows := outH * 2
	for row := range outH {
		var lastFg, lastBg rgb
		fresh := true
		for col := range outW {
			top := boxAverage(img, col, row*2, outW, pixelRows)
			bot := boxAverage(img, col, row*2+1, outW, pixelRows)

			if fresh || top != lastFg {
				r.buf = appendColorSeq(r.buf, r.mode, false, top.r, top.g, top.b)
				lastFg = top
			}
			if fresh || bot != lastBg {
				r.buf = appendColorSeq(r.buf, r.mode, true, bot.r, bot.g, bot.b)
				lastBg = bot
			}
			fresh = false
			r.buf = append(r.buf, "▀"...)
		}
		r.buf = append(r.buf, ansiReset...)
		if row < outH-1 {
			r.buf = append(r.buf, '\n')
		}
	}
}

func (r *Renderer) renderASCII(img *image.RGBA, outW, outH int) {
	for row := range outH {
		for col := range outW {
			c := boxAverage(img, col, row, outW, outH)
			r.buf = append(r.buf, brightnessChar(luminance(c.r, c.g, c.b)))
		}
		if row < outH-1 {
			r.buf = append(r.buf, '\n')
		}
	}
}

// boxAverage averages the source pixels under output cell (cx, cy) of a
// gridW x gridH grid laid over img. Alpha is ignored; the engine's frames
// are composited over black.
func boxAverage(img *image.RGBA, cx, cy, gridW, gridH int) rgb {
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	x0 := b.Min.X + cx*w/gridW
	x1 := b.Min.X + (cx+1)*w/gridW
	y0 := b.Min.Y + cy*h/gridH
	y1 := b.Min.Y + (cy+1)*h/gridH
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	var sr, sg, sb, n int
	for y := y0; y < y1 && y < b.Max.Y; y++ {
		off := img.PixOffset(x0, y)
		for x := x0; x < x1 && x < b.Max.X; x++ {
			sr += int(img.Pix[off])
			sg += int(img.Pix[off+1])
			sb += int(img.Pix[off+2])
			off += 4
			n++
		}
	}
	if n == 0 {
		return rgb{}
	}
	return rgb{uint8(sr / n), uint8(sg / n), uint8(sb / n)}
}

// Grid returns the pixel size of a surface that maps cols x rows cells at
// cellW x cellH pixels per cell.
func Grid(cols, rows, cellW, cellH int) (w, h int) {
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	return cols * cellW, rows * cellH
}
