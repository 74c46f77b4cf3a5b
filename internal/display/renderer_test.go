package display

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderEmptyInputs(t *testing.T) {
	r := &Renderer{mode: colorTrue}
	if got := r.Render(nil, 10, 10); got != "" {
		t.Fatalf("expected empty output for nil image, got %q", got)
	}
	if got := r.Render(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, 10); got != "" {
		t.Fatalf("expected empty output for empty image, got %q", got)
	}
	if got := r.Render(filled(4, 4, color.RGBA{A: 255}), 0, 3); got != "" {
		t.Fatalf("expected empty output for zero columns, got %q", got)
	}
}

func TestRenderHalfBlockTruecolor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			c := color.RGBA{R: 255, A: 255}
			if y >= 2 {
				c = color.RGBA{B: 200, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	r := &Renderer{mode: colorTrue}
	out := r.Render(img, 2, 1)

	if strings.Count(out, "▀") != 2 {
		t.Fatalf("expected 2 half blocks, got %q", out)
	}
	if !strings.Contains(out, "\x1b[38;2;255;0;0m") {
		t.Fatalf("expected red foreground, got %q", out)
	}
	if !strings.Contains(out, "\x1b[48;2;0;0;200m") {
		t.Fatalf("expected blue background, got %q", out)
	}
	// Repeated colors are not re-emitted within a row.
	if strings.Count(out, "\x1b[38;2;") != 1 {
		t.Fatalf("expected one foreground escape, got %q", out)
	}
	if !strings.HasSuffix(out, ansiReset) {
		t.Fatalf("expected row to end with reset, got %q", out)
	}
}

func TestRenderASCIIRowsAndRamp(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(1, 0, color.RGBA{255, 255, 255, 255})
	img.SetRGBA(1, 1, color.RGBA{255, 255, 255, 255})
	r := &Renderer{mode: colorOff}
	out := r.Render(img, 2, 2)
	if out != " @\n @" {
		t.Fatalf("unexpected ascii output %q", out)
	}
}

func TestBoxAverageBlendsCoveredPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 200, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 100, G: 50, A: 255})
	got := boxAverage(img, 0, 0, 1, 1)
	if got != (rgb{150, 25, 0}) {
		t.Fatalf("expected averaged color, got %+v", got)
	}
}

func TestAppendColorSeqModes(t *testing.T) {
	if got := string(appendColorSeq(nil, colorANSI256, false, 255, 0, 0)); got != "\x1b[38;5;196m" {
		t.Fatalf("unexpected 256-color sequence %q", got)
	}
	if got := string(appendColorSeq(nil, colorANSI16, true, 255, 255, 255)); got != "\x1b[107m" {
		t.Fatalf("unexpected 16-color background %q", got)
	}
	if got := appendColorSeq(nil, colorOff, false, 1, 2, 3); len(got) != 0 {
		t.Fatalf("expected no sequence with colors off, got %q", got)
	}
}

func TestGrid(t *testing.T) {
	w, h := Grid(80, 24, 6, 12)
	if w != 480 || h != 288 {
		t.Fatalf("expected 480x288, got %dx%d", w, h)
	}
	if w, h := Grid(0, 24, 6, 12); w != 0 || h != 0 {
		t.Fatalf("expected zero size for zero columns, got %dx%d", w, h)
	}
}
