package visualizer

import (
	"image"
	"image/color"
	"testing"
)

func opaque(c color.RGBA) bool { return c.A > 0 }

func TestFillCoversInterior(t *testing.T) {
	s := NewSurface(20, 20)
	var p Path
	p.MoveTo(2, 2)
	p.LineTo(18, 2)
	p.LineTo(18, 18)
	p.LineTo(2, 18)
	p.Close()
	s.Fill(&p, solid(color.NRGBA{255, 0, 0, 255}))

	if got := s.Image().RGBAAt(10, 10); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("expected solid red inside, got %+v", got)
	}
	if opaque(s.Image().RGBAAt(0, 0)) {
		t.Fatal("expected the corner to stay empty")
	}
}

func TestCrossingStrokesDoNotCancel(t *testing.T) {
	s := NewSurface(20, 20)
	var p Path
	p.MoveTo(0, 10)
	p.LineTo(20, 10)
	p.MoveTo(10, 0)
	p.LineTo(10, 20)
	s.Stroke(&p, 4, solid(color.NRGBA{0, 255, 0, 255}))

	if !opaque(s.Image().RGBAAt(10, 10)) {
		t.Fatal("expected the crossing to be painted")
	}
	if !opaque(s.Image().RGBAAt(3, 10)) || !opaque(s.Image().RGBAAt(10, 3)) {
		t.Fatal("expected both strokes to be painted")
	}
}

func TestStrokeCircleLeavesHole(t *testing.T) {
	s := NewSurface(40, 40)
	s.StrokeCircle(20, 20, 15, 2, solid(color.NRGBA{255, 255, 255, 255}))
	if opaque(s.Image().RGBAAt(20, 20)) {
		t.Fatal("expected the ring's center to stay empty")
	}
	if !opaque(s.Image().RGBAAt(35, 20)) {
		t.Fatal("expected the ring to be painted")
	}
}

func TestFadeDarkensTowardBlack(t *testing.T) {
	s := NewSurface(2, 2)
	s.FillCircle(1, 1, 3, solid(color.NRGBA{200, 200, 200, 255}))
	before := s.Image().RGBAAt(0, 0).R
	s.Fade(0.5)
	after := s.Image().RGBAAt(0, 0)
	if after.R >= before || after.A != 255 {
		t.Fatalf("expected darker opaque pixel, got %+v from %d", after, before)
	}
}

func TestEmptySurfaceIgnoresDrawing(t *testing.T) {
	s := NewSurface(0, 0)
	var p Path
	polygon(&p, 0, 0, 10, 12, -1)
	s.Fill(&p, solid(color.NRGBA{A: 255}))
	s.Stroke(&p, 2, solid(color.NRGBA{A: 255}))
	s.Fade(0.1)
	s.DrawImage(image.NewRGBA(image.Rect(0, 0, 4, 4)), image.Rect(0, 0, 4, 4), 1)
	if !s.Image().Rect.Empty() {
		t.Fatal("expected the surface to stay empty")
	}
}

func TestDrawImageScalesWithOpacity(t *testing.T) {
	s := NewSurface(8, 8)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			src.SetRGBA(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	s.DrawImage(src, image.Rect(0, 0, 8, 8), 0.5)
	got := s.Image().RGBAAt(4, 4)
	if got.B < 120 || got.B > 135 || got.A < 120 || got.A > 135 {
		t.Fatalf("expected half-opacity blue, got %+v", got)
	}
}

func TestRadialBrushInterpolates(t *testing.T) {
	b := newRadialBrush(0, 0, 0, 10, color.NRGBA{0, 0, 0, 255}, color.NRGBA{200, 0, 0, 255})
	inner := b.shade(0, 0)
	outer := b.shade(20, 0)
	if inner.R > 20 || outer.R != 200 {
		t.Fatalf("unexpected radial stops %+v / %+v", inner, outer)
	}
}

func TestDrawImageKeepsScratchAcrossBreathing(t *testing.T) {
	s := NewSurface(200, 200)
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	s.DrawImage(src, image.Rect(50, 50, 150, 150), 0.1)
	first := s.scratch
	for _, size := range []int{112, 98, 105, 100} {
		s.DrawImage(src, image.Rect(50, 50, 50+size, 50+size), 0.1)
		if s.scratch != first {
			t.Fatalf("scratch reallocated at size %d", size)
		}
	}
	s.Resize(10, 10)
	if s.scratch != nil {
		t.Fatal("expected Resize to drop the scratch buffer")
	}
}

func TestDrawImageClipsAtEdges(t *testing.T) {
	s := NewSurface(8, 8)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			src.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	s.DrawImage(src, image.Rect(-4, -4, 4, 4), 1)
	if got := s.Image().RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("expected opaque red inside the clip, got %+v", got)
	}
	if got := s.Image().RGBAAt(6, 6); got != (color.RGBA{}) {
		t.Fatalf("expected untouched pixel outside the image, got %+v", got)
	}
}

func TestGradientFillStaysInsideShape(t *testing.T) {
	s := NewSurface(40, 40)
	var p Path
	p.MoveTo(10, 10)
	p.LineTo(20, 10)
	p.LineTo(20, 20)
	p.LineTo(10, 20)
	p.Close()
	s.Fill(&p, newLinearBrush(10, 0, 20, 0, color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 0, 255, 255}))

	left, right := s.Image().RGBAAt(11, 15), s.Image().RGBAAt(18, 15)
	if left.R <= right.R || right.B <= left.B || left.A != 255 {
		t.Fatalf("expected red to blue across the square, got %+v / %+v", left, right)
	}
	for _, pt := range []image.Point{{5, 5}, {25, 15}, {15, 25}, {39, 39}} {
		if got := s.Image().RGBAAt(pt.X, pt.Y); got.A != 0 {
			t.Fatalf("pixel %v painted outside the shape: %+v", pt, got)
		}
	}
}

func TestShapesPartlyOffSurfaceAreClipped(t *testing.T) {
	s := NewSurface(20, 20)
	s.FillCircle(0, 0, 5, solid(color.NRGBA{255, 255, 255, 255}))
	s.StrokeCircle(20, 20, 6, 2, solid(color.NRGBA{255, 255, 255, 255}))
	var p Path
	polygon(&p, -100, -100, 10, 12, -1)
	s.Fill(&p, solid(color.NRGBA{255, 255, 255, 255}))

	if got := s.Image().RGBAAt(1, 1); got.A != 255 {
		t.Fatalf("expected the clipped disc to paint the corner, got %+v", got)
	}
	if got := s.Image().RGBAAt(14, 19); got.A == 0 {
		t.Fatalf("expected the clipped ring to reach the edge, got %+v", got)
	}
	if got := s.Image().RGBAAt(10, 10); got.A != 0 {
		t.Fatalf("expected the middle untouched, got %+v", got)
	}
}

func TestSmallDiscIsAntialiased(t *testing.T) {
	s := NewSurface(10, 10)
	s.FillCircle(5, 5, 1.5, solid(color.NRGBA{255, 255, 255, 255}))
	center := s.Image().RGBAAt(5, 5)
	edge := s.Image().RGBAAt(6, 4)
	if center.A != 255 {
		t.Fatalf("expected a solid center, got %+v", center)
	}
	if edge.A == 0 || edge.A == 255 {
		t.Fatalf("expected partial coverage at the rim, got %+v", edge)
	}
	if got := s.Image().RGBAAt(0, 0); got.A != 0 {
		t.Fatalf("expected nothing far from the disc, got %+v", got)
	}
}
