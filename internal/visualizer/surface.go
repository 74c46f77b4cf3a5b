package visualizer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

type point struct {
	x float64
	y float64
}

// Path is a set of polygonal subpaths in surface pixel coordinates. Its
// storage is reused across Reset calls.
type Path struct {
	pts    []point
	starts []int
	closed []bool
}

// Reset empties the path but keeps its storage.
func (p *Path) Reset() {
	p.pts = p.pts[:0]
	p.starts = p.starts[:0]
	p.closed = p.closed[:0]
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) {
	p.starts = append(p.starts, len(p.pts))
	p.closed = append(p.closed, false)
	p.pts = append(p.pts, point{x, y})
}

// LineTo extends the current subpath, starting one if needed.
func (p *Path) LineTo(x, y float64) {
	if len(p.starts) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.pts = append(p.pts, point{x, y})
}

// Close marks the current subpath closed.
func (p *Path) Close() {
	if n := len(p.closed); n > 0 {
		p.closed[n-1] = true
	}
}

func (p *Path) subpaths() int { return len(p.starts) }

func (p *Path) subpath(i int) ([]point, bool) {
	end := len(p.pts)
	if i+1 < len(p.starts) {
		end = p.starts[i+1]
	}
	return p.pts[p.starts[i]:end], p.closed[i]
}

// bounds returns the pixel rectangle covering every vertex.
func (p *Path) bounds() image.Rectangle {
	if len(p.pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := p.pts[0].x, p.pts[0].y
	maxX, maxY := minX, minY
	for _, pt := range p.pts[1:] {
		minX, maxX = math.Min(minX, pt.x), math.Max(maxX, pt.x)
		minY, maxY = math.Min(minY, pt.y), math.Max(maxY, pt.y)
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	)
}

// Brush colors the pixels a shape covers.
type Brush interface {
	// shade returns the straight-alpha color of pixel (x, y).
	shade(x, y int) color.NRGBA
}

// solidBrush paints one color everywhere.
type solidBrush color.NRGBA

func (b solidBrush) shade(int, int) color.NRGBA { return color.NRGBA(b) }

func solid(c color.NRGBA) solidBrush { return solidBrush(c) }

// Surface is a raster target with canvas-like fill, stroke and blit
// operations. Contents persist across frames until Resize.
//
// Every shape is rasterized over its own bounding box clipped to the
// surface, never over the whole surface.
type Surface struct {
	img *image.RGBA
	z   *vector.Rasterizer

	geom    Path
	mask    *image.Alpha
	uniform *image.Uniform
	scratch *image.RGBA
}

// NewSurface allocates a w x h surface.
func NewSurface(w, h int) *Surface {
	s := &Surface{
		z:       &vector.Rasterizer{},
		mask:    &image.Alpha{},
		uniform: image.NewUniform(color.NRGBA{}),
	}
	s.Resize(w, h)
	return s
}

// Image exposes the backing pixels.
func (s *Surface) Image() *image.RGBA { return s.img }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Resize reallocates the surface. Existing pixels are dropped.
func (s *Surface) Resize(w, h int) {
	s.img = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	s.scratch = nil
}

func (s *Surface) empty() bool {
	return s.img == nil || s.img.Rect.Empty()
}

// Fade paints translucent black over the whole surface so earlier frames
// linger as trails.
func (s *Surface) Fade(alpha float64) {
	if s.empty() {
		return
	}
	s.uniform.C = color.NRGBA{A: alpha8(alpha)}
	draw.Draw(s.img, s.img.Rect, s.uniform, image.Point{}, draw.Over)
}

// Fill paints the interior of p with brush.
func (s *Surface) Fill(p *Path, brush Brush) {
	if s.empty() {
		return
	}
	s.raster(p, brush)
}

// Stroke paints every edge of p with the given line width. Joints are
// rounded with small polygons.
func (s *Surface) Stroke(p *Path, width float64, brush Brush) {
	if s.empty() || width <= 0 {
		return
	}
	hw := width / 2
	g := &s.geom
	g.Reset()
	for i := range p.subpaths() {
		pts, closed := p.subpath(i)
		n := len(pts)
		for j := 0; j+1 < n; j++ {
			segment(g, pts[j], pts[j+1], hw)
		}
		if closed && n > 2 {
			segment(g, pts[n-1], pts[0], hw)
		}
		if hw >= 0.75 {
			for _, pt := range pts {
				polygon(g, pt.x, pt.y, hw, 6, -1)
			}
		}
	}
	s.raster(g, brush)
}

// FillCircle paints an antialiased disc.
func (s *Surface) FillCircle(cx, cy, r float64, brush Brush) {
	if s.empty() || r <= 0 {
		return
	}
	s.ring(cx, cy, 0, r, brush)
}

// StrokeCircle paints an antialiased ring of the given width centered on
// radius r.
func (s *Surface) StrokeCircle(cx, cy, r, width float64, brush Brush) {
	if s.empty() || r <= 0 || width <= 0 {
		return
	}
	s.ring(cx, cy, r-width/2, r+width/2, brush)
}

// DrawImage scales src into r and composites it at the given opacity. The
// scaling buffer is kept between calls and only grows.
func (s *Surface) DrawImage(src image.Image, r image.Rectangle, alpha float64) {
	if s.empty() || src == nil || r.Empty() {
		return
	}
	if s.scratch == nil || s.scratch.Rect.Dx() < r.Dx() || s.scratch.Rect.Dy() < r.Dy() {
		w, h := r.Dx()*scratchHeadroom/100, r.Dy()*scratchHeadroom/100
		s.scratch = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	tile := s.scratch.SubImage(image.Rect(0, 0, r.Dx(), r.Dy())).(*image.RGBA)
	xdraw.ApproxBiLinear.Scale(tile, tile.Rect, src, src.Bounds(), xdraw.Src, nil)

	clip := r.Intersect(s.img.Rect)
	op := uint32(alpha8(alpha))
	if clip.Empty() || op == 0 {
		return
	}
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		si := tile.PixOffset(clip.Min.X-r.Min.X, y-r.Min.Y)
		di := s.img.PixOffset(clip.Min.X, y)
		for x := clip.Min.X; x < clip.Max.X; x, si, di = x+1, si+4, di+4 {
			sp := tile.Pix[si : si+4 : si+4]
			sa := uint32(sp[3]) * op / 255
			if sa == 0 {
				continue
			}
			inv := 255 - sa
			dp := s.img.Pix[di : di+4 : di+4]
			dp[0] = uint8((uint32(sp[0])*op + uint32(dp[0])*inv + 127) / 255)
			dp[1] = uint8((uint32(sp[1])*op + uint32(dp[1])*inv + 127) / 255)
			dp[2] = uint8((uint32(sp[2])*op + uint32(dp[2])*inv + 127) / 255)
			dp[3] = uint8((sa*255 + uint32(dp[3])*inv + 127) / 255)
		}
	}
}

// scratchHeadroom over-allocates the scaling buffer, in percent, so a
// breathing image does not reallocate it every frame.
const scratchHeadroom = 115

// raster fills every subpath of p with brush. Solid brushes go straight
// through the rasterizer; gradients are shaded only where the coverage mask
// is non-zero.
func (s *Surface) raster(p *Path, brush Brush) {
	box := p.bounds().Intersect(s.img.Rect)
	if box.Empty() {
		return
	}
	w, h := box.Dx(), box.Dy()
	ox, oy := float64(box.Min.X), float64(box.Min.Y)

	s.z.Reset(w, h)
	for i := range p.subpaths() {
		pts, _ := p.subpath(i)
		if len(pts) < 3 {
			continue
		}
		s.z.MoveTo(float32(pts[0].x-ox), float32(pts[0].y-oy))
		for _, pt := range pts[1:] {
			s.z.LineTo(float32(pt.x-ox), float32(pt.y-oy))
		}
		s.z.ClosePath()
	}

	if c, ok := brush.(solidBrush); ok {
		s.uniform.C = color.NRGBA(c)
		s.z.DrawOp = draw.Over
		s.z.Draw(s.img, box, s.uniform, image.Point{})
		return
	}

	mask := s.maskFor(w, h)
	s.z.DrawOp = draw.Src
	s.z.Draw(mask, mask.Rect, image.Opaque, image.Point{})
	for y := range h {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		di := s.img.PixOffset(box.Min.X, box.Min.Y+y)
		for x, m := range row {
			if m != 0 {
				blend(s.img.Pix[di+x*4:di+x*4+4:di+x*4+4], brush.shade(box.Min.X+x, box.Min.Y+y), uint32(m))
			}
		}
	}
}

// ring paints the annulus between inner and outer radius with a one pixel
// antialiased edge. inner <= 0 paints a disc. Only rows and spans the ring
// touches are visited.
func (s *Surface) ring(cx, cy, inner, outer float64, brush Brush) {
	reach := outer + 1
	box := image.Rect(
		int(math.Floor(cx-reach)), int(math.Floor(cy-reach)),
		int(math.Ceil(cx+reach)), int(math.Ceil(cy+reach)),
	).Intersect(s.img.Rect)
	if box.Empty() {
		return
	}
	hole := inner - 1
	for y := box.Min.Y; y < box.Max.Y; y++ {
		dy := float64(y) + 0.5 - cy
		if math.Abs(dy) > reach {
			continue
		}
		span := math.Sqrt(reach*reach - dy*dy)
		x0 := max(box.Min.X, int(math.Floor(cx-span)))
		x1 := min(box.Max.X, int(math.Ceil(cx+span)))
		skip := 0.0
		if hole > 0 && math.Abs(dy) < hole {
			skip = math.Sqrt(hole*hole - dy*dy)
		}
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			if dx > -skip && dx < skip {
				x = int(math.Ceil(cx+skip-0.5)) - 1
				continue
			}
			d := math.Hypot(dx, dy)
			cov := clamp01(outer - d + 0.5)
			if inner > 0 {
				cov *= clamp01(d - inner + 0.5)
			}
			if cov <= 0 {
				continue
			}
			i := s.img.PixOffset(x, y)
			blend(s.img.Pix[i:i+4:i+4], brush.shade(x, y), uint32(cov*255+0.5))
		}
	}
}

// maskFor returns a w x h coverage mask backed by reused storage.
func (s *Surface) maskFor(w, h int) *image.Alpha {
	n := w * h
	if cap(s.mask.Pix) < n {
		s.mask.Pix = make([]uint8, n)
	}
	s.mask.Pix = s.mask.Pix[:n]
	s.mask.Stride = w
	s.mask.Rect = image.Rect(0, 0, w, h)
	return s.mask
}

// blend composites straight-alpha c at coverage cov (0..255) over one
// premultiplied RGBA pixel.
func blend(dp []uint8, c color.NRGBA, cov uint32) {
	a := uint32(c.A) * cov / 255
	if a == 0 {
		return
	}
	inv := 255 - a
	dp[0] = uint8((uint32(c.R)*a + uint32(dp[0])*inv + 127) / 255)
	dp[1] = uint8((uint32(c.G)*a + uint32(dp[1])*inv + 127) / 255)
	dp[2] = uint8((uint32(c.B)*a + uint32(dp[2])*inv + 127) / 255)
	dp[3] = uint8((a*255 + uint32(dp[3])*inv + 127) / 255)
}

// segment adds a quad covering a->b widened by hw on each side. All quads
// share one winding so overlaps accumulate instead of cancelling.
func segment(g *Path, a, b point, hw float64) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	g.MoveTo(a.x+nx, a.y+ny)
	g.LineTo(b.x+nx, b.y+ny)
	g.LineTo(b.x-nx, b.y-ny)
	g.LineTo(a.x-nx, a.y-ny)
}

// polygon adds a regular n-gon. dir -1 matches segment winding, +1 punches
// a hole.
func polygon(g *Path, cx, cy, r float64, n int, dir float64) {
	for k := range n {
		a := dir * 2 * math.Pi * float64(k) / float64(n)
		x, y := cx+math.Cos(a)*r, cy+math.Sin(a)*r
		if k == 0 {
			g.MoveTo(x, y)
		} else {
			g.LineTo(x, y)
		}
	}
}

// linearBrush shades along the axis (x0,y0)->(x1,y1), clamping outside it.
type linearBrush struct {
	x0, y0   float64
	dx, dy   float64
	invLen2  float64
	from, to color.NRGBA
}

func newLinearBrush(x0, y0, x1, y1 float64, from, to color.NRGBA) linearBrush {
	b := linearBrush{x0: x0, y0: y0, dx: x1 - x0, dy: y1 - y0, from: from, to: to}
	if l2 := b.dx*b.dx + b.dy*b.dy; l2 > 0 {
		b.invLen2 = 1 / l2
	}
	return b
}

func (b linearBrush) shade(x, y int) color.NRGBA {
	px, py := float64(x)+0.5-b.x0, float64(y)+0.5-b.y0
	return lerpNRGBA(b.from, b.to, (px*b.dx+py*b.dy)*b.invLen2)
}

// radialBrush shades concentric rings from r0 to r1 around (cx,cy).
type radialBrush struct {
	cx, cy   float64
	r0, r1   float64
	from, to color.NRGBA
}

func newRadialBrush(cx, cy, r0, r1 float64, from, to color.NRGBA) radialBrush {
	return radialBrush{cx: cx, cy: cy, r0: r0, r1: r1, from: from, to: to}
}

func (b radialBrush) shade(x, y int) color.NRGBA {
	d := math.Hypot(float64(x)+0.5-b.cx, float64(y)+0.5-b.cy)
	span := b.r1 - b.r0
	if span <= 0 {
		if d < b.r1 {
			return b.from
		}
		return b.to
	}
	return lerpNRGBA(b.from, b.to, (d-b.r0)/span)
}
