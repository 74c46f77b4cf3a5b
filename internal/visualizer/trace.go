package visualizer

const traceWidth = 2

// drawTrace strokes the raw time-domain samples across the full width.
func (e *Engine) drawTrace(w, h int) {
	wave := e.sampler.Wave
	if len(wave) == 0 {
		return
	}
	width, height := float64(w), float64(h)
	p := &e.path
	p.Reset()
	for i, v := range wave {
		x := float64(i) / float64(len(wave)) * width
		y := float64(v) / 255 * height
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	brush := newLinearBrush(0, 0, width, 0,
		e.pal.ColorAt(0, DefaultAlpha),
		e.pal.ColorAt(1, DefaultAlpha),
	)
	e.off.Stroke(p, traceWidth, brush)
}
