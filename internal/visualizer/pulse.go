package visualizer

import "math"

// pulseRadius is the base radius of the heartbeat blob.
func (e *Engine) pulseRadius(bass float64) float64 {
	return e.cfg.PulseFloor + clamp01(bass)*e.cfg.PulseRange
}

// pulseOffset is the radial displacement of one ring vertex: two
// phase-shifted sinusoids plus jitter, all scaled by bass.
func pulseOffset(angle float64, frame uint64, bass, jitter float64) float64 {
	f := float64(frame)
	wobble := math.Sin(angle*6+f*0.08) + math.Sin(angle*3-f*0.05)*0.5
	return wobble*bass*12 + (jitter-0.5)*bass*6
}

// drawPulse fills the noisy ring at the center and returns its base radius.
func (e *Engine) drawPulse(w, h int, sig DriveSignals) float64 {
	cx, cy := float64(w)/2, float64(h)/2
	radius := e.pulseRadius(sig.Bass)
	n := e.cfg.PulseSegments

	p := &e.path
	p.Reset()
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		r := radius + pulseOffset(a, e.frame.Frame, sig.Bass, e.rng.Float64())
		if r < 1 {
			r = 1
		}
		x, y := cx+math.Cos(a)*r, cy+math.Sin(a)*r
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	p.Close()

	// Soft shadow: the same ring widened a few times at low alpha.
	shadow := solid(e.pal.ColorAt(0.6, 0.15))
	for _, grow := range [...]float64{12, 8, 4} {
		e.off.Stroke(p, grow*2, shadow)
	}

	brush := newRadialBrush(cx, cy, 10, radius,
		e.pal.ColorAt(0.3, DefaultAlpha),
		e.pal.ColorAt(0.9, DefaultAlpha),
	)
	e.off.Fill(p, brush)
	return radius
}
