package visualizer

import (
	"image/color"
	"math"
)

type waveEdge uint8

const (
	waveTop waveEdge = iota
	waveBottom
)

const (
	waveInset = 100
	waveStep  = 8
)

// waveShape returns amplitude, pulse and spatial frequency for a bass level.
func waveShape(frame uint64, bass float64) (amp, pulse, freq float64) {
	amp = 5 + bass*10
	pulse = 1 + math.Sin(float64(frame)*0.1)*0.3 + bass*1.5
	freq = 0.005 + bass*0.005
	return amp, pulse, freq
}

// drawWave fills a horizon band hugging the top or bottom edge.
func (e *Engine) drawWave(w, h int, sig DriveSignals, edge waveEdge) {
	width, height := float64(w), float64(h)
	top := edge == waveTop
	base := height - waveInset
	anchor := height
	if top {
		base = waveInset
		anchor = 0
	}

	amp, pulse, freq := waveShape(e.frame.Frame, sig.Bass)
	phase := float64(e.frame.Frame) * 0.03

	p := &e.path
	p.Reset()
	p.MoveTo(0, anchor)
	for x := 0.0; x <= width; x += waveStep {
		p.LineTo(x, base+math.Sin(x*freq+phase)*amp*pulse)
	}
	p.LineTo(width, anchor)
	p.Close()

	from := e.pal.ColorAt(0, 0.3)
	var brush linearBrush
	if top {
		brush = newLinearBrush(0, 0, 0, base+300, from, color.NRGBA{})
	} else {
		brush = newLinearBrush(0, base-50, 0, height, from, color.NRGBA{A: alpha8(0.7)})
	}
	e.off.Fill(p, brush)
}
