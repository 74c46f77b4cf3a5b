package visualizer

// Ripple is one expanding ring.
type Ripple struct {
	Radius float64
	Alpha  float64
}

// RipplePool holds the live ripples. Expired ripples are purged every tick,
// so the pool size is bounded by lifetime / spawn interval.
type RipplePool struct {
	items []Ripple
}

// Len returns the number of live ripples.
func (p *RipplePool) Len() int { return len(p.items) }

// Ripples returns the live ripples. The slice is only valid until the next
// mutation.
func (p *RipplePool) Ripples() []Ripple { return p.items }

// Add appends a ripple.
func (p *RipplePool) Add(r Ripple) {
	p.items = append(p.items, r)
}

// Advance grows and fades every ripple.
func (p *RipplePool) Advance(growth, fade float64) {
	for i := range p.items {
		p.items[i].Radius += growth
		p.items[i].Alpha -= fade
	}
}

// Purge drops every ripple whose alpha reached zero. Running it twice is
// the same as running it once.
func (p *RipplePool) Purge() {
	live := p.items[:0]
	for _, r := range p.items {
		if r.Alpha > 0 {
			live = append(live, r)
		}
	}
	clear(p.items[len(live):])
	p.items = live
}

// Reset drops everything.
func (p *RipplePool) Reset() {
	p.items = nil
}

// shouldSpawn applies the threshold and the throttle cadence.
func (e *Engine) shouldSpawn(radius float64) bool {
	return radius > e.cfg.RippleThreshold && e.frame.Frame%uint64(e.cfg.RippleEvery) == 0
}

// drawRipples strokes, advances and purges the pool, then spawns a new
// ripple from the current pulse radius when allowed.
func (e *Engine) drawRipples(w, h int, pulse float64) {
	cx, cy := float64(w)/2, float64(h)/2
	for _, r := range e.ripples.Ripples() {
		e.off.StrokeCircle(cx, cy, r.Radius, 2, solid(e.pal.ColorAt(0.7, r.Alpha)))
	}
	e.ripples.Advance(e.cfg.RippleGrowth, e.cfg.RippleFade)
	e.ripples.Purge()

	if e.shouldSpawn(pulse) {
		e.ripples.Add(Ripple{Radius: pulse, Alpha: e.cfg.RippleAlpha})
	}
}
