package visualizer

import (
	"image"
	"math/rand"
	"sync"
	"sync/atomic"
)

// FrameState is the engine's clock: a tick counter and the starfield camera
// rotation.
type FrameState struct {
	Frame    uint64
	Rotation float64
}

// Engine composes one frame per Tick. It is not safe for concurrent Tick
// calls; Resize, SetPalette and SetArtwork may be called from any goroutine.
type Engine struct {
	cfg      Config
	sampler  *Sampler
	gradient *Gradient
	artwork  atomic.Pointer[image.Image]

	rng     *rand.Rand
	stars   []Star
	ripples RipplePool
	blur    BlurState
	frame   FrameState
	pal     Palette
	pulse   float64

	off     *Surface
	visible *Surface
	path    Path

	mu      sync.Mutex
	pending image.Point
	resized bool
	closed  bool
}

// NewEngine builds an engine drawing from src. A nil src yields an idle
// engine whose Tick never draws.
func NewEngine(cfg Config, src Source) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sampler, err := NewSampler(src, cfg)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Engine{
		cfg:      cfg,
		sampler:  sampler,
		gradient: NewGradient(),
		rng:      rng,
		stars:    newStars(cfg.StarCount, rng),
		off:      NewSurface(0, 0),
		visible:  NewSurface(0, 0),
	}, nil
}

// Gradient returns the session gradient model.
func (e *Engine) Gradient() *Gradient { return e.gradient }

// SetPalette swaps the gradient pair.
func (e *Engine) SetPalette(p Palette) { e.gradient.Set(p) }

// SetArtwork publishes a decoded artwork image for the glow layer.
func (e *Engine) SetArtwork(img image.Image) {
	if img == nil {
		e.artwork.Store(nil)
		return
	}
	e.artwork.Store(&img)
}

// Artwork returns the loaded artwork, or nil.
func (e *Engine) Artwork() image.Image {
	if p := e.artwork.Load(); p != nil {
		return *p
	}
	return nil
}

// Resize requests new surface dimensions. They take effect at the start of
// the next tick, never in the middle of one.
func (e *Engine) Resize(w, h int) {
	e.mu.Lock()
	e.pending = image.Pt(w, h)
	e.resized = true
	e.mu.Unlock()
}

func (e *Engine) applyResize() {
	e.mu.Lock()
	size, ok := e.pending, e.resized
	e.resized = false
	e.mu.Unlock()
	if !ok {
		return
	}
	if size.X == e.off.Width() && size.Y == e.off.Height() {
		return
	}
	e.off.Resize(size.X, size.Y)
	e.visible.Resize(size.X, size.Y)
}

// Tick runs one full pass: sample, draw every layer onto the off-screen
// surface, then composite onto the visible surface. It returns false and
// does nothing when the engine has no source or has been closed.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed || !e.sampler.Enabled() {
		return false
	}
	e.applyResize()

	// One palette per frame, even if SetPalette lands mid-tick.
	e.pal = e.gradient.Palette()
	sig := e.sampler.Sample()
	w, h := e.off.Width(), e.off.Height()

	e.off.Fade(e.cfg.FadeAlpha)
	e.drawStarfield(w, h, sig)
	e.drawGlow(w, h, sig)
	e.drawWave(w, h, sig, waveTop)
	e.drawWave(w, h, sig, waveBottom)
	e.drawTrace(w, h)
	e.pulse = e.drawPulse(w, h, sig)
	e.drawRipples(w, h, e.pulse)

	e.blur.Step(e.blur.Target(e.cfg, e.ripples.Len()), e.cfg.BlurRate)
	e.blur.composite(e.visible.Image(), e.off.Image(), e.cfg.MinBlur)

	e.frame.Frame++
	return true
}

// Visible returns the composited frame. It is overwritten by the next Tick.
func (e *Engine) Visible() *image.RGBA { return e.visible.Image() }

// Frame returns the frame counter and rotation.
func (e *Engine) Frame() FrameState { return e.frame }

// PulseRadius returns the base pulse radius of the last tick.
func (e *Engine) PulseRadius() float64 { return e.pulse }

// Ripples returns the live ripple pool.
func (e *Engine) Ripples() *RipplePool { return &e.ripples }

// Stars returns the star ensemble.
func (e *Engine) Stars() []Star { return e.stars }

// Close releases buffers and surfaces. Later Ticks are no-ops. Close must not
// overlap a running Tick; stop the scheduler first.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.sampler.Release()
	e.stars = nil
	e.ripples.Reset()
	e.off.Resize(0, 0)
	e.visible.Resize(0, 0)
	e.artwork.Store(nil)
}
