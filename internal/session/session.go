package session

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/olivier-w/pulsar/internal/palette"
	"github.com/olivier-w/pulsar/internal/visualizer"
)

// Options configures a Session.
type Options struct {
	Engine  visualizer.Config
	Source  visualizer.Source
	Artwork []byte

	// Clock drives the render loop. Nil means a ticker at Engine.FPS.
	Clock visualizer.Clock
	// Present is called on the render goroutine after every drawn tick.
	// The image is reused by the next tick.
	Present func(img *image.RGBA)
	// Bootstrap overrides artwork decoding and palette extraction.
	Bootstrap palette.Bootstrap
}

// Session owns one engine, its render loop and its palette bootstrap.
// Nothing is shared between sessions.
type Session struct {
	engine *visualizer.Engine
	task   *palette.Task
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New builds the engine, starts the palette bootstrap and, when a source
// is present, the render loop.
func New(opts Options) (*Session, error) {
	eng, err := visualizer.NewEngine(opts.Engine, opts.Source)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		engine: eng,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.task = opts.Bootstrap.Start(ctx, opts.Artwork, eng)

	if opts.Source == nil {
		close(s.done)
		return s, nil
	}

	clock := opts.Clock
	if clock == nil {
		clock = visualizer.NewTickerClock(opts.Engine.FPS)
	}
	present := opts.Present
	go func() {
		defer close(s.done)
		_ = visualizer.NewScheduler(clock).Run(ctx, func(time.Time) {
			if eng.Tick() && present != nil {
				present(eng.Visible())
			}
		})
	}()
	return s, nil
}

// Engine exposes the session engine.
func (s *Session) Engine() *visualizer.Engine { return s.engine }

// Resize forwards a viewport change; it lands before the next tick.
func (s *Session) Resize(w, h int) { s.engine.Resize(w, h) }

// Done is closed once the render loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close stops the loop, waits for it and for the bootstrap to exit, then
// releases the engine. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		s.task.Cancel()
		s.task.Wait()
		s.engine.Close()
	})
}
