package session

import (
	"image"
	"testing"
	"time"

	"github.com/olivier-w/pulsar/internal/palette"
	"github.com/olivier-w/pulsar/internal/visualizer"
)

type flatSource struct{ size int }

func (f *flatSource) FFTSize() int                  { return f.size }
func (f *flatSource) SetFFTSize(n int) error        { f.size = n; return nil }
func (f *flatSource) FrequencyBinCount() int        { return f.size / 2 }
func (f *flatSource) ByteFrequencyData(dst []byte)  { clear(dst) }
func (f *flatSource) ByteTimeDomainData(dst []byte) {
	for i := range dst {
		dst[i] = 128
	}
}

type manualClock struct {
	c chan time.Time
}

func (m *manualClock) C() <-chan time.Time { return m.c }
func (m *manualClock) Stop()               {}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSessionPresentsEveryTick(t *testing.T) {
	clock := &manualClock{c: make(chan time.Time)}
	presented := make(chan image.Rectangle, 1)
	s, err := New(Options{
		Engine:  visualizer.DefaultConfig(),
		Source:  &flatSource{size: 2048},
		Clock:   clock,
		Present: func(img *image.RGBA) { presented <- img.Bounds() },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Resize(64, 48)

	for range 3 {
		clock.c <- time.Now()
		select {
		case b := <-presented:
			if b.Dx() != 64 || b.Dy() != 48 {
				t.Fatalf("expected a 64x48 frame, got %v", b)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("frame was not presented")
		}
	}
	if got := s.Engine().Frame().Frame; got != 3 {
		t.Fatalf("expected 3 ticks, got %d", got)
	}

	s.Close()
	waitClosed(t, s.Done(), "render loop")
	if s.Engine().Tick() {
		t.Fatal("expected the engine to be closed")
	}
	s.Close()
}

func TestSessionWithoutSourceIsIdle(t *testing.T) {
	s, err := New(Options{Engine: visualizer.DefaultConfig()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	waitClosed(t, s.Done(), "idle session")
	s.Close()
}

func TestSessionDropsPaletteAfterClose(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s, err := New(Options{
		Engine:  visualizer.DefaultConfig(),
		Artwork: []byte{1},
		Bootstrap: palette.Bootstrap{
			Decode: func([]byte) (image.Image, error) {
				return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
			},
			Extract: func(image.Image, int) ([]visualizer.RGB, error) {
				close(entered)
				<-release
				return []visualizer.RGB{{R: 1}, {G: 2}}, nil
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	waitClosed(t, entered, "extraction")

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	// Close cancels the bootstrap before waiting on it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	waitClosed(t, closed, "Close")

	if got := s.Engine().Gradient().Palette(); got != visualizer.FallbackPalette {
		t.Fatalf("expected the fallback palette to survive, got %+v", got)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := visualizer.DefaultConfig()
	cfg.FPS = 0
	if _, err := New(Options{Engine: cfg, Source: &flatSource{size: 2048}}); err == nil {
		t.Fatal("expected an invalid config to be rejected")
	}
}
