package palette

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/olivier-w/pulsar/internal/visualizer"
)

type recordingSink struct {
	mu      sync.Mutex
	artwork image.Image
	palette *visualizer.Palette
}

func (s *recordingSink) SetArtwork(img image.Image) {
	s.mu.Lock()
	s.artwork = img
	s.mu.Unlock()
}

func (s *recordingSink) SetPalette(p visualizer.Palette) {
	s.mu.Lock()
	s.palette = &p
	s.mu.Unlock()
}

func (s *recordingSink) snapshot() (image.Image, *visualizer.Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artwork, s.palette
}

func stubDecode(data []byte) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func TestBootstrapAppliesArtworkAndPalette(t *testing.T) {
	want := visualizer.Palette{Start: visualizer.RGB{R: 10, G: 20, B: 30}, End: visualizer.RGB{R: 200, G: 210, B: 220}}
	b := Bootstrap{
		Decode: stubDecode,
		Extract: func(image.Image, int) ([]visualizer.RGB, error) {
			return []visualizer.RGB{want.Start, want.End}, nil
		},
	}
	sink := &recordingSink{}
	b.Start(context.Background(), []byte{1}, sink).Wait()

	art, pal := sink.snapshot()
	if art == nil {
		t.Fatal("expected artwork to be published")
	}
	if pal == nil || *pal != want {
		t.Fatalf("expected palette %+v, got %+v", want, pal)
	}
}

func TestBootstrapWithoutArtworkTouchesNothing(t *testing.T) {
	sink := &recordingSink{}
	Start(context.Background(), nil, sink).Wait()
	if art, pal := sink.snapshot(); art != nil || pal != nil {
		t.Fatal("expected no updates without artwork")
	}
}

func TestBootstrapDecodeFailureKeepsFallback(t *testing.T) {
	b := Bootstrap{
		Decode: func([]byte) (image.Image, error) { return nil, errors.New("corrupt") },
	}
	sink := &recordingSink{}
	b.Start(context.Background(), []byte{1}, sink).Wait()
	if art, pal := sink.snapshot(); art != nil || pal != nil {
		t.Fatal("expected a failed decode to leave the sink alone")
	}
}

func TestBootstrapShortPaletteKeepsFallback(t *testing.T) {
	b := Bootstrap{
		Decode: stubDecode,
		Extract: func(image.Image, int) ([]visualizer.RGB, error) {
			return []visualizer.RGB{{R: 1}}, nil
		},
	}
	sink := &recordingSink{}
	b.Start(context.Background(), []byte{1}, sink).Wait()
	if _, pal := sink.snapshot(); pal != nil {
		t.Fatalf("expected no palette from a single color, got %+v", pal)
	}
}

func TestBootstrapCancelDiscardsLateResult(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	b := Bootstrap{
		Decode: stubDecode,
		Extract: func(image.Image, int) ([]visualizer.RGB, error) {
			close(entered)
			<-release
			return []visualizer.RGB{{R: 1}, {G: 2}}, nil
		},
	}
	sink := &recordingSink{}
	task := b.Start(context.Background(), []byte{1}, sink)

	<-entered
	task.Cancel()
	close(release)

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
	if _, pal := sink.snapshot(); pal != nil {
		t.Fatalf("expected the late palette to be dropped, got %+v", pal)
	}
}

func TestDecodeArtworkFitsLargeImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1024, 600))
	for y := range 600 {
		for x := range 1024 {
			src.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := DecodeArtwork(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeArtwork: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 512 || b.Dy() != 300 {
		t.Fatalf("expected 512x300, got %v", b)
	}

	if _, err := DecodeArtwork([]byte("not an image")); err == nil {
		t.Fatal("expected an error for garbage input")
	}
}
