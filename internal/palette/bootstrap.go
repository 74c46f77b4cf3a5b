package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/disintegration/imaging"
	"github.com/olivier-w/pulsar/internal/visualizer"

	_ "golang.org/x/image/webp"
)

// artworkEdge bounds the decoded artwork; the glow layer never draws it
// larger than a fraction of the viewport and extraction only samples it.
const artworkEdge = 512

// Sink receives the bootstrap results. visualizer.Engine implements it.
type Sink interface {
	SetArtwork(img image.Image)
	SetPalette(p visualizer.Palette)
}

// Bootstrap decodes artwork, publishes it and derives a two-color palette.
// The zero value uses DecodeArtwork and Extract.
type Bootstrap struct {
	Decode  func(data []byte) (image.Image, error)
	Extract func(img image.Image, count int) ([]visualizer.RGB, error)
}

// Task is a running bootstrap.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start runs the default bootstrap.
func Start(ctx context.Context, artwork []byte, sink Sink) *Task {
	return Bootstrap{}.Start(ctx, artwork, sink)
}

// Start launches the bootstrap on its own goroutine. Results are applied to
// sink only while ctx is live; after Cancel or ctx expiry anything still in
// flight is dropped. Failures leave the sink untouched and are logged.
func (b Bootstrap) Start(ctx context.Context, artwork []byte, sink Sink) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		if err := b.run(ctx, artwork, sink); err != nil && !errors.Is(err, ErrNoArtwork) {
			log.Printf("palette: %v", err)
		}
	}()
	return t
}

func (b Bootstrap) run(ctx context.Context, artwork []byte, sink Sink) error {
	if len(artwork) == 0 {
		return ErrNoArtwork
	}
	decode := b.Decode
	if decode == nil {
		decode = DecodeArtwork
	}
	extract := b.Extract
	if extract == nil {
		extract = Extract
	}

	img, err := decode(artwork)
	if err != nil {
		return fmt.Errorf("decoding artwork: %w", err)
	}
	if ctx.Err() != nil {
		return nil
	}
	sink.SetArtwork(img)

	colors, err := extract(img, 2)
	if err != nil {
		return fmt.Errorf("extracting palette: %w", err)
	}
	if len(colors) < 2 {
		return fmt.Errorf("extracting palette: got %d colors: %w", len(colors), ErrShortPalette)
	}
	if ctx.Err() != nil {
		return nil
	}
	sink.SetPalette(visualizer.Palette{Start: colors[0], End: colors[1]})
	return nil
}

// Cancel stops the task. Results not yet applied are discarded.
func (t *Task) Cancel() { t.cancel() }

// Done is closed when the task goroutine exits.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task goroutine exits.
func (t *Task) Wait() { <-t.done }

// DecodeArtwork decodes an embedded cover image (JPEG, PNG, GIF, BMP, TIFF
// or WebP), honoring EXIF orientation, and shrinks it to fit artworkEdge.
func DecodeArtwork(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() > artworkEdge || b.Dy() > artworkEdge {
		return imaging.Fit(img, artworkEdge, artworkEdge, imaging.Lanczos), nil
	}
	return img, nil
}
