package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/olivier-w/pulsar/internal/analysis"
	"github.com/olivier-w/pulsar/internal/palette"
	"github.com/olivier-w/pulsar/internal/player"
	"github.com/olivier-w/pulsar/internal/visualizer"
)

// snapshotRequest renders frames without audio output or a terminal.
type snapshotRequest struct {
	openRequest
	out    string
	frames int
	width  int
	height int
}

// parseSize reads "WxH".
func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q must look like 1280x720", s)
	}
	w, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	h, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q must be positive", s)
	}
	return w, h, nil
}

// renderSnapshot decodes the audio, feeds it to the analyser at the engine's
// frame rate, ticks the engine once per frame and returns the last visible
// frame. Artwork is loaded before the first tick so the palette is final.
func renderSnapshot(ctx context.Context, req snapshotRequest) (*image.RGBA, error) {
	if err := checkAudioPath(req.path); err != nil {
		return nil, err
	}
	meta := player.ReadMetadata(req.path)
	art, err := loadArtwork(req.openRequest, meta)
	if err != nil {
		return nil, err
	}

	stream, err := player.OpenStream(req.path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	analyser := analysis.NewAnalyser(stream.ChannelCount())
	eng, err := visualizer.NewEngine(req.cfg.Engine, analyser)
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	palette.Start(ctx, art, eng).Wait()
	eng.Resize(req.width, req.height)

	chunk := stream.FrameSize() * stream.SampleRate() / req.cfg.Engine.FPS
	chunk -= chunk % stream.FrameSize()
	buf := make([]byte, max(chunk, stream.FrameSize()))
	exhausted := false
	for i := range req.frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !exhausted {
			n, err := io.ReadFull(stream, buf)
			analyser.Write(buf[:n])
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				log.Printf("snapshot: audio ended after %d frames", i+1)
				exhausted = true
			case err != nil:
				return nil, fmt.Errorf("decoding audio: %w", err)
			}
		}
		eng.Tick()
	}

	out := image.NewRGBA(eng.Visible().Rect)
	copy(out.Pix, eng.Visible().Pix)
	return out, nil
}

func runSnapshot(ctx context.Context, req snapshotRequest) error {
	img, err := renderSnapshot(ctx, req)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, req.out); err != nil {
		return fmt.Errorf("writing %s: %w", req.out, err)
	}
	return nil
}
