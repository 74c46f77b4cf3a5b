package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/olivier-w/pulsar/internal/analysis"
	"github.com/olivier-w/pulsar/internal/config"
	"github.com/olivier-w/pulsar/internal/display"
	"github.com/olivier-w/pulsar/internal/media"
	"github.com/olivier-w/pulsar/internal/player"
	"github.com/olivier-w/pulsar/internal/session"
	"github.com/olivier-w/pulsar/internal/ui"
)

// openRequest is everything needed to start a playback session.
type openRequest struct {
	path    string
	artPath string
	cfg     config.Config
}

// checkAudioPath rejects missing files, directories and unknown formats.
func checkAudioPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}
	return nil
}

// loadArtwork returns the cover art for req: the override file when given,
// otherwise whatever the tags carry.
func loadArtwork(req openRequest, meta player.Metadata) ([]byte, error) {
	if req.artPath == "" {
		return meta.Artwork, nil
	}
	if !media.IsImageExt(filepath.Ext(req.artPath)) {
		return nil, fmt.Errorf("unsupported artwork %s", filepath.Base(req.artPath))
	}
	data, err := os.ReadFile(req.artPath)
	if err != nil {
		return nil, fmt.Errorf("reading artwork: %w", err)
	}
	return data, nil
}

// buildPlaybackModel opens the audio, starts playback with the analyser
// tapped in, and starts the render session.
func buildPlaybackModel(req openRequest) (ui.Model, error) {
	if err := checkAudioPath(req.path); err != nil {
		return ui.Model{}, err
	}
	meta := player.ReadMetadata(req.path)
	art, err := loadArtwork(req, meta)
	if err != nil {
		return ui.Model{}, err
	}

	stream, err := player.OpenStream(req.path)
	if err != nil {
		return ui.Model{}, err
	}
	analyser := analysis.NewAnalyser(stream.ChannelCount())
	p, err := player.Play(stream, player.Options{
		Tap:    analyser,
		Loop:   req.cfg.Audio.Loop,
		Volume: req.cfg.Audio.Volume,
	})
	if err != nil {
		return ui.Model{}, err
	}

	frames := ui.NewFrames(display.NewRenderer())
	sess, err := session.New(session.Options{
		Engine:  req.cfg.Engine,
		Source:  analyser,
		Artwork: art,
		Present: frames.Present,
	})
	if err != nil {
		p.Close()
		return ui.Model{}, fmt.Errorf("starting renderer: %w", err)
	}
	if len(art) == 0 {
		log.Printf("open: %s has no artwork, using fallback palette", filepath.Base(req.path))
	}
	return ui.New(p, sess, frames, meta, req.cfg.Display), nil
}
