package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/pulsar/internal/config"
	"github.com/olivier-w/pulsar/internal/media"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: pulsar [flags] <audio file>\n\nplays %s with an audio-reactive visual\n\nflags:\n", media.SupportedExtsList())
	flag.PrintDefaults()
}

func main() {
	var (
		configPath = flag.String("config", "", "config file (default: user config dir/pulsar/config.toml if present)")
		fps        = flag.Int("fps", 0, "override engine frame rate")
		artPath    = flag.String("art", "", "cover image to use instead of embedded artwork")
		noLoop     = flag.Bool("no-loop", false, "stop at the end of the track")
		snapshot   = flag.String("snapshot", "", "render headless and write the last frame to this image file")
		frames     = flag.Int("frames", 90, "frames to render in snapshot mode")
		size       = flag.String("size", "1280x720", "snapshot size in pixels")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *fps > 0 {
		cfg.Engine.FPS = *fps
	}
	if *noLoop {
		cfg.Audio.Loop = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogging(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	req := openRequest{path: flag.Arg(0), artPath: *artPath, cfg: cfg}

	if *snapshot != "" {
		w, h, err := parseSize(*size)
		if err == nil && *frames < 1 {
			err = errors.New("-frames must be at least 1")
		}
		if err == nil {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			err = runSnapshot(ctx, snapshotRequest{openRequest: req, out: *snapshot, frames: *frames, width: w, height: h})
			stop()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	program := tea.NewProgram(newStartupModel(req), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if sm, ok := final.(startupModel); ok {
		if msg := sm.failed(); msg != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
			os.Exit(1)
		}
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// setupLogging sends the standard logger to a file when one is configured
// and discards it otherwise; the terminal belongs to the UI.
func setupLogging(path string) (func(), error) {
	if env := os.Getenv("PULSAR_LOG"); env != "" {
		path = env
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "pulsar")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return func() { f.Close() }, nil
}
