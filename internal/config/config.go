package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/olivier-w/pulsar/internal/visualizer"
)

// ErrInvalid is wrapped by every validation and unknown-key error.
var ErrInvalid = errors.New("invalid config")

// Display controls how frames are mapped onto terminal cells.
type Display struct {
	// CellWidth and CellHeight are the engine pixels drawn per terminal
	// cell. Half-block output packs two pixel rows per cell, so CellHeight
	// is usually twice CellWidth.
	CellWidth  int  `toml:"cell_width"`
	CellHeight int  `toml:"cell_height"`
	ShowStatus bool `toml:"show_status"`
}

// Audio controls playback.
type Audio struct {
	Loop   bool    `toml:"loop"`
	Volume float64 `toml:"volume"`
}

// Config is the whole on-disk configuration.
type Config struct {
	Engine  visualizer.Config `toml:"engine"`
	Display Display           `toml:"display"`
	Audio   Audio             `toml:"audio"`
	LogFile string            `toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: visualizer.DefaultConfig(),
		Display: Display{
			CellWidth:  6,
			CellHeight: 12,
			ShowStatus: true,
		},
		Audio: Audio{
			Loop:   true,
			Volume: 0.8,
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/pulsar/config.toml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pulsar", "config.toml"), nil
}

// Load decodes path over the defaults and validates the result. Keys the
// schema does not know are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads DefaultPath when it exists and falls back to Default
// otherwise.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch {
	case c.Display.CellWidth < 1 || c.Display.CellHeight < 1:
		return fmt.Errorf("%w: display cell size %dx%d must be positive", ErrInvalid, c.Display.CellWidth, c.Display.CellHeight)
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return fmt.Errorf("%w: audio volume %v must be in [0,1]", ErrInvalid, c.Audio.Volume)
	}
	return nil
}
