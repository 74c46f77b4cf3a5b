package visualizer

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid engine config")

// Config holds the tunable constants of the engine. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	FPS       int   `toml:"fps"`
	FFTSize   int   `toml:"fft_size"`
	BassBins  int   `toml:"bass_bins"`
	StarCount int   `toml:"star_count"`
	Seed      int64 `toml:"seed"`

	FadeAlpha    float64 `toml:"fade_alpha"`
	StarRotation float64 `toml:"star_rotation"`

	PulseFloor    float64 `toml:"pulse_floor"`
	PulseRange    float64 `toml:"pulse_range"`
	PulseSegments int     `toml:"pulse_segments"`

	RippleThreshold float64 `toml:"ripple_threshold"`
	RippleEvery     int     `toml:"ripple_every"`
	RippleAlpha     float64 `toml:"ripple_alpha"`
	RippleGrowth    float64 `toml:"ripple_growth"`
	RippleFade      float64 `toml:"ripple_fade"`

	BlurAmount          float64 `toml:"blur_amount"`
	BlurRippleThreshold int     `toml:"blur_ripple_threshold"`
	BlurRate            float64 `toml:"blur_rate"`
	MinBlur             float64 `toml:"min_blur"`

	GlowFrequency float64 `toml:"glow_frequency"`
	GlowDamping   float64 `toml:"glow_damping"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		FPS:       30,
		FFTSize:   512,
		BassBins:  20,
		StarCount: 150,
		Seed:      1,

		FadeAlpha:    0.1,
		StarRotation: 0.0005,

		PulseFloor:    50,
		PulseRange:    100,
		PulseSegments: 96,

		RippleThreshold: 120,
		RippleEvery:     10,
		RippleAlpha:     0.6,
		RippleGrowth:    2,
		RippleFade:      0.015,

		BlurAmount:          3,
		BlurRippleThreshold: 3,
		BlurRate:            0.05,
		MinBlur:             0.05,

		GlowFrequency: 6,
		GlowDamping:   1,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.FPS < 1 || c.FPS > 240:
		return fmt.Errorf("%w: fps %d out of range [1,240]", ErrInvalidConfig, c.FPS)
	case c.FFTSize < 32 || c.FFTSize > 32768 || c.FFTSize&(c.FFTSize-1) != 0:
		return fmt.Errorf("%w: fft_size %d must be a power of two in [32,32768]", ErrInvalidConfig, c.FFTSize)
	case c.BassBins < 1 || c.BassBins > c.FFTSize/2:
		return fmt.Errorf("%w: bass_bins %d must be in [1,%d]", ErrInvalidConfig, c.BassBins, c.FFTSize/2)
	case c.StarCount < 0:
		return fmt.Errorf("%w: star_count must not be negative", ErrInvalidConfig)
	case c.FadeAlpha <= 0 || c.FadeAlpha > 1:
		return fmt.Errorf("%w: fade_alpha %v must be in (0,1]", ErrInvalidConfig, c.FadeAlpha)
	case c.PulseSegments < 3:
		return fmt.Errorf("%w: pulse_segments must be at least 3", ErrInvalidConfig)
	case c.RippleEvery < 1:
		return fmt.Errorf("%w: ripple_every must be positive", ErrInvalidConfig)
	case c.RippleAlpha <= 0 || c.RippleAlpha > 1:
		return fmt.Errorf("%w: ripple_alpha %v must be in (0,1]", ErrInvalidConfig, c.RippleAlpha)
	case c.RippleFade <= 0:
		return fmt.Errorf("%w: ripple_fade must be positive", ErrInvalidConfig)
	case c.BlurRate <= 0 || c.BlurRate > 1:
		return fmt.Errorf("%w: blur_rate %v must be in (0,1]", ErrInvalidConfig, c.BlurRate)
	case c.BlurAmount < 0:
		return fmt.Errorf("%w: blur_amount must not be negative", ErrInvalidConfig)
	case c.GlowFrequency <= 0:
		return fmt.Errorf("%w: glow_frequency must be positive", ErrInvalidConfig)
	}
	return nil
}
