package visualizer

import "github.com/charmbracelet/harmonica"

// Source is a live spectral analysis feed. Both pull methods fill the
// caller's buffer in place; values are bytes in [0,255].
type Source interface {
	FFTSize() int
	SetFFTSize(n int) error
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
	ByteTimeDomainData(dst []byte)
}

// DriveSignals are the per-tick scalars derived from the spectrum.
type DriveSignals struct {
	// Bass is the mean of the lowest bins over 255, in [0,1].
	Bass float64
	// Glow follows Bass through a critically damped spring.
	Glow float64
}

// Sampler owns the frequency and waveform buffers for one session.
type Sampler struct {
	src      Source
	bassBins int
	Freq     []byte
	Wave     []byte

	spring  harmonica.Spring
	glow    float64
	glowVel float64
}

// NewSampler configures src for fftSize and allocates buffers sized from it.
// A nil src yields a disabled sampler.
func NewSampler(src Source, cfg Config) (*Sampler, error) {
	s := &Sampler{
		src:      src,
		bassBins: cfg.BassBins,
		spring:   harmonica.NewSpring(harmonica.FPS(cfg.FPS), cfg.GlowFrequency, cfg.GlowDamping),
	}
	if src == nil {
		return s, nil
	}
	if err := src.SetFFTSize(cfg.FFTSize); err != nil {
		return nil, err
	}
	s.Freq = make([]byte, src.FrequencyBinCount())
	s.Wave = make([]byte, src.FFTSize())
	return s, nil
}

// Enabled reports whether a source is attached and buffers are live.
func (s *Sampler) Enabled() bool {
	return s.src != nil && s.Freq != nil
}

// Sample pulls both buffers and derives the drive signals.
func (s *Sampler) Sample() DriveSignals {
	if !s.Enabled() {
		return DriveSignals{}
	}
	s.src.ByteFrequencyData(s.Freq)
	s.src.ByteTimeDomainData(s.Wave)

	bass := BassLevel(s.Freq, s.bassBins)
	s.glow, s.glowVel = s.spring.Update(s.glow, s.glowVel, bass)
	return DriveSignals{Bass: bass, Glow: clamp01(s.glow)}
}

// Release drops the buffers and detaches the source.
func (s *Sampler) Release() {
	s.src = nil
	s.Freq = nil
	s.Wave = nil
}

// BassLevel averages the first n bins of freq and scales to [0,1]. Fewer
// available bins shrink the window; an empty buffer yields 0.
func BassLevel(freq []byte, n int) float64 {
	if n > len(freq) {
		n = len(freq)
	}
	if n <= 0 {
		return 0
	}
	sum := 0
	for _, v := range freq[:n] {
		sum += int(v)
	}
	return float64(sum) / float64(n) / 255
}
