package analysis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// ErrInvalidFFTSize is returned for sizes that are not a power of two in
// [MinFFTSize, MaxFFTSize].
var ErrInvalidFFTSize = errors.New("fft size must be a power of two in [32,32768]")

const (
	MinFFTSize = 32
	MaxFFTSize = 32768

	DefaultFFTSize   = 2048
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// Analyser turns a live stream of interleaved 16-bit PCM into byte-valued
// spectrum and waveform snapshots, the way a browser analyser node does:
// Blackman window, magnitude smoothing over time, and decibels mapped
// linearly from [MinDB, MaxDB] to [0, 255].
//
// Write is called from the audio goroutine; the read methods from the render
// goroutine.
type Analyser struct {
	channels int
	ring     *RingBuffer

	mu        sync.Mutex
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64
	fft       *fourier.FFT
	window    []float64
	frame     []float64
	coeff     []complex128
	smoothed  []float64
	carry     []byte
	mono      []float64
}

// NewAnalyser creates an analyser for PCM with the given channel count.
func NewAnalyser(channels int) *Analyser {
	if channels < 1 {
		channels = 1
	}
	a := &Analyser{
		channels:  channels,
		ring:      NewRingBuffer(MaxFFTSize),
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
	}
	a.resize(DefaultFFTSize)
	return a
}

func validFFTSize(n int) bool {
	return n >= MinFFTSize && n <= MaxFFTSize && n&(n-1) == 0
}

func (a *Analyser) resize(n int) {
	a.fftSize = n
	a.fft = fourier.NewFFT(n)
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	a.window = window.Blackman(ones)
	a.frame = make([]float64, n)
	a.coeff = make([]complex128, n/2+1)
	a.smoothed = make([]float64, n/2)
}

// FFTSize returns the transform size.
func (a *Analyser) FFTSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fftSize
}

// SetFFTSize changes the transform size and resets smoothing history.
func (a *Analyser) SetFFTSize(n int) error {
	if !validFFTSize(n) {
		return fmt.Errorf("%w: got %d", ErrInvalidFFTSize, n)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if n != a.fftSize {
		a.resize(n)
	}
	return nil
}

// FrequencyBinCount is half the transform size.
func (a *Analyser) FrequencyBinCount() int {
	return a.FFTSize() / 2
}

// SetDecibelRange sets the dB span mapped onto [0,255].
func (a *Analyser) SetDecibelRange(minDB, maxDB float64) error {
	if minDB >= maxDB {
		return fmt.Errorf("decibel range [%v,%v] is empty", minDB, maxDB)
	}
	a.mu.Lock()
	a.minDB, a.maxDB = minDB, maxDB
	a.mu.Unlock()
	return nil
}

// Write consumes interleaved little-endian int16 PCM, mixing to mono. Partial
// frames are carried over to the next call. It never fails.
func (a *Analyser) Write(p []byte) (int, error) {
	a.mu.Lock()
	data := p
	if len(a.carry) > 0 {
		data = append(a.carry, p...)
		a.carry = a.carry[:0]
	}
	frameBytes := 2 * a.channels
	frames := len(data) / frameBytes
	if cap(a.mono) < frames {
		a.mono = make([]float64, frames)
	}
	mono := a.mono[:frames]
	for i := range frames {
		sum := 0.0
		for ch := range a.channels {
			off := i*frameBytes + ch*2
			sum += float64(int16(binary.LittleEndian.Uint16(data[off:])))
		}
		mono[i] = sum / float64(a.channels) / 32768
	}
	// carry may share data's backing array, so copy the remainder last.
	if rest := data[frames*frameBytes:]; len(rest) > 0 {
		a.carry = append(a.carry[:0], rest...)
	}
	a.ring.Write(mono)
	a.mu.Unlock()
	return len(p), nil
}

// WriteSamples appends mono samples in [-1,1] directly.
func (a *Analyser) WriteSamples(s []float64) {
	a.ring.Write(s)
}

// Reset drops buffered audio and smoothing history, e.g. after a seek.
func (a *Analyser) Reset() {
	a.ring.Clear()
	a.mu.Lock()
	clear(a.smoothed)
	a.carry = a.carry[:0]
	a.mu.Unlock()
}

// ByteFrequencyData fills dst with the current smoothed spectrum, one byte
// per bin. Extra dst entries beyond the bin count are left untouched.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ring.Latest(a.frame)
	for i := range a.frame {
		a.frame[i] *= a.window[i]
	}
	a.coeff = a.fft.Coefficients(a.coeff, a.frame)

	n := float64(a.fftSize)
	span := a.maxDB - a.minDB
	for k := range a.smoothed {
		mag := cmplxAbs(a.coeff[k]) / n
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		if k >= len(dst) {
			continue
		}
		dst[k] = dbToByte(a.smoothed[k], a.minDB, span)
	}
}

// ByteTimeDomainData fills dst with the latest samples mapped so that
// silence is 128.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ring.Latest(a.frame)
	n := min(len(dst), len(a.frame))
	for i := range n {
		v := math.Floor(128 * (a.frame[i] + 1))
		dst[i] = clampByte(v)
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func dbToByte(mag, minDB, span float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	return clampByte(math.Floor(255 * (db - minDB) / span))
}

func clampByte(v float64) byte {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
