package analysis

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestSetFFTSizeRejectsNonPowersOfTwo(t *testing.T) {
	a := NewAnalyser(2)
	for _, n := range []int{0, 16, 31, 48, 1000, 65536} {
		if err := a.SetFFTSize(n); !errors.Is(err, ErrInvalidFFTSize) {
			t.Fatalf("SetFFTSize(%d): expected ErrInvalidFFTSize, got %v", n, err)
		}
	}
	if got := a.FFTSize(); got != DefaultFFTSize {
		t.Fatalf("expected size to stay %d after rejected sets, got %d", DefaultFFTSize, got)
	}
	if err := a.SetFFTSize(512); err != nil {
		t.Fatalf("SetFFTSize(512): %v", err)
	}
	if got := a.FrequencyBinCount(); got != 256 {
		t.Fatalf("expected 256 bins, got %d", got)
	}
}

func TestSilenceMapsToMidlineAndZeroSpectrum(t *testing.T) {
	a := NewAnalyser(1)
	if err := a.SetFFTSize(512); err != nil {
		t.Fatal(err)
	}
	wave := make([]byte, 512)
	a.ByteTimeDomainData(wave)
	for i, v := range wave {
		if v != 128 {
			t.Fatalf("wave[%d] = %d, expected 128 for silence", i, v)
		}
	}
	freq := make([]byte, 256)
	for i := range freq {
		freq[i] = 7
	}
	a.ByteFrequencyData(freq)
	for i, v := range freq {
		if v != 0 {
			t.Fatalf("freq[%d] = %d, expected 0 for silence", i, v)
		}
	}
}

func TestWriteMixesStereoToMono(t *testing.T) {
	a := NewAnalyser(2)
	if err := a.SetFFTSize(32); err != nil {
		t.Fatal(err)
	}
	pcm := make([]byte, 32*4)
	for i := 0; i < 32; i++ {
		binary.LittleEndian.PutUint16(pcm[i*4:], uint16(int16(16384)))
		binary.LittleEndian.PutUint16(pcm[i*4+2:], uint16(int16(16384)))
	}
	n, err := a.Write(pcm)
	if err != nil || n != len(pcm) {
		t.Fatalf("Write returned %d, %v", n, err)
	}
	wave := make([]byte, 32)
	a.ByteTimeDomainData(wave)
	for i, v := range wave {
		if v != 192 {
			t.Fatalf("wave[%d] = %d, expected 192 for a half-scale signal", i, v)
		}
	}
}

func TestWriteCarriesPartialFrames(t *testing.T) {
	a := NewAnalyser(2)
	frame := []byte{0x00, 0x40, 0x00, 0x40}
	if _, err := a.Write(frame[:3]); err != nil {
		t.Fatal(err)
	}
	if got := a.ring.Len(); got != 0 {
		t.Fatalf("expected no samples from a partial frame, got %d", got)
	}
	if _, err := a.Write(frame[3:]); err != nil {
		t.Fatal(err)
	}
	if got := a.ring.Len(); got != 1 {
		t.Fatalf("expected the completed frame to land, got %d samples", got)
	}
}

func TestSinePeaksAtItsBin(t *testing.T) {
	const size, bin = 512, 32
	a := NewAnalyser(1)
	if err := a.SetFFTSize(size); err != nil {
		t.Fatal(err)
	}
	samples := make([]float64, size*4)
	for i := range samples {
		samples[i] = 0.01 * math.Sin(2*math.Pi*bin*float64(i)/size)
	}
	a.WriteSamples(samples)

	freq := make([]byte, size/2)
	for range 40 {
		a.ByteFrequencyData(freq)
	}
	if freq[bin] == 0 {
		t.Fatal("expected energy at the sine's bin")
	}
	if freq[bin] <= freq[bin-1] || freq[bin] <= freq[bin+1] {
		t.Fatalf("expected a peak at bin %d, got %d/%d/%d", bin, freq[bin-1], freq[bin], freq[bin+1])
	}
	if freq[200] != 0 {
		t.Fatalf("expected no energy far from the tone, got %d", freq[200])
	}
}

func TestSmoothingRampsUp(t *testing.T) {
	const size = 256
	a := NewAnalyser(1)
	if err := a.SetFFTSize(size); err != nil {
		t.Fatal(err)
	}
	samples := make([]float64, size)
	for i := range samples {
		samples[i] = 0.01 * math.Sin(2*math.Pi*16*float64(i)/size)
	}
	a.WriteSamples(samples)

	freq := make([]byte, size/2)
	a.ByteFrequencyData(freq)
	first := freq[16]
	for range 20 {
		a.ByteFrequencyData(freq)
	}
	if freq[16] <= first {
		t.Fatalf("expected smoothed magnitude to rise, first %d later %d", first, freq[16])
	}
}

func TestResetClearsHistory(t *testing.T) {
	a := NewAnalyser(1)
	a.WriteSamples([]float64{0.5, 0.5, 0.5})
	a.Reset()
	wave := make([]byte, 4)
	a.ByteTimeDomainData(wave)
	for i, v := range wave {
		if v != 128 {
			t.Fatalf("wave[%d] = %d after reset, expected 128", i, v)
		}
	}
}

func TestSetDecibelRangeRejectsEmptyRange(t *testing.T) {
	a := NewAnalyser(1)
	if err := a.SetDecibelRange(-30, -30); err == nil {
		t.Fatal("expected an error for an empty range")
	}
	if err := a.SetDecibelRange(-90, -10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
