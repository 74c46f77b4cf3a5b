package visualizer

import "testing"

func TestBassLevelBounds(t *testing.T) {
	full := make([]byte, 256)
	for i := range full {
		full[i] = 255
	}
	cases := []struct {
		name string
		freq []byte
		n    int
		want float64
	}{
		{"silence", make([]byte, 256), 20, 0},
		{"full", full, 20, 1},
		{"empty", nil, 20, 0},
		{"short buffer", []byte{255, 255}, 20, 1},
		{"zero window", full, 0, 0},
	}
	for _, c := range cases {
		if got := BassLevel(c.freq, c.n); got != c.want {
			t.Fatalf("%s: BassLevel = %v, want %v", c.name, got, c.want)
		}
	}

	mixed := []byte{255, 0, 255, 0}
	if got := BassLevel(mixed, 4); got != 0.5 {
		t.Fatalf("expected mean 0.5, got %v", got)
	}
}

func TestSamplerSizesBuffersFromSource(t *testing.T) {
	src := &fakeSource{}
	s, err := NewSampler(src, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if src.size != 512 {
		t.Fatalf("expected fft size 512 to be applied, got %d", src.size)
	}
	if len(s.Freq) != 256 || len(s.Wave) != 512 {
		t.Fatalf("unexpected buffer sizes %d/%d", len(s.Freq), len(s.Wave))
	}
}

func TestSamplerGlowStaysBounded(t *testing.T) {
	src := &fakeSource{level: 255}
	s, err := NewSampler(src, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := range 120 {
		if i == 60 {
			src.level = 0
		}
		sig := s.Sample()
		if sig.Bass < 0 || sig.Bass > 1 || sig.Glow < 0 || sig.Glow > 1 {
			t.Fatalf("tick %d: signals out of range %+v", i, sig)
		}
	}
}

func TestDisabledSampler(t *testing.T) {
	s, err := NewSampler(nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s.Enabled() {
		t.Fatal("expected a nil source to disable the sampler")
	}
	if sig := s.Sample(); sig != (DriveSignals{}) {
		t.Fatalf("expected zero signals, got %+v", sig)
	}

	s, _ = NewSampler(&fakeSource{}, DefaultConfig())
	s.Release()
	if s.Enabled() {
		t.Fatal("expected Release to disable the sampler")
	}
}
