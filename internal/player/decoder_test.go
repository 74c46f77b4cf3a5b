package player

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
)

func TestResolveSeek(t *testing.T) {
	cases := []struct {
		offset int64
		whence int
		pos    int64
		want   int64
	}{
		{offset: 10, whence: io.SeekStart, want: 8},
		{offset: 5, whence: io.SeekCurrent, pos: 8, want: 12},
		{offset: -3, whence: io.SeekEnd, want: 36},
		{offset: -50, whence: io.SeekStart, want: 0},
		{offset: 500, whence: io.SeekStart, want: 40},
	}
	for _, c := range cases {
		if got := resolveSeek(c.offset, c.whence, c.pos, 40, 4); got != c.want {
			t.Fatalf("resolveSeek(%d, %d, %d) = %d, want %d", c.offset, c.whence, c.pos, got, c.want)
		}
	}
}

func TestWavSampleConversions(t *testing.T) {
	if got := wavSample([]byte{0x80}, 8); got != 0 {
		t.Fatalf("8-bit midpoint: got %d", got)
	}
	if got := wavSample([]byte{0xff, 0x7f}, 16); got != 32767 {
		t.Fatalf("16-bit max: got %d", got)
	}
	if got := wavSample([]byte{0x00, 0x00, 0x80}, 24); got != -32768 {
		t.Fatalf("24-bit min: got %d", got)
	}
	if got := wavSample([]byte{0x00, 0x00, 0x00, 0x40}, 32); got != 16384 {
		t.Fatalf("32-bit half: got %d", got)
	}
}

func TestOpenStreamRejectsUnknownExtension(t *testing.T) {
	_, err := OpenStream(filepath.Join(t.TempDir(), "clip.aac"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPendingDeliverKeepsRemainder(t *testing.T) {
	var p pending
	dst := make([]byte, 3)
	if n := p.deliver(dst, []byte{1, 2, 3, 4, 5}); n != 3 {
		t.Fatalf("expected 3 bytes delivered, got %d", n)
	}
	if n := p.drain(dst); n != 2 || dst[0] != 4 || dst[1] != 5 {
		t.Fatalf("expected remainder [4 5], got %v (%d)", dst[:n], n)
	}
	if p.pos != 5 {
		t.Fatalf("expected position 5, got %d", p.pos)
	}
}
