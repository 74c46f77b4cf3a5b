package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/olivier-w/pulsar/internal/media"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// audioDecoder yields interleaved signed 16-bit little-endian PCM. Length
// and Seek offsets are in output bytes.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// Stream is an opened audio file decoded to 16-bit PCM.
type Stream struct {
	audioDecoder
	file *os.File
}

// OpenStream opens path and picks a decoder by extension.
func OpenStream(path string) (*Stream, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := newDecoder(f, ext)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	return &Stream{audioDecoder: dec, file: f}, nil
}

// FrameSize is the byte size of one interleaved sample frame.
func (s *Stream) FrameSize() int { return s.ChannelCount() * 2 }

// Close closes the underlying file.
func (s *Stream) Close() error { return s.file.Close() }

func newDecoder(f *os.File, ext string) (audioDecoder, error) {
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// resolveSeek turns an io.Seeker request into an absolute byte offset
// clamped to [0,total] and aligned down to a frame boundary.
func resolveSeek(offset int64, whence int, pos, total, frameSize int64) int64 {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = pos + offset
	case io.SeekEnd:
		abs = total + offset
	}
	abs = max(0, min(abs, total))
	if frameSize > 0 {
		abs -= abs % frameSize
	}
	return abs
}

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// pending holds converted PCM that did not fit the caller's buffer.
type pending struct {
	buf []byte
	pos int64
}

func (p *pending) drain(dst []byte) int {
	n := copy(dst, p.buf)
	p.buf = p.buf[n:]
	p.pos += int64(n)
	return n
}

// deliver copies raw into dst and keeps the remainder for the next Read.
func (p *pending) deliver(dst, raw []byte) int {
	n := copy(dst, raw)
	if n < len(raw) {
		p.buf = append(p.buf[:0], raw[n:]...)
	}
	p.pos += int64(n)
	return n
}

// mp3

type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }

func (d *mp3Decoder) Seek(offset int64, whence int) (int64, error) {
	return d.dec.Seek(offset, whence)
}

func (d *mp3Decoder) Length() int64 { return d.dec.Length() }

// go-mp3 always emits 16-bit stereo at the stream's rate.
func (d *mp3Decoder) SampleRate() int   { return d.dec.SampleRate() }
func (d *mp3Decoder) ChannelCount() int { return 2 }

// wav

type wavDecoder struct {
	pending
	file         *os.File
	src          []byte
	raw          []byte
	totalBytes   int64
	pcmStart     int64
	sampleRate   int
	channels     int
	srcBitDepth  int
	srcFrameSize int64
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}
	srcFrameSize := int64(channels) * int64(bitDepth) / 8
	frames := dec.PCMLen() / srcFrameSize

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM data: %w", err)
	}

	return &wavDecoder{
		file:         f,
		sampleRate:   int(dec.SampleRate),
		channels:     channels,
		srcBitDepth:  bitDepth,
		srcFrameSize: srcFrameSize,
		totalBytes:   frames * int64(channels) * 2,
		pcmStart:     pcmStart,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.drain(p), nil
	}

	width := d.srcBitDepth / 8
	samples := max(len(p)/2, 1)
	if cap(d.src) < samples*width {
		d.src = make([]byte, samples*width)
	}
	src := d.src[:samples*width]
	n, err := io.ReadFull(d.file, src)
	got := n / width
	if got == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, err
	}

	if cap(d.raw) < got*2 {
		d.raw = make([]byte, got*2)
	}
	raw := d.raw[:got*2]
	for i := range got {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(wavSample(src[i*width:], d.srcBitDepth)))
	}

	written := d.deliver(p, raw)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return written, err
}

// wavSample converts one source sample to 16 bits.
func wavSample(b []byte, depth int) int16 {
	switch depth {
	case 8:
		// 8-bit WAV is unsigned
		return int16((int(b[0]) - 128) << 8)
	case 16:
		return int16(binary.LittleEndian.Uint16(b))
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF
		}
		return clamp16(int(s >> 8))
	default:
		return clamp16(int(int32(binary.LittleEndian.Uint32(b)) >> 16))
	}
}

func (d *wavDecoder) Seek(offset int64, whence int) (int64, error) {
	outFrame := int64(d.channels) * 2
	abs := resolveSeek(offset, whence, d.pos, d.totalBytes, outFrame)
	src := abs / outFrame * d.srcFrameSize
	if _, err := d.file.Seek(d.pcmStart+src, io.SeekStart); err != nil {
		return d.pos, err
	}
	d.buf = nil
	d.pos = abs
	return abs, nil
}

func (d *wavDecoder) Length() int64     { return d.totalBytes }
func (d *wavDecoder) SampleRate() int   { return d.sampleRate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

// flac

type flacDecoder struct {
	pending
	stream     *flac.Stream
	raw        []byte
	totalBytes int64
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bps:        int(info.BitsPerSample),
		totalBytes: int64(info.NSamples) * int64(channels) * 2,
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.drain(p), nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	n := int(frame.Subframes[0].NSamples)
	if cap(d.raw) < n*d.channels*2 {
		d.raw = make([]byte, n*d.channels*2)
	}
	raw := d.raw[:n*d.channels*2]
	for i := range n {
		for ch := range d.channels {
			s := int(frame.Subframes[ch].Samples[i])
			switch {
			case d.bps > 16:
				s >>= d.bps - 16
			case d.bps < 16:
				s <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(raw[(i*d.channels+ch)*2:], uint16(clamp16(s)))
		}
	}
	return d.deliver(p, raw), nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	frame := int64(d.channels) * 2
	abs := resolveSeek(offset, whence, d.pos, d.totalBytes, frame)
	if _, err := d.stream.Seek(uint64(abs / frame)); err != nil {
		return d.pos, err
	}
	d.buf = nil
	d.pos = abs
	return abs, nil
}

func (d *flacDecoder) Length() int64     { return d.totalBytes }
func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// ogg vorbis

type oggDecoder struct {
	pending
	reader     *oggvorbis.Reader
	samples    []float32
	raw        []byte
	totalBytes int64
	sampleRate int
	channels   int
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := reader.Channels()
	return &oggDecoder{
		reader:     reader,
		sampleRate: reader.SampleRate(),
		channels:   channels,
		totalBytes: reader.Length() * int64(channels) * 2,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.drain(p), nil
	}

	want := max(len(p)/2, d.channels)
	if cap(d.samples) < want {
		d.samples = make([]float32, want)
	}
	n, err := d.reader.Read(d.samples[:want])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	if cap(d.raw) < n*2 {
		d.raw = make([]byte, n*2)
	}
	raw := d.raw[:n*2]
	for i, s := range d.samples[:n] {
		s = max(-1, min(s, 1))
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(s*32767)))
	}
	return d.deliver(p, raw), err
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	frame := int64(d.channels) * 2
	abs := resolveSeek(offset, whence, d.pos, d.totalBytes, frame)
	if err := d.reader.SetPosition(abs / frame); err != nil {
		return d.pos, err
	}
	d.buf = nil
	d.pos = abs
	return abs, nil
}

func (d *oggDecoder) Length() int64     { return d.totalBytes }
func (d *oggDecoder) SampleRate() int   { return d.sampleRate }
func (d *oggDecoder) ChannelCount() int { return d.channels }
