package player

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// countingReader sits between the decoder and oto. It tracks the byte
// position, copies every chunk to the tap, and rewinds at EOF while looping.
type countingReader struct {
	mu     sync.Mutex
	reader audioDecoder
	tap    io.Writer
	pos    int64
	loop   bool
	loops  int
}

func (cr *countingReader) Read(p []byte) (int, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	n, err := cr.reader.Read(p)
	cr.pos += int64(n)
	if errors.Is(err, io.EOF) && cr.loop && cr.reader.Length() > 0 {
		if _, serr := cr.reader.Seek(0, io.SeekStart); serr == nil {
			cr.pos = 0
			cr.loops++
			err = nil
		}
	}
	if n > 0 && cr.tap != nil {
		cr.tap.Write(p[:n])
	}
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) seek(pos int64) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cr.reader != nil {
		got, err := cr.reader.Seek(pos, io.SeekStart)
		if err != nil {
			return err
		}
		pos = got
	}
	cr.pos = pos
	if r, ok := cr.tap.(interface{ Reset() }); ok {
		r.Reset()
	}
	return nil
}

func (cr *countingReader) setLoop(on bool) {
	cr.mu.Lock()
	cr.loop = on
	cr.mu.Unlock()
}

func (cr *countingReader) looping() bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.loop
}

// Options configures a Player.
type Options struct {
	// Tap receives a copy of every PCM chunk handed to the audio device.
	Tap io.Writer
	// Loop restarts the track at its end.
	Loop   bool
	Volume float64
}

// Player plays one audio file through oto.
type Player struct {
	decoder     audioDecoder
	counter     *countingReader
	otoCtx      *oto.Context
	otoPlayer   *oto.Player
	bytesPerSec int64
	frameSize   int64
	duration    time.Duration
	volume      float64
	paused      bool
	done        chan struct{}
	stopMon     chan struct{}
	cleanup     func()
	mu          sync.Mutex
	closed      bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide audio context. oto allows only one, so
// the first stream's format wins.
func initOto(rate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Play starts playback of an opened stream. The player owns the stream from
// here on and closes it on failure.
func Play(stream *Stream, opts Options) (*Player, error) {
	ctx, err := initOto(stream.SampleRate(), stream.ChannelCount())
	if err != nil {
		stream.Close()
		return nil, fmt.Errorf("initializing audio output: %w", err)
	}

	frameSize := int64(stream.FrameSize())
	bytesPerSec := int64(stream.SampleRate()) * frameSize
	volume := opts.Volume
	if volume <= 0 {
		volume = 0.8
	}

	p := &Player{
		decoder:     stream,
		counter:     &countingReader{reader: stream, tap: opts.Tap, loop: opts.Loop},
		otoCtx:      ctx,
		bytesPerSec: bytesPerSec,
		frameSize:   frameSize,
		duration:    time.Duration(float64(stream.Length()) / float64(bytesPerSec) * float64(time.Second)),
		volume:      min(volume, 1),
		done:        make(chan struct{}),
		stopMon:     make(chan struct{}),
	}
	p.cleanup = func() { stream.Close() }

	p.otoPlayer = ctx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor(p.done, p.stopMon)
	return p, nil
}

// monitor closes done once a non-looping track has been fully consumed.
func (p *Player) monitor(done, stop chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		p.mu.Lock()
		paused := p.paused
		p.mu.Unlock()
		if !paused && !p.counter.looping() && p.counter.Pos() >= p.decoder.Length() {
			close(done)
			return
		}
	}
}

// Done returns a channel that closes when playback finishes. It never
// closes while looping.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Loop reports whether the track restarts at its end.
func (p *Player) Loop() bool { return p.counter.looping() }

// SetLoop enables or disables looping.
func (p *Player) SetLoop(on bool) { p.counter.setLoop(on) }

// ToggleLoop flips looping and returns the new state.
func (p *Player) ToggleLoop() bool {
	on := !p.Loop()
	p.SetLoop(on)
	return on
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPausedLocked(!p.paused)
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPausedLocked(true)
}

func (p *Player) setPausedLocked(paused bool) {
	p.paused = paused
	if p.otoPlayer == nil {
		return
	}
	if paused {
		p.otoPlayer.Pause()
	} else {
		p.otoPlayer.Play()
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	if p.bytesPerSec == 0 {
		return 0
	}
	secs := float64(p.counter.Pos()) / float64(p.bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Seek moves playback by delta from the current position.
func (p *Player) Seek(delta time.Duration) error {
	p.mu.Lock()
	paused := p.paused
	p.mu.Unlock()
	return p.SeekTo(p.Position()+delta, !paused)
}

// clampSeekByteOffset converts a target time to a byte offset clamped to
// [0,total] and aligned down to frameSize.
func clampSeekByteOffset(target time.Duration, bytesPerSec, total, frameSize int64) int64 {
	off := int64(target.Seconds() * float64(bytesPerSec))
	off = max(0, min(off, total))
	if frameSize > 0 {
		off -= off % frameSize
	}
	return off
}

// SeekTo jumps to target. The oto player is recreated to flush its buffer;
// playback resumes only when resume is set.
func (p *Player) SeekTo(target time.Duration, resume bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameSize := p.frameSize
	if frameSize == 0 {
		frameSize = int64(p.decoder.ChannelCount()) * 2
	}
	off := clampSeekByteOffset(target, p.bytesPerSec, p.decoder.Length(), frameSize)
	if err := p.counter.seek(off); err != nil {
		return fmt.Errorf("seeking to %v: %w", target, err)
	}

	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
		p.otoPlayer.SetVolume(p.volume)
	}
	p.setPausedLocked(!resume)
	return nil
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = max(0, min(v, 1))
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// Close stops playback and releases the file. Safe to call more than once.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.stopMon != nil {
		close(p.stopMon)
	}
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	if p.cleanup != nil {
		p.cleanup()
	}
}
