package ui

import (
	"image"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/pulsar/internal/display"
)

// Frames turns engine frames into terminal text on the render goroutine and
// hands the newest one to the model. Frames the model has not picked up yet
// are replaced, never queued.
type Frames struct {
	renderer *display.Renderer

	mu   sync.Mutex
	cols int
	rows int

	ch        chan string
	done      chan struct{}
	closeOnce sync.Once
}

// NewFrames creates a frame sink drawing with r.
func NewFrames(r *display.Renderer) *Frames {
	return &Frames{
		renderer: r,
		ch:       make(chan string, 1),
		done:     make(chan struct{}),
	}
}

// SetCells sets the terminal area frames are rendered into.
func (f *Frames) SetCells(cols, rows int) {
	f.mu.Lock()
	f.cols, f.rows = max(cols, 0), max(rows, 0)
	f.mu.Unlock()
}

// Cells returns the current terminal area.
func (f *Frames) Cells() (cols, rows int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cols, f.rows
}

// Present renders img and publishes it. It is meant to be the session's
// present callback and must not be called concurrently with itself.
func (f *Frames) Present(img *image.RGBA) {
	cols, rows := f.Cells()
	view := f.renderer.Render(img, cols, rows)

	select {
	case <-f.ch:
	default:
	}
	select {
	case f.ch <- view:
	case <-f.done:
	}
}

// Close unblocks any pending wait.
func (f *Frames) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

// wait blocks for the next frame.
func (f *Frames) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case view := <-f.ch:
			return frameMsg{frames: f, view: view}
		case <-f.done:
			return nil
		}
	}
}
