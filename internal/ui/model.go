package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/pulsar/internal/config"
	"github.com/olivier-w/pulsar/internal/display"
	"github.com/olivier-w/pulsar/internal/player"
	"github.com/olivier-w/pulsar/internal/util"
	"github.com/olivier-w/pulsar/internal/visualizer"
)

// Playback is the audio control surface the model drives.
type Playback interface {
	Done() <-chan struct{}
	TogglePause()
	Paused() bool
	Position() time.Duration
	Duration() time.Duration
	Seek(delta time.Duration) error
	Volume() float64
	AdjustVolume(delta float64)
	Loop() bool
	ToggleLoop() bool
	Close()
}

// Viewport is the render session the model resizes and shuts down.
type Viewport interface {
	Resize(w, h int)
	Close()
	Engine() *visualizer.Engine
}

// statusLines is the height of the status block under the visual.
const statusLines = 3

// Model is the Bubbletea model for the pulsar TUI.
type Model struct {
	player   Playback
	session  Viewport
	frames   *Frames
	metadata player.Metadata
	display  config.Display

	view       string
	elapsed    time.Duration
	duration   time.Duration
	volume     float64
	paused     bool
	loop       bool
	showStatus bool
	width      int
	height     int
	quitting   bool

	palette visualizer.Palette
	styles  styles
	bar     progress.Model
}

// New creates a new Model around a running session. frames must be the
// session's present sink.
func New(p Playback, s Viewport, frames *Frames, meta player.Metadata, disp config.Display) Model {
	pal := visualizer.FallbackPalette
	if s != nil {
		pal = s.Engine().Gradient().Palette()
	}
	return Model{
		player:     p,
		session:    s,
		frames:     frames,
		metadata:   meta,
		display:    disp,
		duration:   p.Duration(),
		volume:     p.Volume(),
		loop:       p.Loop(),
		showStatus: disp.ShowStatus,
		palette:    pal,
		styles:     newStyles(pal),
		bar:        newProgress(pal, 40),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		statusTick(),
		checkDone(m.player),
		m.frames.wait(),
		tea.SetWindowTitle(windowTitle(m.metadata.Title, false)),
	)
}

func checkDone(p Playback) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			return m.quit()
		}
		switch {
		case keyPause.matches(msg):
			m.player.TogglePause()
			m.paused = m.player.Paused()
			return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
		case keyBack.matches(msg):
			m.seek(-seekStep)
		case keyFwd.matches(msg):
			m.seek(seekStep)
		case keyLouder.matches(msg):
			m.player.AdjustVolume(volumeStep)
			m.volume = m.player.Volume()
		case keyQuiet.matches(msg):
			m.player.AdjustVolume(-volumeStep)
			m.volume = m.player.Volume()
		case keyLoop.matches(msg):
			m.loop = m.player.ToggleLoop()
		case keyStatus.matches(msg):
			m.showStatus = !m.showStatus
			m.resize()
		}
		return m, nil

	case frameMsg:
		if msg.frames != m.frames {
			return m, nil
		}
		m.view = msg.view
		return m, m.frames.wait()

	case statusTickMsg:
		m.elapsed = m.player.Position()
		m.volume = m.player.Volume()
		m.paused = m.player.Paused()
		m.loop = m.player.Loop()
		if m.session != nil {
			if pal := m.session.Engine().Gradient().Palette(); pal != m.palette {
				m.palette = pal
				m.styles = newStyles(pal)
				m.bar = newProgress(pal, m.bar.Width)
			}
		}
		return m, statusTick()

	case playbackEndedMsg:
		m.elapsed = m.duration
		return m.quit()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	}

	return m, nil
}

// seek moves playback and refreshes the elapsed time. A failed seek leaves
// the position where it was.
func (m *Model) seek(delta time.Duration) {
	if err := m.player.Seek(delta); err != nil {
		log.Printf("seek: %v", err)
	}
	m.elapsed = m.player.Position()
}

// resize recomputes the visual area and forwards it to the session in
// engine pixels.
func (m *Model) resize() {
	cols, rows := m.visualCells()
	m.frames.SetCells(cols, rows)
	if m.session != nil {
		m.session.Resize(display.Grid(cols, rows, m.display.CellWidth, m.display.CellHeight))
	}
	m.bar.Width = max(m.width-22, 10)
}

func (m Model) visualCells() (cols, rows int) {
	rows = m.height
	if m.showStatus {
		rows -= statusLines
	}
	return max(m.width, 0), max(rows, 0)
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

// Close stops the session, the frame pump and playback. Parts the model
// was built without are skipped.
func (m Model) Close() {
	if m.session != nil {
		m.session.Close()
	}
	if m.frames != nil {
		m.frames.Close()
	}
	if m.player != nil {
		m.player.Close()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	_, rows := m.visualCells()
	visual := m.view
	if rows > 0 {
		b.WriteString(padLines(visual, rows))
	}
	if m.showStatus {
		if rows > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.statusView())
	}
	return b.String()
}

func (m Model) statusView() string {
	w := m.width
	if w < 30 {
		w = 50
	}

	st := m.styles
	title := st.title.Render(m.metadata.Title)
	if m.metadata.Title == "" {
		title = plainTitle.Render("pulsar")
	}
	if m.metadata.Artist != "" {
		title += "  " + st.artist.Render(m.metadata.Artist)
	}

	elapsedStr := st.time.Render(util.FormatDuration(m.elapsed))
	durationStr := st.time.Render(util.FormatDuration(m.duration))
	bar := m.bar.ViewAs(progressRatio(m.elapsed.Seconds(), m.duration.Seconds()))
	progressLine := fmt.Sprintf("%s %s %s", elapsedStr, bar, durationStr)

	statusIcon := "▶"
	statusText := "playing"
	if m.paused {
		statusIcon = "❚❚"
		statusText = "paused"
	}
	leftText := fmt.Sprintf("%s  %s", statusIcon, statusText)
	if label := loopLabel(m.loop); label != "" {
		leftText += "  " + label
	}
	volStr := renderVolumePercent(m.volume)
	left := st.status.Render(leftText) + "  " + st.help.Render(helpText())
	gap := max(w-lipgloss.Width(left)-lipgloss.Width(volStr)-2, 2)
	statusLine := left + strings.Repeat(" ", gap) + st.status.Render(volStr)

	return " " + title + "\n" + " " + progressLine + "\n" + " " + statusLine
}

// padLines forces s to exactly n lines so the status block stays put.
func padLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if s == "" {
		lines = nil
	}
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " · pulsar"
	}
	return "▶ " + title + " · pulsar"
}
