package main

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/pulsar/internal/ui"
)

type startupPhase uint8

const (
	phaseOpening startupPhase = iota
	phaseFailed
)

type startupResolvedMsg struct {
	model ui.Model
	err   error
}

// startupAbort is fired when the user quits before the open finishes.
type startupAbort struct {
	once sync.Once
	done chan struct{}
}

func newStartupAbort() *startupAbort {
	return &startupAbort{done: make(chan struct{})}
}

func (a *startupAbort) fire() { a.once.Do(func() { close(a.done) }) }

func (a *startupAbort) fired() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// startupModel shows a spinner while the file is opened and the session
// started, then hands over to the playback model.
type startupModel struct {
	req     openRequest
	open    func(openRequest) (ui.Model, error)
	abort   *startupAbort
	phase   startupPhase
	errMsg  string
	width   int
	height  int
	spinner spinner.Model
}

func newStartupModel(req openRequest) startupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	return startupModel{
		req:     req,
		open:    buildPlaybackModel,
		abort:   newStartupAbort(),
		phase:   phaseOpening,
		spinner: s,
	}
}

func (m startupModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, openCmd(m.open, m.req, m.abort))
}

// openCmd runs open off the UI goroutine. A model that arrives after the
// user quit is closed here instead of being delivered.
func openCmd(open func(openRequest) (ui.Model, error), req openRequest, abort *startupAbort) tea.Cmd {
	return func() tea.Msg {
		model, err := open(req)
		if err == nil && abort.fired() {
			model.Close()
			return nil
		}
		return startupResolvedMsg{model: model, err: err}
	}
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseOpening {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startupResolvedMsg:
		if m.abort.fired() {
			if msg.err == nil {
				msg.model.Close()
			}
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseFailed
			m.errMsg = msg.err.Error()
			return m, nil
		}

		cmds := []tea.Cmd{msg.model.Init()}
		if m.width > 0 || m.height > 0 {
			w, h := m.width, m.height
			cmds = append(cmds, func() tea.Msg {
				return tea.WindowSizeMsg{Width: w, Height: h}
			})
		}
		return msg.model, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.phase == phaseFailed || startupIsQuit(msg) {
			m.abort.fire()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
	}
	return m, nil
}

func (m startupModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(startupHeaderStyle.Render("pulsar"))
	b.WriteString("\n\n  ")

	if m.phase == phaseFailed {
		b.WriteString(startupErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n  ")
		b.WriteString(startupHelpStyle.Render("press any key to exit"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(startupStatusStyle.Render("Opening " + filepath.Base(m.req.path) + "..."))
	b.WriteString("\n\n  ")
	b.WriteString(startupHelpStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

// failed reports the open error, if any, once the program has exited.
func (m startupModel) failed() string {
	if m.phase == phaseFailed {
		return m.errMsg
	}
	return ""
}

func startupIsQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

var (
	startupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})
	startupStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})
	startupHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	startupErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#A00000", Dark: "#FF8080"})
)
