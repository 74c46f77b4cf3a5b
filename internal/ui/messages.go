package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusInterval is how often the status block polls the player. Frames
// arrive on their own message.
const statusInterval = 250 * time.Millisecond

type (
	statusTickMsg    time.Time
	playbackEndedMsg struct{}

	// frameMsg carries one rendered frame. frames identifies the sink it
	// came from so frames from a replaced sink are dropped.
	frameMsg struct {
		frames *Frames
		view   string
	}
)

func statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}
