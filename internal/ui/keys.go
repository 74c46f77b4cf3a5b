package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Seek and volume steps for one key press.
const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

type binding struct {
	keys []string
	help string
}

var (
	keyQuit   = binding{[]string{"q", "esc", "ctrl+c"}, "q quit"}
	keyPause  = binding{[]string{" "}, "space pause"}
	keyBack   = binding{[]string{"left", "h"}, "←/→ seek"}
	keyFwd    = binding{[]string{"right", "l"}, ""}
	keyLouder = binding{[]string{"up", "k"}, "↑/↓ volume"}
	keyQuiet  = binding{[]string{"down", "j"}, ""}
	keyLoop   = binding{[]string{"r"}, "r loop"}
	keyStatus = binding{[]string{"s"}, "s status"}

	helpOrder = []binding{keyPause, keyBack, keyLouder, keyLoop, keyStatus, keyQuit}
)

func (b binding) matches(msg tea.KeyMsg) bool {
	s := msg.String()
	for _, k := range b.keys {
		if k == s {
			return true
		}
	}
	return false
}

func isQuit(msg tea.KeyMsg) bool { return keyQuit.matches(msg) }

func helpText() string {
	parts := make([]string, 0, len(helpOrder))
	for _, b := range helpOrder {
		parts = append(parts, b.help)
	}
	return strings.Join(parts, "  ")
}
