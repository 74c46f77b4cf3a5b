package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/pulsar/internal/visualizer"
)

var (
	neutralTitle = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}
	mutedText    = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"}
	dimText      = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}
)

// styles is the status block look for one palette. The title and the time
// stamps follow the gradient ends so the chrome matches the scene.
type styles struct {
	title  lipgloss.Style
	artist lipgloss.Style
	time   lipgloss.Style
	status lipgloss.Style
	help   lipgloss.Style
}

func newStyles(p visualizer.Palette) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Start.Hex())),
		artist: lipgloss.NewStyle().Foreground(mutedText),
		time:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.End.Hex())),
		status: lipgloss.NewStyle().Foreground(mutedText),
		help:   lipgloss.NewStyle().Foreground(dimText),
	}
}

// plainTitle is used when the track has no title at all.
var plainTitle = lipgloss.NewStyle().Bold(true).Foreground(neutralTitle)
