package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/olivier-w/pulsar/internal/visualizer"
)

// newProgress builds a bar shaded with the palette's two stops.
func newProgress(p visualizer.Palette, width int) progress.Model {
	bar := progress.New(
		progress.WithGradient(p.Start.Hex(), p.End.Hex()),
		progress.WithoutPercentage(),
	)
	bar.Full = '━'
	bar.Empty = '─'
	bar.Width = max(width, 10)
	return bar
}

func progressRatio(elapsed, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return max(0, min(elapsed/total, 1))
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

func loopLabel(on bool) string {
	if on {
		return "[loop]"
	}
	return ""
}
