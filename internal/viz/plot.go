// Package viz renders run telemetry in the terminal: static channel
// plots and a live view of the control loop.
package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// PlotChannel charts a width x ticks channel. Multi-row channels are
// drawn as overlaid series.
func PlotChannel(name string, data [][]float64, width, height int) (string, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return "", fmt.Errorf("viz: channel %s is empty", name)
	}
	if len(data) == 1 {
		return asciigraph.Plot(data[0],
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(name)), nil
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s (%d rows)", name, len(data)))), nil
}

// PlotRow charts a single row of a channel, captioned with its index.
func PlotRow(name string, data [][]float64, row, width, height int) (string, error) {
	if row < 0 || row >= len(data) {
		return "", fmt.Errorf("viz: channel %s has no row %d", name, row)
	}
	return asciigraph.Plot(data[row],
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s[%d]", name, row))), nil
}
