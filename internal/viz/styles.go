package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	statusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	statusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))

	contactOn  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	contactOff = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

// PhaseBar renders a 0..1 value as a fixed-width bar.
func PhaseBar(v float64, width int) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	filled := int(v * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

// ContactRow marks each leg as loaded or airborne.
func ContactRow(labels []string, contacts []float64) string {
	var b strings.Builder
	for i, name := range labels {
		mark := contactOff.Render("· " + name)
		if i < len(contacts) && contacts[i] > 0.5 {
			mark = contactOn.Render("▣ " + name)
		}
		b.WriteString(mark)
		if i < len(labels)-1 {
			b.WriteString("  ")
		}
	}
	return b.String()
}
