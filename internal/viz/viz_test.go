package viz

import (
	"strings"
	"testing"

	"quadloop/internal/config"
)

func TestPlotChannelSingleRow(t *testing.T) {
	out, err := PlotChannel("phase_history", [][]float64{{0, 0.25, 0.5, 0.75}}, 30, 4)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	if !strings.Contains(out, "phase_history") {
		t.Error("expected caption in output")
	}
}

func TestPlotChannelMultiRow(t *testing.T) {
	data := [][]float64{{0, 1, 2}, {2, 1, 0}}
	out, err := PlotChannel("torque_history", data, 30, 4)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	if !strings.Contains(out, "2 rows") {
		t.Error("expected row count in caption")
	}
}

func TestPlotChannelRejectsEmpty(t *testing.T) {
	if _, err := PlotChannel("empty", nil, 30, 4); err == nil {
		t.Error("expected error for empty channel")
	}
}

func TestPlotRowOutOfRange(t *testing.T) {
	if _, err := PlotRow("x", [][]float64{{1, 2}}, 3, 30, 4); err == nil {
		t.Error("expected error for missing row")
	}
}

func TestPhaseBarClamps(t *testing.T) {
	if got := PhaseBar(1.5, 4); got != "[====]" {
		t.Errorf("expected full bar, got %q", got)
	}
	if got := PhaseBar(-0.5, 4); got != "[----]" {
		t.Errorf("expected empty bar, got %q", got)
	}
}

func TestModelRunsFrames(t *testing.T) {
	m, err := NewModel(config.GetPreset("stand"), 30)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	// The view must render before any tick has committed.
	if out := m.View(); out == "" {
		t.Error("expected non-empty initial view")
	}

	m.advance()
	m.advance()
	if m.err != nil {
		t.Fatalf("advance: %v", m.err)
	}
	if m.loop.Ticks() == 0 {
		t.Error("expected control ticks to advance")
	}
	if out := m.View(); !strings.Contains(out, "RUNNING") {
		t.Error("expected running status in view")
	}
}
