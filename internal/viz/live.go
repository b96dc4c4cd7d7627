package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"quadloop/internal/config"
	"quadloop/internal/loop"
	"quadloop/internal/plant"
	"quadloop/internal/robot"
)

const historyCapacity = 600

var legLabels = []string{"FR", "FL", "BR", "BL"}

type TickMsg time.Time

// Model runs the control loop against the test stand and renders one
// frame per UI tick.
type Model struct {
	cfg  *config.Config
	loop *loop.Loop
	pl   *plant.Plant

	torques       robot.Vec
	running       bool
	err           error
	fps           int
	ticksPerFrame int

	heightHistory []float64
	forceHistory  []float64
}

// NewModel assembles a fresh loop and plant from the config.
func NewModel(cfg *config.Config, fps int) (Model, error) {
	l, err := loop.Build(cfg)
	if err != nil {
		return Model{}, err
	}
	if fps <= 0 {
		fps = 30
	}
	ticksPerFrame := int(1 / (float64(fps) * cfg.Loop.Dt))
	if ticksPerFrame < 1 {
		ticksPerFrame = 1
	}
	return Model{
		cfg:           cfg,
		loop:          l,
		pl:            plant.New(cfg.Robot, cfg.Loop.Dt),
		torques:       make(robot.Vec, robot.NumJoints),
		running:       true,
		fps:           fps,
		ticksPerFrame: ticksPerFrame,
		heightHistory: make([]float64, 0, historyCapacity),
		forceHistory:  make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return m.frameTick()
}

func (m Model) frameTick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, m.frameTick()
	}
	return m, nil
}

// advance runs one frame's worth of control ticks.
func (m *Model) advance() {
	for i := 0; i < m.ticksPerFrame; i++ {
		snap := m.pl.Step(m.torques)
		torques, err := m.loop.Tick(snap)
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.torques = torques
	}

	s := m.loop.DebugSnapshot()
	m.heightHistory = appendBounded(m.heightHistory, s.Position[2])
	total := 0.0
	for _, f := range s.FootForces {
		total += f
	}
	m.forceHistory = appendBounded(m.forceHistory, total)
}

func appendBounded(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Model) reset() {
	fresh, err := NewModel(m.cfg, m.fps)
	if err != nil {
		m.err = err
		return
	}
	*m = fresh
}

func (m Model) View() string {
	snap := m.loop.DebugSnapshot()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.cfg.Gait.Planner)+" GAIT") + "\n")
	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("FAULT") + "\n")
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	height := 0.0
	if len(snap.Position) == 3 {
		height = snap.Position[2]
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", snap.Time)) + "\n")
	s.WriteString(labelStyle.Render("Tick") + valueStyle.Render(fmt.Sprintf("%d", snap.Tick)) + "\n")
	s.WriteString(labelStyle.Render("Height") + valueStyle.Render(fmt.Sprintf("%.3fm", height)) + "\n")
	s.WriteString(labelStyle.Render("Phase") + valueStyle.Render(PhaseBar(snap.Phase, 16)+fmt.Sprintf(" %.2f", snap.Phase)) + "\n")
	s.WriteString(labelStyle.Render("Step phase") + valueStyle.Render(PhaseBar(snap.StepPhase, 16)+fmt.Sprintf(" %.2f", snap.StepPhase)) + "\n")
	s.WriteString(labelStyle.Render("Contacts") + ContactRow(legLabels, snap.Contacts) + "\n")

	maxTorque := 0.0
	for _, v := range snap.MaxTorques {
		if v > maxTorque {
			maxTorque = v
		}
	}
	s.WriteString(labelStyle.Render("Peak torque") + valueStyle.Render(fmt.Sprintf("%.2f Nm", maxTorque)) + "\n")

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("\nSP:Pause R:Reset Q:Quit"))
	statsView := statsStyle.Render(s.String())

	var charts strings.Builder
	if len(m.heightHistory) > 1 {
		charts.WriteString(graphStyle.Render(asciigraph.Plot(m.heightHistory,
			asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("Body height (m)"))) + "\n")
	}
	if len(m.forceHistory) > 1 {
		charts.WriteString(graphStyle.Render(asciigraph.Plot(m.forceHistory,
			asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("Total contact force (N)"))))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, charts.String(), statsView)
}
