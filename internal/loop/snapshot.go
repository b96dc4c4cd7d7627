package loop

import (
	"fmt"
	"io"
	"text/tabwriter"

	"quadloop/internal/robot"
)

// Snapshot is the read-only debug view of the last committed tick.
type Snapshot struct {
	Time          float64
	Tick          int
	Position      robot.Vec
	Euler         robot.Vec
	MaxTorques    robot.Vec
	MaxForces     robot.Vec
	RefWrench     robot.Vec
	FeetLocations robot.Vec
	Contacts      robot.Contacts
	FootForces    robot.Vec
	Torques       robot.Vec
	Phase         float64
	StepPhase     float64
}

// DebugSnapshot returns the state of the last successful tick. Before
// the first tick every vector is empty.
func (l *Loop) DebugSnapshot() Snapshot {
	return l.last
}

// Print writes the snapshot as an aligned table.
func (s Snapshot) Print(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "time\t%.4f\n", s.Time)
	fmt.Fprintf(tw, "tick\t%d\n", s.Tick)
	fmt.Fprintf(tw, "position\t%s\n", fmtVec(s.Position))
	fmt.Fprintf(tw, "euler\t%s\n", fmtVec(s.Euler))
	fmt.Fprintf(tw, "phase\t%.3f (step %.3f)\n", s.Phase, s.StepPhase)
	fmt.Fprintf(tw, "max torques\t%s\n", fmtVec(s.MaxTorques))
	fmt.Fprintf(tw, "max forces\t%s\n", fmtVec(s.MaxForces))
	fmt.Fprintf(tw, "ref wrench\t%s\n", fmtVec(s.RefWrench))
	fmt.Fprintf(tw, "feet\t%s\n", fmtVec(s.FeetLocations))
	fmt.Fprintf(tw, "contacts\t%s\n", fmtVec(s.Contacts))
	fmt.Fprintf(tw, "foot forces\t%s\n", fmtVec(s.FootForces))
	fmt.Fprintf(tw, "torques\t%s\n", fmtVec(s.Torques))
	tw.Flush()
}

func fmtVec(v robot.Vec) string {
	if len(v) == 0 {
		return "-"
	}
	out := ""
	for i, x := range v {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%+.2f", x)
	}
	return out
}
