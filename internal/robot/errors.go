package robot

import "errors"

// Error kinds surfaced by the control loop. Collaborators wrap these so
// callers can sort failures with errors.Is without depending on the
// concrete implementation.
var (
	// ErrEstimation indicates invalid or insufficient sensor data.
	ErrEstimation = errors.New("robot: state estimation failed")

	// ErrPlanner indicates a malformed gait configuration or planner output.
	ErrPlanner = errors.New("robot: gait planner failed")

	// ErrInfeasible indicates the stance controller found no feasible
	// force distribution for the current support pattern.
	ErrInfeasible = errors.New("robot: infeasible stance force solve")

	// ErrConfiguration indicates a width or enumeration mismatch. Checked
	// at construction only; construction fails outright.
	ErrConfiguration = errors.New("robot: invalid configuration")
)

// TickError wraps a collaborator failure with the tick it occurred on.
type TickError struct {
	Stage   string
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return e.Stage + ": " + e.Wrapped.Error()
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
