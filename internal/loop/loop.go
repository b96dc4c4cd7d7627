// Package loop runs the per-tick locomotion control cycle: estimation,
// gait planning, swing and stance control, and torque blending.
package loop

import (
	"fmt"

	"quadloop/internal/config"
	"quadloop/internal/gait"
	"quadloop/internal/recorder"
	"quadloop/internal/robot"
	"quadloop/internal/stance"
	"quadloop/internal/stats"
	"quadloop/internal/swing"
)

// Collaborator roles, one interface each, injected at construction.
type StateEstimator interface {
	Update(raw robot.SensorData) (robot.State, error)
}

type ContactEstimator interface {
	Update(raw robot.SensorData) (robot.Contacts, error)
}

type GaitPlanner interface {
	Update(st robot.State, contacts robot.Contacts, t float64,
		rc config.RobotConfig, gc config.GaitConfig) (gait.Plan, error)
}

type SwingController interface {
	Update(st robot.State, stepPhase float64, stepLocations, prevStepLocations,
		activeFeet robot.Vec, rc config.RobotConfig, sc config.SwingConfig) swing.Output
}

type StanceController interface {
	Update(st robot.State, feetLocations, activeFeet, pRef, rpyRef,
		prevForces robot.Vec, rc config.RobotConfig, fc config.ForceConfig) (stance.Output, error)
}

// ForwardKinematics maps joint angles and body orientation to foot
// positions. Pure.
type ForwardKinematics func(rc config.RobotConfig, joints, quat robot.Vec) robot.Vec

// Recorder channel names. The set is fixed; the recorder refuses any
// other channel.
const (
	ChanTorques         = "torque_history"
	ChanForces          = "force_history"
	ChanRefWrench       = "ref_wrench_history"
	ChanContacts        = "contacts_history"
	ChanActiveFeet      = "active_feet_history"
	ChanSwingTorques    = "swing_torque_history"
	ChanSwingForces     = "swing_force_history"
	ChanSwingTrajectory = "swing_trajectory"
	ChanFootPositions   = "foot_positions"
	ChanPhase           = "phase_history"
	ChanStepPhase       = "step_phase_history"
)

func channelSpecs() []recorder.ChannelSpec {
	return []recorder.ChannelSpec{
		{Name: ChanTorques, Width: robot.NumJoints},
		{Name: ChanForces, Width: robot.NumJoints},
		{Name: ChanRefWrench, Width: 6},
		{Name: ChanContacts, Width: robot.NumLegs},
		{Name: ChanActiveFeet, Width: robot.NumLegs},
		{Name: ChanSwingTorques, Width: robot.NumJoints},
		{Name: ChanSwingForces, Width: robot.NumJoints},
		{Name: ChanSwingTrajectory, Width: robot.NumJoints},
		{Name: ChanFootPositions, Width: robot.NumJoints},
		{Name: ChanPhase, Width: 1},
		{Name: ChanStepPhase, Width: 1},
	}
}

// Loop owns the tick counter, simulated time, statistics and the log.
// Reset only by constructing a new one.
type Loop struct {
	cfg *config.Config

	stateEst   StateEstimator
	contactEst ContactEstimator
	planner    GaitPlanner
	swingCtrl  SwingController
	stanceCtrl StanceController
	fk         ForwardKinematics

	maxTorques *stats.RunningMax
	maxForces  *stats.RunningMax
	rec        *recorder.Recorder

	dt float64
	t  float64
	i  int

	// Previous tick's stance solution, fed back as a warm start. Seeded
	// with the static quarter-weight support guess.
	footForces robot.Vec

	last Snapshot
}

// New wires a loop from explicit collaborators. Configuration mismatches
// are detected here and nowhere else.
func New(cfg *config.Config, se StateEstimator, ce ContactEstimator,
	gp GaitPlanner, sw SwingController, st StanceController,
	fk ForwardKinematics) (*Loop, error) {

	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", robot.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if se == nil || ce == nil || gp == nil || sw == nil || st == nil || fk == nil {
		return nil, fmt.Errorf("%w: missing collaborator", robot.ErrConfiguration)
	}
	if robot.NumLegs*robot.JointsPerLeg != robot.NumJoints {
		return nil, fmt.Errorf("%w: leg/joint enumeration mismatch", robot.ErrConfiguration)
	}

	rec, err := recorder.New(cfg.Loop.LogCapacity, cfg.Loop.LogChunk, channelSpecs())
	if err != nil {
		return nil, err
	}

	support := cfg.Robot.Mass * config.Gravity / robot.NumLegs
	footForces := make(robot.Vec, robot.NumJoints)
	for leg := 0; leg < robot.NumLegs; leg++ {
		footForces[leg*3+2] = support
	}

	return &Loop{
		cfg:        cfg,
		stateEst:   se,
		contactEst: ce,
		planner:    gp,
		swingCtrl:  sw,
		stanceCtrl: st,
		fk:         fk,
		maxTorques: stats.NewRunningMax(robot.NumJoints),
		maxForces:  stats.NewRunningMax(robot.NumJoints),
		rec:        rec,
		dt:         cfg.Loop.Dt,
		footForces: footForces,
	}, nil
}

func (l *Loop) Dt() float64   { return l.dt }
func (l *Loop) Time() float64 { return l.t }
func (l *Loop) Ticks() int    { return l.i }

// Tick consumes one sensor snapshot and produces one torque command.
// A collaborator failure aborts the tick: time, the tick counter, the
// statistics and the log are left exactly as they were.
func (l *Loop) Tick(raw robot.SensorData) (robot.Vec, error) {
	state, err := l.stateEst.Update(raw)
	if err != nil {
		return nil, &robot.TickError{Stage: "state estimation", Tick: l.i, Time: l.t, Wrapped: err}
	}

	contacts, err := l.contactEst.Update(raw)
	if err != nil {
		return nil, &robot.TickError{Stage: "contact estimation", Tick: l.i, Time: l.t, Wrapped: err}
	}
	if len(contacts) != robot.NumLegs {
		return nil, &robot.TickError{Stage: "contact estimation", Tick: l.i, Time: l.t,
			Wrapped: fmt.Errorf("%w: %d contacts", robot.ErrEstimation, len(contacts))}
	}

	plan, err := l.planner.Update(state, contacts, l.t, l.cfg.Robot, l.cfg.Gait)
	if err != nil {
		return nil, &robot.TickError{Stage: "gait planning", Tick: l.i, Time: l.t, Wrapped: err}
	}
	if err := validatePlan(plan); err != nil {
		return nil, &robot.TickError{Stage: "gait planning", Tick: l.i, Time: l.t, Wrapped: err}
	}

	sw := l.swingCtrl.Update(state, plan.StepPhase, plan.StepLocations,
		plan.PrevStepLocations, plan.ActiveFeet, l.cfg.Robot, l.cfg.Swing)
	if err := validateSwing(sw); err != nil {
		return nil, &robot.TickError{Stage: "swing control", Tick: l.i, Time: l.t, Wrapped: err}
	}

	feetLocations := l.fk(l.cfg.Robot, state.Joints, state.Quat)

	stanceOut, err := l.stanceCtrl.Update(state, feetLocations, plan.ActiveFeet,
		plan.PRef, plan.RPYRef, l.footForces, l.cfg.Robot, l.cfg.Force)
	if err != nil {
		return nil, &robot.TickError{Stage: "stance control", Tick: l.i, Time: l.t, Wrapped: err}
	}
	if len(stanceOut.Torques) != robot.NumJoints || len(stanceOut.FootForces) != robot.NumJoints ||
		len(stanceOut.RefWrench) != 6 {
		return nil, &robot.TickError{Stage: "stance control", Tick: l.i, Time: l.t,
			Wrapped: fmt.Errorf("malformed stance output")}
	}

	mask := robot.ExpandLegMask(plan.ActiveFeet)
	torques := make(robot.Vec, robot.NumJoints)
	for k := range torques {
		torques[k] = mask[k]*stanceOut.Torques[k] + (1-mask[k])*sw.Torques[k]
	}

	// Commit. The recorder write goes first so a (programming) failure
	// there still leaves counters and statistics untouched.
	err = l.rec.Append(l.i, map[string][]float64{
		ChanTorques:         torques,
		ChanForces:          stanceOut.FootForces,
		ChanRefWrench:       stanceOut.RefWrench,
		ChanContacts:        contacts,
		ChanActiveFeet:      plan.ActiveFeet,
		ChanSwingTorques:    sw.Torques,
		ChanSwingForces:     sw.Forces,
		ChanSwingTrajectory: sw.Trajectory,
		ChanFootPositions:   sw.FootPositions,
		ChanPhase:           {plan.Phase},
		ChanStepPhase:       {plan.StepPhase},
	})
	if err != nil {
		return nil, &robot.TickError{Stage: "logging", Tick: l.i, Time: l.t, Wrapped: err}
	}

	// Exactly one statistics update per channel per tick.
	l.maxForces.Update(stanceOut.FootForces)
	l.maxTorques.Update(torques)

	l.footForces = stanceOut.FootForces.Clone()

	l.last = Snapshot{
		Time:          l.t,
		Tick:          l.i,
		Position:      state.Pos.Clone(),
		Euler:         robot.QuatToEuler(state.Quat),
		MaxTorques:    l.maxTorques.Current(),
		MaxForces:     l.maxForces.Current(),
		RefWrench:     stanceOut.RefWrench.Clone(),
		FeetLocations: feetLocations.Clone(),
		Contacts:      contacts.Clone(),
		FootForces:    stanceOut.FootForces.Clone(),
		Torques:       torques.Clone(),
		Phase:         plan.Phase,
		StepPhase:     plan.StepPhase,
	}

	l.t += l.dt
	l.i++

	return torques, nil
}

func validatePlan(p gait.Plan) error {
	switch {
	case len(p.StepLocations) != robot.NumJoints,
		len(p.PrevStepLocations) != robot.NumJoints,
		len(p.PRef) != 3,
		len(p.RPYRef) != 3,
		len(p.ActiveFeet) != robot.NumLegs:
		return fmt.Errorf("%w: malformed plan widths", robot.ErrPlanner)
	case p.Phase < 0 || p.Phase >= 1:
		return fmt.Errorf("%w: phase %v out of [0,1)", robot.ErrPlanner, p.Phase)
	case p.StepPhase < 0 || p.StepPhase > 1:
		return fmt.Errorf("%w: step phase %v out of [0,1]", robot.ErrPlanner, p.StepPhase)
	}
	for _, m := range p.ActiveFeet {
		if m < 0 || m > 1 {
			return fmt.Errorf("%w: active feet mask %v out of [0,1]", robot.ErrPlanner, m)
		}
	}
	return nil
}

func validateSwing(o swing.Output) error {
	if len(o.Torques) != robot.NumJoints || len(o.Forces) != robot.NumJoints ||
		len(o.Trajectory) != robot.NumJoints || len(o.FootPositions) != robot.NumJoints {
		return fmt.Errorf("malformed swing output widths")
	}
	return nil
}

// FlushLog exports every recorded channel, trimmed to the ticks actually
// written. The persistence format belongs to the caller.
func (l *Loop) FlushLog() map[string][][]float64 {
	return l.rec.Export()
}
