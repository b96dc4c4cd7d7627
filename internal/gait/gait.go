// Package gait plans foot step targets, the reference body trajectory
// and the stance/swing schedule.
package gait

import (
	"fmt"
	"math"

	"quadloop/internal/config"
	"quadloop/internal/kinematics"
	"quadloop/internal/robot"
)

// Plan is one tick of planner output. Phase is the position within the
// full gait cycle in [0,1); StepPhase rises 0 to 1 and falls back to 0
// over each step.
type Plan struct {
	StepLocations     robot.Vec // target foot positions, body frame (12)
	PrevStepLocations robot.Vec // previous step targets (12)
	PRef              robot.Vec // desired body position (3)
	RPYRef            robot.Vec // desired body orientation (3)
	ActiveFeet        robot.Vec // stance indicator per leg (4)
	Phase             float64
	StepPhase         float64
}

// StandingPlanner holds all four feet in stance at the neutral pose. The
// reference position is latched from the first state it sees.
type StandingPlanner struct {
	latched bool
	origin  robot.Vec
	yaw     float64
}

func NewStanding() *StandingPlanner { return &StandingPlanner{} }

func (p *StandingPlanner) Update(st robot.State, contacts robot.Contacts, t float64,
	rc config.RobotConfig, gc config.GaitConfig) (Plan, error) {

	if !p.latched {
		p.origin = robot.Vec{st.Pos[0], st.Pos[1], rc.StandHeight}
		p.yaw = robot.QuatToEuler(st.Quat)[2]
		p.latched = true
	}

	feet := kinematics.NeutralStance(rc)
	return Plan{
		StepLocations:     feet,
		PrevStepLocations: feet.Clone(),
		PRef:              p.origin.Clone(),
		RPYRef:            robot.Vec{0, 0, p.yaw},
		ActiveFeet:        robot.Vec{1, 1, 1, 1},
		Phase:             0,
		StepPhase:         0,
	}, nil
}

// TrotPlanner alternates the two diagonal leg pairs. Pair A is FR+BL,
// pair B is FL+BR; each pair swings for half the gait period.
type TrotPlanner struct {
	latched  bool
	origin   robot.Vec
	yaw      float64
	lastHalf int
	cur      robot.Vec
	prev     robot.Vec
}

func NewTrot() *TrotPlanner { return &TrotPlanner{lastHalf: -1} }

func (p *TrotPlanner) Update(st robot.State, contacts robot.Contacts, t float64,
	rc config.RobotConfig, gc config.GaitConfig) (Plan, error) {

	if gc.Period <= 0 {
		return Plan{}, fmt.Errorf("%w: trot period %v", robot.ErrPlanner, gc.Period)
	}

	if !p.latched {
		p.origin = robot.Vec{st.Pos[0], st.Pos[1], rc.StandHeight}
		p.yaw = robot.QuatToEuler(st.Quat)[2]
		p.cur = kinematics.NeutralStance(rc)
		p.prev = p.cur.Clone()
		p.latched = true
	}

	phase := math.Mod(t, gc.Period) / gc.Period
	half := 0
	if phase >= 0.5 {
		half = 1
	}

	// New step: retarget the pair about to swing.
	if half != p.lastHalf {
		p.prev = p.cur.Clone()
		p.cur = p.stepTargets(st, rc, gc, half)
		p.lastHalf = half
	}

	// Triangle wave over the half cycle: 0 at touchdown and liftoff,
	// 1 at mid swing.
	h := math.Mod(phase*2, 1)
	stepPhase := 1 - math.Abs(2*h-1)

	// The retargeted pair is airborne; its diagonal counterpart carries
	// the body.
	active := robot.Vec{0, 1, 1, 0}
	if half == 0 {
		active = robot.Vec{1, 0, 0, 1}
	}

	pRef := robot.Vec{
		p.origin[0] + gc.VelocityX*t,
		p.origin[1] + gc.VelocityY*t,
		rc.StandHeight,
	}

	return Plan{
		StepLocations:     p.cur.Clone(),
		PrevStepLocations: p.prev.Clone(),
		PRef:              pRef,
		RPYRef:            robot.Vec{0, 0, p.yaw},
		ActiveFeet:        active,
		Phase:             phase,
		StepPhase:         stepPhase,
	}, nil
}

// stepTargets places the swinging pair ahead of its neutral position by
// half a stance period of travel, corrected by the velocity error.
func (p *TrotPlanner) stepTargets(st robot.State, rc config.RobotConfig,
	gc config.GaitConfig, half int) robot.Vec {

	targets := p.cur.Clone()
	neutral := kinematics.NeutralStance(rc)

	swingLegs := []int{0, 3} // pair A swings during half 1
	if half == 0 {
		swingLegs = []int{1, 2}
	}

	dx := gc.VelocityX*gc.Period/4 + gc.StepGain*(st.Vel[0]-gc.VelocityX)
	dy := gc.VelocityY*gc.Period/4 + gc.StepGain*(st.Vel[1]-gc.VelocityY)

	for _, leg := range swingLegs {
		targets[leg*3] = neutral[leg*3] + dx
		targets[leg*3+1] = neutral[leg*3+1] + dy
		targets[leg*3+2] = -rc.StandHeight
	}
	return targets
}
