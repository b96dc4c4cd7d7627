// Package swing generates trajectories and tracking torques for legs in
// flight.
package swing

import (
	"math"

	"quadloop/internal/config"
	"quadloop/internal/kinematics"
	"quadloop/internal/robot"
)

// Output is one tick of swing controller results, all width 12.
type Output struct {
	Torques       robot.Vec
	Forces        robot.Vec
	Trajectory    robot.Vec
	FootPositions robot.Vec
}

// PDController interpolates each swing foot from its previous step target
// to the next one with a sinusoidal lift, and tracks the trajectory with
// a PD law mapped to joint torques through the leg Jacobian.
type PDController struct {
	prevFeet robot.Vec // body-frame foot positions from the last call
}

func NewPD() *PDController { return &PDController{} }

func (c *PDController) Update(st robot.State, stepPhase float64, stepLocations,
	prevStepLocations, activeFeet robot.Vec, rc config.RobotConfig,
	sc config.SwingConfig) Output {

	out := Output{
		Torques:       make(robot.Vec, robot.NumJoints),
		Forces:        make(robot.Vec, robot.NumJoints),
		Trajectory:    make(robot.Vec, robot.NumJoints),
		FootPositions: make(robot.Vec, robot.NumJoints),
	}

	for leg := 0; leg < robot.NumLegs; leg++ {
		q := st.Joints[leg*robot.JointsPerLeg : (leg+1)*robot.JointsPerLeg]
		foot := kinematics.LegForward(rc, leg, q)
		copy(out.FootPositions[leg*3:], foot)

		for axis := 0; axis < 3; axis++ {
			i := leg*3 + axis
			out.Trajectory[i] = prevStepLocations[i] + stepPhase*(stepLocations[i]-prevStepLocations[i])
		}
		// Lift arc peaks at mid swing.
		out.Trajectory[leg*3+2] += sc.LiftHeight * math.Sin(math.Pi*stepPhase)
	}

	for leg := 0; leg < robot.NumLegs; leg++ {
		// Stance legs get no swing force; the blend would discard it
		// anyway for boolean masks, but fractional masks must not see
		// tracking forces fighting the ground.
		if activeFeet[leg] >= 1 {
			continue
		}
		for axis := 0; axis < 3; axis++ {
			i := leg*3 + axis
			f := sc.Kp * (out.Trajectory[i] - out.FootPositions[i])
			if c.prevFeet != nil {
				f -= sc.Kd * (out.FootPositions[i] - c.prevFeet[i])
			}
			out.Forces[i] = f
		}
	}

	out.Torques = kinematics.JointTorques(rc, st.Joints, out.Forces)
	clampVec(out.Torques, rc.MaxTorque)

	c.prevFeet = out.FootPositions.Clone()
	return out
}

// ZeroController produces no swing effort, only the foot positions.
// Useful for exercising the stance side alone.
type ZeroController struct{}

func NewZero() *ZeroController { return &ZeroController{} }

func (c *ZeroController) Update(st robot.State, stepPhase float64, stepLocations,
	prevStepLocations, activeFeet robot.Vec, rc config.RobotConfig,
	sc config.SwingConfig) Output {

	out := Output{
		Torques:       make(robot.Vec, robot.NumJoints),
		Forces:        make(robot.Vec, robot.NumJoints),
		Trajectory:    make(robot.Vec, robot.NumJoints),
		FootPositions: make(robot.Vec, robot.NumJoints),
	}
	for leg := 0; leg < robot.NumLegs; leg++ {
		q := st.Joints[leg*robot.JointsPerLeg : (leg+1)*robot.JointsPerLeg]
		copy(out.FootPositions[leg*3:], kinematics.LegForward(rc, leg, q))
	}
	return out
}

func clampVec(v robot.Vec, limit float64) {
	for i := range v {
		if v[i] > limit {
			v[i] = limit
		} else if v[i] < -limit {
			v[i] = -limit
		}
	}
}
