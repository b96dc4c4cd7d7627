// Package stance solves for ground reaction forces that make the stance
// legs track the reference body trajectory.
package stance

import (
	"fmt"

	"quadloop/internal/config"
	"quadloop/internal/kinematics"
	"quadloop/internal/robot"
)

// Output is one tick of balance controller results.
type Output struct {
	Torques    robot.Vec // joint torques (12)
	FootForces robot.Vec // world-frame ground reaction forces (12)
	RefWrench  robot.Vec // desired body force + moment (6)
}

// BalanceController computes a desired body wrench with a PD law and
// distributes it over the stance feet, respecting friction and force
// limits. The distribution is closed form rather than a QP solve, with
// the same contract, including infeasibility reporting.
type BalanceController struct{}

func NewBalance() *BalanceController { return &BalanceController{} }

// Update distributes the reference wrench over the stance feet given by
// activeFeet. feetLocations are world-frame lever arms from the body
// center. prevForces is last tick's solution, used only to smooth the
// new one.
func (c *BalanceController) Update(st robot.State, feetLocations, activeFeet,
	pRef, rpyRef, prevForces robot.Vec, rc config.RobotConfig,
	fc config.ForceConfig) (Output, error) {

	wrench := referenceWrench(st, pRef, rpyRef, rc, fc)

	sumW := 0.0
	for _, w := range activeFeet {
		sumW += w
	}
	if sumW <= 0 {
		return Output{}, fmt.Errorf("%w: no stance feet", robot.ErrInfeasible)
	}
	if wrench[2] < 0 {
		return Output{}, fmt.Errorf("%w: downward support force %.1fN requested", robot.ErrInfeasible, wrench[2])
	}
	if wrench[2] > sumW*fc.MaxForce {
		return Output{}, fmt.Errorf("%w: support force %.1fN exceeds limit %.1fN",
			robot.ErrInfeasible, wrench[2], sumW*fc.MaxForce)
	}

	forces := distribute(wrench, feetLocations, activeFeet, sumW, fc)

	// Continuity with the previous solve; the warm-start input is a
	// smoothing reference, not a hard constraint.
	const blend = 0.2
	if len(prevForces) == robot.NumJoints {
		for i := range forces {
			forces[i] = (1-blend)*forces[i] + blend*prevForces[i]
		}
	}

	torques := jointTorques(st, forces, activeFeet, rc)

	return Output{Torques: torques, FootForces: forces, RefWrench: wrench}, nil
}

func referenceWrench(st robot.State, pRef, rpyRef robot.Vec,
	rc config.RobotConfig, fc config.ForceConfig) robot.Vec {

	rpy := robot.QuatToEuler(st.Quat)

	w := make(robot.Vec, 6)
	for i := 0; i < 3; i++ {
		w[i] = rc.Mass * (fc.KpPos*(pRef[i]-st.Pos[i]) - fc.KdPos*st.Vel[i])
		w[3+i] = fc.KpRot*(rpyRef[i]-rpy[i]) - fc.KdRot*st.Omega[i]
	}
	w[2] += rc.Mass * config.Gravity
	return w
}

// distribute splits the wrench into per-foot forces: the net force by
// stance weight, the roll/pitch moments by differential vertical forces,
// the yaw moment by tangential forces.
func distribute(wrench, feet, active robot.Vec, sumW float64, fc config.ForceConfig) robot.Vec {
	forces := make(robot.Vec, robot.NumJoints)

	for leg := 0; leg < robot.NumLegs; leg++ {
		share := active[leg] / sumW
		for axis := 0; axis < 3; axis++ {
			forces[leg*3+axis] = share * wrench[axis]
		}
	}

	// Residual moment after the even split.
	var m [3]float64
	copy(m[:], wrench[3:])
	for leg := 0; leg < robot.NumLegs; leg++ {
		x, y, z := feet[leg*3], feet[leg*3+1], feet[leg*3+2]
		fx, fy, fz := forces[leg*3], forces[leg*3+1], forces[leg*3+2]
		m[0] -= y*fz - z*fy
		m[1] -= z*fx - x*fz
		m[2] -= x*fy - y*fx
	}

	var sy2, sx2, sr2 float64
	for leg := 0; leg < robot.NumLegs; leg++ {
		x, y := feet[leg*3], feet[leg*3+1]
		w := active[leg]
		sy2 += w * y * y
		sx2 += w * x * x
		sr2 += w * (x*x + y*y)
	}

	for leg := 0; leg < robot.NumLegs; leg++ {
		x, y := feet[leg*3], feet[leg*3+1]
		w := active[leg]
		if sy2 > 0 {
			forces[leg*3+2] += w * y * m[0] / sy2
		}
		if sx2 > 0 {
			forces[leg*3+2] -= w * x * m[1] / sx2
		}
		if sr2 > 0 {
			forces[leg*3] -= w * y * m[2] / sr2
			forces[leg*3+1] += w * x * m[2] / sr2
		}
	}

	clampCone(forces, active, fc)
	return forces
}

// clampCone enforces unilateral contact, the per-foot force ceiling and
// the friction pyramid.
func clampCone(forces, active robot.Vec, fc config.ForceConfig) {
	for leg := 0; leg < robot.NumLegs; leg++ {
		if active[leg] <= 0 {
			forces[leg*3], forces[leg*3+1], forces[leg*3+2] = 0, 0, 0
			continue
		}
		fz := forces[leg*3+2]
		if fz < 0 {
			fz = 0
		}
		if fz > fc.MaxForce {
			fz = fc.MaxForce
		}
		forces[leg*3+2] = fz

		limit := fc.Friction * fz
		for axis := 0; axis < 2; axis++ {
			if forces[leg*3+axis] > limit {
				forces[leg*3+axis] = limit
			} else if forces[leg*3+axis] < -limit {
				forces[leg*3+axis] = -limit
			}
		}
	}
}

// jointTorques maps the ground reaction forces to actuator torques. The
// actuators must push against the ground, so the foot applies the
// negated reaction, rotated into the body frame.
func jointTorques(st robot.State, forces, active robot.Vec, rc config.RobotConfig) robot.Vec {
	qInv := robot.QuatConjugate(st.Quat)

	bodyForces := make(robot.Vec, robot.NumJoints)
	for leg := 0; leg < robot.NumLegs; leg++ {
		f := robot.QuatRotate(qInv, forces[leg*3:leg*3+3])
		bodyForces[leg*3] = -f[0]
		bodyForces[leg*3+1] = -f[1]
		bodyForces[leg*3+2] = -f[2]
	}

	tau := kinematics.JointTorques(rc, st.Joints, bodyForces)
	for i := range tau {
		if tau[i] > rc.MaxTorque {
			tau[i] = rc.MaxTorque
		} else if tau[i] < -rc.MaxTorque {
			tau[i] = -rc.MaxTorque
		}
	}
	return tau
}
