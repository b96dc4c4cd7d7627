package kinematics

import (
	"math"

	"quadloop/internal/config"
	"quadloop/internal/robot"
)

// LegJacobian returns the 3x3 Jacobian of one foot position with respect
// to the leg's joint angles (abduction, hip, knee), body frame. Column j
// is the foot velocity per unit joint rate of joint j.
func LegJacobian(cfg config.RobotConfig, q robot.Vec) [3][3]float64 {
	ab, hip, knee := q[0], q[1], q[2]
	l1, l2 := cfg.UpperLeg, cfg.LowerLeg

	s1, c1 := math.Sincos(hip)
	s12, c12 := math.Sincos(hip + knee)
	sa, ca := math.Sincos(ab)

	// Planar coordinates before the abduction roll.
	zp := -(l1*c1 + l2*c12)
	dzpHip := l1*s1 + l2*s12
	dzpKnee := l2 * s12

	var j [3][3]float64
	// abduction column
	j[0][0] = 0
	j[1][0] = -zp * ca
	j[2][0] = -zp * sa
	// hip column
	j[0][1] = -l1*c1 - l2*c12
	j[1][1] = -dzpHip * sa
	j[2][1] = dzpHip * ca
	// knee column
	j[0][2] = -l2 * c12
	j[1][2] = -dzpKnee * sa
	j[2][2] = dzpKnee * ca
	return j
}

// JointTorques maps per-foot forces (body frame, 12) to joint torques via
// the transposed leg Jacobians.
func JointTorques(cfg config.RobotConfig, joints, forces robot.Vec) robot.Vec {
	tau := make(robot.Vec, robot.NumJoints)
	for leg := 0; leg < robot.NumLegs; leg++ {
		q := joints[leg*robot.JointsPerLeg : (leg+1)*robot.JointsPerLeg]
		f := forces[leg*3 : leg*3+3]
		j := LegJacobian(cfg, q)
		for col := 0; col < 3; col++ {
			tau[leg*robot.JointsPerLeg+col] = j[0][col]*f[0] + j[1][col]*f[1] + j[2][col]*f[2]
		}
	}
	return tau
}
