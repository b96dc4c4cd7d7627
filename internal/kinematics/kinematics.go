// Package kinematics maps joint configurations to foot positions. All
// functions are pure.
package kinematics

import (
	"math"

	"quadloop/internal/config"
	"quadloop/internal/robot"
)

// HipOffset returns the hip position of a leg relative to the body
// center, in the body frame. Legs: 0 FR, 1 FL, 2 BR, 3 BL.
func HipOffset(cfg config.RobotConfig, leg int) robot.Vec {
	x := cfg.BodyLength / 2
	if leg >= 2 {
		x = -x
	}
	y := cfg.BodyWidth / 2
	if leg == 0 || leg == 2 {
		y = -y
	}
	return robot.Vec{x, y, 0}
}

// LegForward computes one foot position relative to the body center, in
// the body frame. Joint order per leg: abduction (about x), hip (about
// y), knee (about y, relative to the upper leg). At zero angles the leg
// hangs straight down.
func LegForward(cfg config.RobotConfig, leg int, q robot.Vec) robot.Vec {
	ab, hip, knee := q[0], q[1], q[2]

	// Planar chain in the leg's x-z plane.
	x := -cfg.UpperLeg*math.Sin(hip) - cfg.LowerLeg*math.Sin(hip+knee)
	z := -cfg.UpperLeg*math.Cos(hip) - cfg.LowerLeg*math.Cos(hip+knee)

	// Abduction rolls the plane about the body x axis.
	y := -z * math.Sin(ab)
	z = z * math.Cos(ab)

	off := HipOffset(cfg, leg)
	return robot.Vec{off[0] + x, off[1] + y, off[2] + z}
}

// Forward computes all four foot positions relative to the body center,
// rotated into the world frame. These are the lever arms the stance
// controller needs.
func Forward(cfg config.RobotConfig, joints, quat robot.Vec) robot.Vec {
	feet := make(robot.Vec, robot.NumJoints)
	for leg := 0; leg < robot.NumLegs; leg++ {
		q := joints[leg*robot.JointsPerLeg : (leg+1)*robot.JointsPerLeg]
		p := robot.QuatRotate(quat, LegForward(cfg, leg, q))
		copy(feet[leg*3:], p)
	}
	return feet
}

// NeutralStance returns the foot positions of a square stand at the
// configured height, body frame, one 3-vector per leg.
func NeutralStance(cfg config.RobotConfig) robot.Vec {
	feet := make(robot.Vec, robot.NumJoints)
	for leg := 0; leg < robot.NumLegs; leg++ {
		off := HipOffset(cfg, leg)
		feet[leg*3] = off[0]
		feet[leg*3+1] = off[1]
		feet[leg*3+2] = -cfg.StandHeight
	}
	return feet
}
