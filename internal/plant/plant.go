// Package plant is a soft-contact test stand for the control loop. It
// is not a physics engine; it exists so the loop can run end to end
// without a simulator attached.
package plant

import (
	"math"

	"quadloop/internal/config"
	"quadloop/internal/kinematics"
	"quadloop/internal/robot"
)

const (
	jointInertia = 0.05
	jointDamping = 1.5
	jointSpring  = 40.0

	// Nominal ground penetration at rest; sets the contact stiffness so
	// a standing robot reads one quarter of its weight per foot.
	restPenetration = 0.002
)

type Plant struct {
	cfg config.RobotConfig
	dt  float64

	pos      robot.Vec
	vel      robot.Vec
	quat     robot.Vec
	omega    robot.Vec
	joints   robot.Vec
	jointVel robot.Vec

	home      robot.Vec // joint pose the virtual springs pull toward
	stiffness float64   // ground contact stiffness
}

// New places the robot in a settled stand: knees bent so the feet sit on
// the ground at the configured height.
func New(rc config.RobotConfig, dt float64) *Plant {
	bend := math.Acos(rc.StandHeight / (rc.UpperLeg + rc.LowerLeg))

	home := make(robot.Vec, robot.NumJoints)
	for leg := 0; leg < robot.NumLegs; leg++ {
		home[leg*robot.JointsPerLeg+1] = bend
		home[leg*robot.JointsPerLeg+2] = -2 * bend
	}

	weightShare := rc.Mass * config.Gravity / robot.NumLegs

	return &Plant{
		cfg:       rc,
		dt:        dt,
		pos:       robot.Vec{0, 0, rc.StandHeight - restPenetration},
		vel:       robot.Vec{0, 0, 0},
		quat:      robot.Vec{1, 0, 0, 0},
		omega:     robot.Vec{0, 0, 0},
		joints:    home.Clone(),
		jointVel:  make(robot.Vec, robot.NumJoints),
		home:      home,
		stiffness: weightShare / restPenetration,
	}
}

// Step applies one tick of joint torques and returns the next sensor
// snapshot. Joints are damped second-order systems sprung to the stand
// pose; foot forces come from ground penetration of the kinematic feet.
func (p *Plant) Step(torques robot.Vec) robot.SensorData {
	for j := 0; j < robot.NumJoints; j++ {
		tau := 0.0
		if j < len(torques) {
			tau = torques[j]
		}
		acc := (tau - jointSpring*(p.joints[j]-p.home[j]) - jointDamping*p.jointVel[j]) / jointInertia
		p.jointVel[j] += acc * p.dt
		p.joints[j] += p.jointVel[j] * p.dt
	}

	feet := kinematics.Forward(p.cfg, p.joints, p.quat)
	forces := make(robot.Vec, robot.NumLegs)
	for leg := 0; leg < robot.NumLegs; leg++ {
		footZ := p.pos[2] + feet[leg*3+2]
		if footZ < 0 {
			forces[leg] = -footZ * p.stiffness
		}
	}

	return robot.SensorData{
		BodyPos:    p.pos.Clone(),
		BodyVel:    p.vel.Clone(),
		Quat:       p.quat.Clone(),
		Omega:      p.omega.Clone(),
		JointPos:   p.joints.Clone(),
		JointVel:   p.jointVel.Clone(),
		FootForces: forces,
	}
}
