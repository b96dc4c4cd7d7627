package robot

import "math"

// Leg and joint enumeration shared by every component. Legs are ordered
// front-right, front-left, back-right, back-left; each leg carries an
// abduction, hip and knee joint, in that order.
const (
	NumLegs      = 4
	JointsPerLeg = 3
	NumJoints    = NumLegs * JointsPerLeg
)

type Vec []float64

func (v Vec) Clone() Vec {
	c := make(Vec, len(v))
	copy(c, v)
	return c
}

func (v Vec) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vec) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// State is the fused body + joint estimate for one tick. It is replaced
// wholesale every tick; nothing mutates it in place.
type State struct {
	Pos    Vec // body position, world frame (3)
	Vel    Vec // body velocity, world frame (3)
	Quat   Vec // body orientation, unit quaternion wxyz (4)
	Omega  Vec // body angular velocity, body frame (3)
	Joints Vec // joint angles (NumJoints)
}

func (s State) Valid() bool {
	return len(s.Pos) == 3 && len(s.Vel) == 3 && len(s.Quat) == 4 &&
		len(s.Omega) == 3 && len(s.Joints) == NumJoints &&
		s.Pos.IsFinite() && s.Vel.IsFinite() && s.Quat.IsFinite() &&
		s.Omega.IsFinite() && s.Joints.IsFinite()
}

// Contacts holds one load-bearing indicator per leg in [0,1].
type Contacts = Vec

// SensorData is one raw snapshot from the plant or hardware bridge.
// Estimators are the only consumers.
type SensorData struct {
	BodyPos    Vec // (3)
	BodyVel    Vec // (3)
	Quat       Vec // (4)
	Omega      Vec // (3)
	JointPos   Vec // (NumJoints)
	JointVel   Vec // (NumJoints)
	FootForces Vec // vertical ground force per foot (NumLegs)
}
