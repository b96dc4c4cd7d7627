// Package estimator produces the per-tick robot state and contact
// estimates from raw sensor snapshots.
package estimator

import (
	"fmt"

	"quadloop/internal/robot"
)

// StateEstimator trusts the plant's ground-truth channels. A hardware
// build would fuse IMU and encoders here instead; the loop only sees
// the State contract either way.
type StateEstimator struct{}

func NewStateEstimator() *StateEstimator { return &StateEstimator{} }

func (e *StateEstimator) Update(raw robot.SensorData) (robot.State, error) {
	st := robot.State{
		Pos:    raw.BodyPos.Clone(),
		Vel:    raw.BodyVel.Clone(),
		Quat:   raw.Quat.Clone(),
		Omega:  raw.Omega.Clone(),
		Joints: raw.JointPos.Clone(),
	}
	if !st.Valid() {
		return robot.State{}, fmt.Errorf("%w: malformed sensor snapshot", robot.ErrEstimation)
	}
	return st, nil
}

// ContactEstimator thresholds the vertical foot force sensors.
type ContactEstimator struct {
	threshold float64 // newtons
}

func NewContactEstimator(thresholdN float64) *ContactEstimator {
	return &ContactEstimator{threshold: thresholdN}
}

func (e *ContactEstimator) Update(raw robot.SensorData) (robot.Contacts, error) {
	if len(raw.FootForces) != robot.NumLegs || !raw.FootForces.IsFinite() {
		return nil, fmt.Errorf("%w: foot force sensors", robot.ErrEstimation)
	}
	contacts := make(robot.Contacts, robot.NumLegs)
	for i, f := range raw.FootForces {
		if f > e.threshold {
			contacts[i] = 1
		}
	}
	return contacts, nil
}
