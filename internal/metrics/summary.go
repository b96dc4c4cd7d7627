// Package metrics condenses a flushed run log into a few scalar
// figures of merit.
package metrics

import (
	"fmt"
	"math"

	"quadloop/internal/analysis"
	"quadloop/internal/loop"
	"quadloop/internal/robot"
)

// Summary describes one completed run.
type Summary struct {
	Ticks         int
	MeanAbsTorque float64
	PeakTorque    float64
	PeakForce     float64
	// Fraction of the run each leg spent in contact.
	DutyFactors []float64
	// Dominant frequency of the first leg's contact signal, Hz. Zero
	// for a standing run.
	StrideFrequency float64
}

// Summarize reduces an exported log. Channels absent from the log are
// an error; the set is fixed at recording time.
func Summarize(log map[string][][]float64, dt float64) (Summary, error) {
	torques, ok := log[loop.ChanTorques]
	if !ok {
		return Summary{}, fmt.Errorf("metrics: log missing %s", loop.ChanTorques)
	}
	forces, ok := log[loop.ChanForces]
	if !ok {
		return Summary{}, fmt.Errorf("metrics: log missing %s", loop.ChanForces)
	}
	contacts, ok := log[loop.ChanContacts]
	if !ok {
		return Summary{}, fmt.Errorf("metrics: log missing %s", loop.ChanContacts)
	}
	if len(torques) == 0 || len(torques[0]) == 0 {
		return Summary{}, fmt.Errorf("metrics: empty log")
	}

	ticks := len(torques[0])
	s := Summary{Ticks: ticks, DutyFactors: make([]float64, robot.NumLegs)}

	sum, samples := 0.0, 0
	for _, row := range torques {
		for _, v := range row {
			a := math.Abs(v)
			sum += a
			samples++
			if a > s.PeakTorque {
				s.PeakTorque = a
			}
		}
	}
	s.MeanAbsTorque = sum / float64(samples)

	for _, row := range forces {
		for _, v := range row {
			if a := math.Abs(v); a > s.PeakForce {
				s.PeakForce = a
			}
		}
	}

	for leg := 0; leg < robot.NumLegs && leg < len(contacts); leg++ {
		loaded := 0
		for _, v := range contacts[leg] {
			if v > 0.5 {
				loaded++
			}
		}
		s.DutyFactors[leg] = float64(loaded) / float64(ticks)
	}

	// A leg that never leaves the ground has no stride to measure.
	if len(contacts) > 0 && s.DutyFactors[0] < 1 {
		freq, err := analysis.DominantFrequency(contacts[0], dt)
		if err == nil {
			s.StrideFrequency = freq
		}
	}

	return s, nil
}
