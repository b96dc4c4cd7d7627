// Package stats tracks running statistics over tick sequences.
package stats

import "math"

// RunningMax keeps the per-channel maximum of absolute value seen since
// construction. No window, no decay.
type RunningMax struct {
	max []float64
}

func NewRunningMax(width int) *RunningMax {
	return &RunningMax{max: make([]float64, width)}
}

func (r *RunningMax) Width() int { return len(r.max) }

// Update folds one sample vector in. O(width), no allocation.
func (r *RunningMax) Update(v []float64) {
	for i := range r.max {
		if a := math.Abs(v[i]); a > r.max[i] {
			r.max[i] = a
		}
	}
}

// Current returns a snapshot of the running maxima.
func (r *RunningMax) Current() []float64 {
	c := make([]float64, len(r.max))
	copy(c, r.max)
	return c
}

func (r *RunningMax) Reset() {
	for i := range r.max {
		r.max[i] = 0
	}
}
