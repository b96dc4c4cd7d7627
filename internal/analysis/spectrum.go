// Package analysis extracts frequency content from logged channels,
// used to verify that a gait runs at its commanded period.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
)

func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		return data
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// Spectrum returns the magnitude spectrum of one channel row. The input
// is zero-padded to the next power of two; only the positive-frequency
// half is returned.
func Spectrum(row []float64) []float64 {
	n := 1
	for n < len(row) {
		n *= 2
	}
	padded := make([]complex128, n)
	for i, v := range row {
		padded[i] = complex(v, 0)
	}

	out := fft(padded)
	ps := make([]float64, len(out)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(out[i])
	}
	return ps
}

// DominantFrequency locates the strongest non-DC component, in Hz.
func DominantFrequency(row []float64, dt float64) (float64, error) {
	if len(row) < 4 {
		return 0, fmt.Errorf("analysis: need at least 4 samples, got %d", len(row))
	}
	if dt <= 0 {
		return 0, fmt.Errorf("analysis: non-positive dt %v", dt)
	}

	// Remove the mean so the DC bin does not swamp the gait frequency.
	mean := 0.0
	for _, v := range row {
		mean += v
	}
	mean /= float64(len(row))
	centered := make([]float64, len(row))
	for i, v := range row {
		centered[i] = v - mean
	}

	ps := Spectrum(centered)
	best, bestIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > best {
			best = ps[i]
			bestIdx = i
		}
	}

	n := 1
	for n < len(row) {
		n *= 2
	}
	return float64(bestIdx) / (float64(n) * dt), nil
}
