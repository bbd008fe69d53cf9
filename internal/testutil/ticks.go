package testutil

import "math/rand/v2"

// UniformTicks returns n identical time deltas.
func UniformTicks(delta float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = delta
	}
	return out
}

// JitteredTicks returns n time deltas spread uniformly in
// [mean-jitter, mean+jitter] with a fixed seed, never below zero.
// It models a host whose frame timing is irregular.
func JitteredTicks(seed uint64, mean, jitter float64, n int) []float64 {
	out := make([]float64, n)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range out {
		d := mean + (rng.Float64()*2-1)*jitter
		if d < 0 {
			d = 0
		}
		out[i] = d
	}
	return out
}

// Sum returns the total of deltas.
func Sum(deltas []float64) float64 {
	var s float64
	for _, d := range deltas {
		s += d
	}
	return s
}
