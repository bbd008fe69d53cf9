package envelope

import (
	"log/slog"
	"math"
)

// ScaleCurve maps a raw curve control value to the exponent applied to
// normalized phase time.
//
//   - input > 0: 1 + input (slow start, concave)
//   - input == 0: 1 (linear)
//   - input < 0: 1 / (|input| + 1) (fast start, convex)
//
// The result is strictly positive and continuous at the linear point.
func ScaleCurve(input float64) float64 {
	switch {
	case input > 0:
		return 1 + input
	case input == 0:
		return 1
	default:
		return 1 / (math.Abs(input) + 1)
	}
}

// UnscaleCurve is the inverse of ScaleCurve for positive exponents.
func UnscaleCurve(exponent float64) float64 {
	switch {
	case exponent > 1:
		return exponent - 1
	case exponent == 1:
		return 0
	case exponent > 0:
		return 1 - 1/exponent
	default:
		return math.Inf(-1)
	}
}

// AmplitudeAt evaluates the amplitude formula of phase at normalizedTime in
// [0, 1] using the current parameters, without touching the run state.
// Visualizers use it to pre-render curves independently of playback.
func (g *Generator) AmplitudeAt(phase Phase, normalizedTime float64) float64 {
	if !g.topology.valid() {
		g.logger.Warn("envelope: cannot calculate amplitude, invalid topology",
			slog.String("topology", g.topology.String()))
		return 0
	}

	switch phase {
	case PhaseInactive:
		return 0
	case PhaseAttack:
		return g.attackShape(normalizedTime)
	case PhaseDecay:
		return g.decayShape(normalizedTime)
	case PhaseSustain:
		return g.sustainLevel
	case PhaseRelease:
		return g.releaseShape(normalizedTime)
	default:
		g.logger.Warn("envelope: cannot calculate amplitude, invalid phase",
			slog.String("phase", phase.String()))
		return 0
	}
}

// attackShape rises to full scale, or to the sustain level for ASR.
func (g *Generator) attackShape(t float64) float64 {
	if g.topology == TopologyASR {
		return math.Pow(t, g.attackCurve) * g.sustainLevel
	}
	return math.Pow(t, g.attackCurve)
}

// decayShape falls from full scale to the sustain level, or to silence
// for AD.
func (g *Generator) decayShape(t float64) float64 {
	if g.topology == TopologyADSR {
		return 1 - math.Pow(t, g.decayCurve)*(1-g.sustainLevel)
	}
	return 1 - math.Pow(t, g.decayCurve)
}

// releaseShape falls from the captured sustain level to silence.
func (g *Generator) releaseShape(t float64) float64 {
	return g.sustainLevel * math.Pow(1-t, g.releaseCurve)
}
