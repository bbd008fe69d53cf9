package envelope

import "math"

// Progress returns the normalized position of the run in [0, 1].
//
// Attack, decay and release contribute their configured durations as
// weights. Sustain has no width: progress freezes at the end of decay (or
// attack for ASR) while the note is held and resumes on release.
func (g *Generator) Progress() float64 {
	if g.phase == PhaseInactive {
		return 0
	}

	var total, position float64

	switch g.topology {
	case TopologyADSR:
		total = g.attackTime + g.decayTime + g.releaseTime
		switch g.phase {
		case PhaseAttack:
			position = g.elapsed
		case PhaseDecay:
			position = g.attackTime + g.elapsed
		case PhaseSustain:
			position = g.attackTime + g.decayTime
		case PhaseRelease:
			position = g.attackTime + g.decayTime + g.elapsed
		}
	case TopologyASR:
		total = g.attackTime + g.releaseTime
		switch g.phase {
		case PhaseAttack:
			position = g.elapsed
		case PhaseSustain:
			position = g.attackTime
		case PhaseRelease:
			position = g.attackTime + g.elapsed
		}
	case TopologyAD:
		total = g.attackTime + g.decayTime
		switch g.phase {
		case PhaseAttack:
			position = g.elapsed
		case PhaseDecay:
			position = g.attackTime + g.elapsed
		}
	default:
		return 0
	}

	if total <= 0 {
		return 0
	}

	return math.Min(position/total, 1)
}

// Duration returns the wall-clock time the run has consumed so far.
//
// Sustain has no intrinsic length, so the caller supplies sustainHint, the
// time the note has been (or will be) held. AD envelopes report their fixed
// attack plus decay length. Inactive envelopes report 0.
func (g *Generator) Duration(sustainHint float64) float64 {
	if g.phase == PhaseInactive {
		return 0
	}

	switch g.topology {
	case TopologyADSR:
		switch g.phase {
		case PhaseAttack:
			return g.elapsed
		case PhaseDecay:
			return g.attackTime + g.elapsed
		case PhaseSustain:
			return g.attackTime + g.decayTime + sustainHint
		case PhaseRelease:
			return g.attackTime + g.decayTime + sustainHint + g.elapsed
		}
	case TopologyASR:
		switch g.phase {
		case PhaseAttack:
			return g.elapsed
		case PhaseSustain:
			return g.attackTime + sustainHint
		case PhaseRelease:
			return g.attackTime + sustainHint + g.elapsed
		}
	case TopologyAD:
		return g.attackTime + g.decayTime
	}

	return 0
}

// TotalTime returns the length of a complete run holding sustain for
// sustainHint seconds.
func (g *Generator) TotalTime(sustainHint float64) float64 {
	switch g.topology {
	case TopologyADSR:
		return g.attackTime + g.decayTime + sustainHint + g.releaseTime
	case TopologyASR:
		return g.attackTime + sustainHint + g.releaseTime
	case TopologyAD:
		return g.attackTime + g.decayTime
	default:
		return 0
	}
}
