package envelope

import (
	"log/slog"
	"math"
)

const (
	// Default envelope parameters
	defaultAttackTime   = 1.0
	defaultDecayTime    = 1.0
	defaultReleaseTime  = 1.0
	defaultSustainLevel = 0.8
	defaultCurve        = 1.0

	// transitionEpsilon absorbs floating-point step error when deciding
	// whether a timed phase has completed.
	transitionEpsilon = 1e-4
)

// Generator is an attack/decay/sustain/release envelope state machine.
//
// The generator is advanced by the caller with [Generator.Advance] and
// produces one amplitude per call. Attack, decay and release are timed
// phases shaped by a power curve; sustain holds a constant level until
// [Generator.Release] is called.
//
// The sustain level doubles as the release start point: releasing an ADSR
// or ASR envelope captures the current amplitude into the sustain level so
// that an early release (during attack or decay) fades out from wherever
// the envelope actually was.
//
// This implementation is single-threaded and not thread-safe.
type Generator struct {
	// User-configurable parameters
	topology     Topology
	attackTime   float64
	decayTime    float64
	releaseTime  float64
	attackCurve  float64 // Scaled exponent, see ScaleCurve
	decayCurve   float64 // Scaled exponent, see ScaleCurve
	releaseCurve float64 // Scaled exponent, see ScaleCurve
	sustainLevel float64
	looping      bool

	// Run state
	phase     Phase
	elapsed   float64
	amplitude float64

	logger *slog.Logger
}

// New creates an inactive envelope generator.
//
// Default parameters:
//   - Topology: ADSR
//   - Attack, Decay, Release: 1 s, linear
//   - Sustain: 0.8
//   - Looping: off
func New(opts ...Option) *Generator {
	g := &Generator{
		topology:     TopologyADSR,
		attackTime:   defaultAttackTime,
		decayTime:    defaultDecayTime,
		releaseTime:  defaultReleaseTime,
		attackCurve:  defaultCurve,
		decayCurve:   defaultCurve,
		releaseCurve: defaultCurve,
		sustainLevel: defaultSustainLevel,
		phase:        PhaseInactive,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// SetTopology selects the phase sequence. Changing the topology of a running
// envelope takes effect on the next Advance.
func (g *Generator) SetTopology(t Topology) { g.topology = t }

// SetAttackTime sets the attack duration in seconds.
func (g *Generator) SetAttackTime(seconds float64) { g.attackTime = seconds }

// SetDecayTime sets the decay duration in seconds.
func (g *Generator) SetDecayTime(seconds float64) { g.decayTime = seconds }

// SetReleaseTime sets the release duration in seconds.
func (g *Generator) SetReleaseTime(seconds float64) { g.releaseTime = seconds }

// SetAttackCurve sets the attack shape from a raw curve value, typically
// in [-10, 10] with 0 meaning linear.
func (g *Generator) SetAttackCurve(curve float64) { g.attackCurve = ScaleCurve(curve) }

// SetDecayCurve sets the decay shape from a raw curve value.
func (g *Generator) SetDecayCurve(curve float64) { g.decayCurve = ScaleCurve(curve) }

// SetReleaseCurve sets the release shape from a raw curve value.
func (g *Generator) SetReleaseCurve(curve float64) { g.releaseCurve = ScaleCurve(curve) }

// SetSustainLevel sets the sustain level in [0, 1].
func (g *Generator) SetSustainLevel(level float64) { g.sustainLevel = level }

// SetLooping makes a finished run restart from attack instead of stopping.
func (g *Generator) SetLooping(looping bool) { g.looping = looping }

// Topology returns the current topology.
func (g *Generator) Topology() Topology { return g.topology }

// AttackTime returns the attack duration in seconds.
func (g *Generator) AttackTime() float64 { return g.attackTime }

// DecayTime returns the decay duration in seconds.
func (g *Generator) DecayTime() float64 { return g.decayTime }

// ReleaseTime returns the release duration in seconds.
func (g *Generator) ReleaseTime() float64 { return g.releaseTime }

// AttackCurve returns the scaled attack exponent.
func (g *Generator) AttackCurve() float64 { return g.attackCurve }

// DecayCurve returns the scaled decay exponent.
func (g *Generator) DecayCurve() float64 { return g.decayCurve }

// ReleaseCurve returns the scaled release exponent.
func (g *Generator) ReleaseCurve() float64 { return g.releaseCurve }

// SustainLevel returns the sustain level. After a release it holds the
// amplitude captured at the moment of release.
func (g *Generator) SustainLevel() float64 { return g.sustainLevel }

// Looping reports whether the envelope restarts after finishing.
func (g *Generator) Looping() bool { return g.looping }

// Phase returns the current phase.
func (g *Generator) Phase() Phase { return g.phase }

// Amplitude returns the amplitude computed by the last Advance.
func (g *Generator) Amplitude() float64 { return g.amplitude }

// Elapsed returns the seconds spent in the current phase.
func (g *Generator) Elapsed() float64 { return g.elapsed }

// Active reports whether the envelope is running.
func (g *Generator) Active() bool { return g.phase != PhaseInactive }

// Trigger starts the envelope from attack, restarting a run in progress.
// The amplitude is not blended with the previous run.
func (g *Generator) Trigger() {
	g.enter(PhaseAttack)
}

// Release moves an ADSR or ASR envelope into its release phase, capturing
// the current amplitude as the release start level.
//
// Release is a no-op when the envelope is already releasing, when it is
// inactive, and for AD envelopes, which always complete their run. An
// inactive release leaves the configured sustain level untouched.
func (g *Generator) Release() {
	if g.phase == PhaseRelease || g.phase == PhaseInactive {
		return
	}

	switch g.topology {
	case TopologyADSR, TopologyASR:
		g.sustainLevel = g.amplitude
		g.enter(PhaseRelease)
	case TopologyAD:
		// AD envelopes ignore release
	default:
		g.logger.Warn("envelope: release with invalid topology",
			slog.String("topology", g.topology.String()))
	}
}

// Reset stops the envelope immediately and silences it. Parameters are kept.
func (g *Generator) Reset() {
	g.phase = PhaseInactive
	g.elapsed = 0
	g.amplitude = 0
}

// Advance moves the envelope forward by deltaTime seconds and updates its
// amplitude. Negative and NaN deltas are treated as zero.
//
// At most one phase transition happens per call; time overshooting a phase
// boundary is discarded rather than carried into the next phase.
func (g *Generator) Advance(deltaTime float64) {
	switch g.phase {
	case PhaseInactive:
		g.amplitude = 0
		return
	case PhaseSustain:
		if !g.checkPhase() {
			return
		}
		g.amplitude = g.sustainLevel
		return
	}

	if !g.checkPhase() {
		return
	}

	if deltaTime > 0 {
		g.elapsed += deltaTime
	}

	duration := g.phaseDuration(g.phase)
	g.amplitude = g.AmplitudeAt(g.phase, normalizedTime(g.elapsed, duration))

	if g.elapsed >= duration || math.Abs(g.elapsed-duration) < transitionEpsilon {
		g.completePhase()
	}
}

// checkPhase verifies that the current phase belongs to the topology. A
// mismatch, such as a topology switched to AD while sustaining, ends the run.
func (g *Generator) checkPhase() bool {
	if g.topology.Uses(g.phase) {
		return true
	}

	g.logger.Warn("envelope: phase not valid for topology, stopping",
		slog.String("topology", g.topology.String()),
		slog.String("phase", g.phase.String()))
	g.Reset()

	return false
}

// completePhase performs the transition out of a finished timed phase.
func (g *Generator) completePhase() {
	switch {
	case g.phase == PhaseAttack && g.topology == TopologyASR:
		g.enter(PhaseSustain)
	case g.phase == PhaseAttack:
		g.enter(PhaseDecay)
	case g.phase == PhaseDecay && g.topology == TopologyADSR:
		g.enter(PhaseSustain)
	default:
		// Decay for AD, release for ADSR/ASR: end of the run
		g.finishRun()
	}
}

func (g *Generator) finishRun() {
	if g.looping {
		g.enter(PhaseAttack)
		return
	}
	g.Reset()
}

func (g *Generator) enter(p Phase) {
	g.phase = p
	g.elapsed = 0
}

// phaseDuration returns the configured length of a timed phase.
func (g *Generator) phaseDuration(p Phase) float64 {
	switch p {
	case PhaseAttack:
		return g.attackTime
	case PhaseDecay:
		return g.decayTime
	case PhaseRelease:
		return g.releaseTime
	default:
		return 0
	}
}

// normalizedTime maps elapsed seconds to [0, 1] within a phase. A phase
// without duration is complete immediately.
func normalizedTime(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return math.Min(elapsed/duration, 1)
}
