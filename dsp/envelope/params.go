package envelope

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-envelope/dsp/core"
)

const (
	// Parameter validation ranges
	minCurve = -10.0
	maxCurve = 10.0
)

var (
	// ErrInvalidTopology is returned for unknown topology names or values.
	ErrInvalidTopology = errors.New("envelope: invalid topology")
	// ErrInvalidTime is returned for non-positive or non-finite durations.
	ErrInvalidTime = errors.New("envelope: invalid phase time")
	// ErrInvalidSustain is returned for sustain levels outside [0, 1].
	ErrInvalidSustain = errors.New("envelope: invalid sustain level")
	// ErrInvalidCurve is returned for curve values outside [-10, 10].
	ErrInvalidCurve = errors.New("envelope: invalid curve")
)

// Params is a value snapshot of every user parameter of a Generator.
// Curve fields hold raw curve values (0 = linear), not scaled exponents.
//
// The generator itself never range-checks its inputs; Validate is offered
// to hosts that accept parameters from users or command lines.
type Params struct {
	Topology     Topology
	AttackTime   float64
	DecayTime    float64
	ReleaseTime  float64
	AttackCurve  float64
	DecayCurve   float64
	ReleaseCurve float64
	SustainLevel float64
	Looping      bool
}

// DefaultParams returns the parameters of a freshly constructed Generator.
func DefaultParams() Params {
	return Params{
		Topology:     TopologyADSR,
		AttackTime:   defaultAttackTime,
		DecayTime:    defaultDecayTime,
		ReleaseTime:  defaultReleaseTime,
		SustainLevel: defaultSustainLevel,
	}
}

// Validate reports the first parameter that a host should reject.
func (p Params) Validate() error {
	if !p.Topology.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTopology, int(p.Topology))
	}

	times := []struct {
		name  string
		value float64
	}{
		{"attack", p.AttackTime},
		{"decay", p.DecayTime},
		{"release", p.ReleaseTime},
	}
	for _, tm := range times {
		if tm.value <= 0 || !core.IsFinite(tm.value) {
			return fmt.Errorf("%w: %s must be positive and finite: %f", ErrInvalidTime, tm.name, tm.value)
		}
	}

	if p.SustainLevel < 0 || p.SustainLevel > 1 || !core.IsFinite(p.SustainLevel) {
		return fmt.Errorf("%w: must be in [0, 1]: %f", ErrInvalidSustain, p.SustainLevel)
	}

	curves := []struct {
		name  string
		value float64
	}{
		{"attack", p.AttackCurve},
		{"decay", p.DecayCurve},
		{"release", p.ReleaseCurve},
	}
	for _, c := range curves {
		if c.value < minCurve || c.value > maxCurve || !core.IsFinite(c.value) {
			return fmt.Errorf("%w: %s curve must be in [%g, %g]: %f", ErrInvalidCurve, c.name, minCurve, maxCurve, c.value)
		}
	}

	return nil
}

// Params returns the generator's current parameters. The sustain level
// reflects any amplitude captured by Release.
func (g *Generator) Params() Params {
	return Params{
		Topology:     g.topology,
		AttackTime:   g.attackTime,
		DecayTime:    g.decayTime,
		ReleaseTime:  g.releaseTime,
		AttackCurve:  UnscaleCurve(g.attackCurve),
		DecayCurve:   UnscaleCurve(g.decayCurve),
		ReleaseCurve: UnscaleCurve(g.releaseCurve),
		SustainLevel: g.sustainLevel,
		Looping:      g.looping,
	}
}

// Apply copies p into the generator without touching the run state.
func (g *Generator) Apply(p Params) {
	g.SetTopology(p.Topology)
	g.SetAttackTime(p.AttackTime)
	g.SetDecayTime(p.DecayTime)
	g.SetReleaseTime(p.ReleaseTime)
	g.SetAttackCurve(p.AttackCurve)
	g.SetDecayCurve(p.DecayCurve)
	g.SetReleaseCurve(p.ReleaseCurve)
	g.SetSustainLevel(p.SustainLevel)
	g.SetLooping(p.Looping)
}

// Option configures a Generator at construction.
type Option func(*Generator)

// WithParams applies a complete parameter set.
func WithParams(p Params) Option {
	return func(g *Generator) {
		g.Apply(p)
	}
}

// WithTopology sets the topology.
func WithTopology(t Topology) Option {
	return func(g *Generator) {
		g.SetTopology(t)
	}
}

// WithAttack sets the attack time in seconds and its raw curve value.
// Non-positive or non-finite times are ignored.
func WithAttack(seconds, curve float64) Option {
	return func(g *Generator) {
		if seconds > 0 && core.IsFinite(seconds) {
			g.SetAttackTime(seconds)
		}
		g.SetAttackCurve(curve)
	}
}

// WithDecay sets the decay time in seconds and its raw curve value.
// Non-positive or non-finite times are ignored.
func WithDecay(seconds, curve float64) Option {
	return func(g *Generator) {
		if seconds > 0 && core.IsFinite(seconds) {
			g.SetDecayTime(seconds)
		}
		g.SetDecayCurve(curve)
	}
}

// WithRelease sets the release time in seconds and its raw curve value.
// Non-positive or non-finite times are ignored.
func WithRelease(seconds, curve float64) Option {
	return func(g *Generator) {
		if seconds > 0 && core.IsFinite(seconds) {
			g.SetReleaseTime(seconds)
		}
		g.SetReleaseCurve(curve)
	}
}

// WithSustain sets the sustain level, clamped to [0, 1].
func WithSustain(level float64) Option {
	return func(g *Generator) {
		if core.IsFinite(level) {
			g.SetSustainLevel(core.Clamp(level, 0, 1))
		}
	}
}

// WithLooping enables or disables looping.
func WithLooping(looping bool) Option {
	return func(g *Generator) {
		g.SetLooping(looping)
	}
}

// WithLogger sets the logger used for diagnostics. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}
