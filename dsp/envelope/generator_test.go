package envelope

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/cwbudde/algo-envelope/internal/testutil"
)

const eps = 1e-9

type snapshot struct {
	phase     Phase
	elapsed   float64
	amplitude float64
	sustain   float64
}

func snap(g *Generator) snapshot {
	return snapshot{g.Phase(), g.Elapsed(), g.Amplitude(), g.SustainLevel()}
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

// TestGeneratorDefaults verifies default parameter values.
func TestGeneratorDefaults(t *testing.T) {
	g := New()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"AttackTime", g.AttackTime(), defaultAttackTime},
		{"DecayTime", g.DecayTime(), defaultDecayTime},
		{"ReleaseTime", g.ReleaseTime(), defaultReleaseTime},
		{"AttackCurve", g.AttackCurve(), 1},
		{"DecayCurve", g.DecayCurve(), 1},
		{"ReleaseCurve", g.ReleaseCurve(), 1},
		{"SustainLevel", g.SustainLevel(), defaultSustainLevel},
		{"Amplitude", g.Amplitude(), 0},
		{"Elapsed", g.Elapsed(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %f, want %f", tt.name, tt.got, tt.want)
			}
		})
	}

	if g.Topology() != TopologyADSR {
		t.Errorf("Topology() = %v, want adsr", g.Topology())
	}
	if g.Phase() != PhaseInactive || g.Active() {
		t.Errorf("new generator phase = %v, want inactive", g.Phase())
	}
	if g.Looping() {
		t.Error("new generator should not loop")
	}
}

func TestSettersStoreValues(t *testing.T) {
	g := New()
	g.SetTopology(TopologyASR)
	g.SetAttackTime(0.1)
	g.SetDecayTime(0.2)
	g.SetReleaseTime(0.3)
	g.SetAttackCurve(2)
	g.SetDecayCurve(-1)
	g.SetReleaseCurve(0)
	g.SetSustainLevel(0.4)
	g.SetLooping(true)

	if g.Topology() != TopologyASR {
		t.Fatalf("Topology() = %v, want asr", g.Topology())
	}
	if g.AttackTime() != 0.1 || g.DecayTime() != 0.2 || g.ReleaseTime() != 0.3 {
		t.Fatalf("times = %v/%v/%v, want 0.1/0.2/0.3", g.AttackTime(), g.DecayTime(), g.ReleaseTime())
	}
	if g.AttackCurve() != 3 || g.DecayCurve() != 0.5 || g.ReleaseCurve() != 1 {
		t.Fatalf("curves = %v/%v/%v, want scaled 3/0.5/1", g.AttackCurve(), g.DecayCurve(), g.ReleaseCurve())
	}
	if g.SustainLevel() != 0.4 || !g.Looping() {
		t.Fatalf("sustain = %v looping = %v", g.SustainLevel(), g.Looping())
	}
	if g.Active() {
		t.Fatal("setters must not start the envelope")
	}
}

func TestInactiveMeansSilent(t *testing.T) {
	for _, topo := range Topologies() {
		t.Run(topo.String(), func(t *testing.T) {
			g := New(WithTopology(topo))

			g.Advance(0.5)
			if g.Active() || g.Amplitude() != 0 || g.Elapsed() != 0 {
				t.Fatalf("advancing inactive generator changed state: %+v", snap(g))
			}

			g.Trigger()
			for i := 0; i < 1000 && g.Active(); i++ {
				g.Advance(0.01)
				if g.Phase() == PhaseSustain {
					g.Release()
				}
				if g.Active() != (g.Phase() != PhaseInactive) {
					t.Fatalf("Active() = %v in phase %v", g.Active(), g.Phase())
				}
			}

			if g.Active() {
				t.Fatalf("run did not finish, phase %v", g.Phase())
			}
			if g.Amplitude() != 0 || g.Elapsed() != 0 {
				t.Fatalf("finished run left amplitude %v elapsed %v", g.Amplitude(), g.Elapsed())
			}
		})
	}
}

func TestADSRAttackCompletesInOneStep(t *testing.T) {
	g := New(WithSustain(0.3))
	g.Trigger()
	g.Advance(g.AttackTime())

	if g.Phase() != PhaseDecay {
		t.Fatalf("phase = %v, want decay", g.Phase())
	}
	if g.Elapsed() != 0 {
		t.Fatalf("elapsed = %v, want 0 after transition", g.Elapsed())
	}
	testutil.RequireNearlyEqual(t, "amplitude", g.Amplitude(), 1, eps)
}

func TestASRMidAttack(t *testing.T) {
	g := New(WithTopology(TopologyASR), WithAttack(1, 0), WithSustain(0.6))
	g.Trigger()
	g.Advance(0.5)

	if g.Phase() != PhaseAttack {
		t.Fatalf("phase = %v, want attack", g.Phase())
	}
	testutil.RequireNearlyEqual(t, "amplitude", g.Amplitude(), 0.3, eps)

	g.Advance(0.5)
	if g.Phase() != PhaseSustain {
		t.Fatalf("phase = %v, want sustain", g.Phase())
	}
	testutil.RequireNearlyEqual(t, "amplitude", g.Amplitude(), 0.6, eps)
}

func TestASRSkipsDecay(t *testing.T) {
	g := New(WithTopology(TopologyASR))
	g.Trigger()

	for i := 0; i < 100; i++ {
		g.Advance(0.05)
		if g.Phase() == PhaseDecay {
			t.Fatal("ASR entered decay")
		}
	}

	if g.Phase() != PhaseSustain {
		t.Fatalf("phase = %v, want sustain", g.Phase())
	}
}

func TestSustainHoldsLevel(t *testing.T) {
	g := New(WithSustain(0.25))
	g.Trigger()
	g.Advance(1)
	g.Advance(1)

	if g.Phase() != PhaseSustain {
		t.Fatalf("phase = %v, want sustain", g.Phase())
	}

	for i := 0; i < 10; i++ {
		g.Advance(3)
		if g.Phase() != PhaseSustain || g.Amplitude() != 0.25 || g.Elapsed() != 0 {
			t.Fatalf("sustain drifted: %+v", snap(g))
		}
	}
}

func TestEarlyReleaseCapturesAmplitude(t *testing.T) {
	g := New(WithSustain(0))
	g.Trigger()
	g.Advance(1)
	g.Advance(0.5)

	if g.Phase() != PhaseDecay {
		t.Fatalf("phase = %v, want decay", g.Phase())
	}
	testutil.RequireNearlyEqual(t, "decay amplitude", g.Amplitude(), 0.5, eps)

	g.Release()
	if g.Phase() != PhaseRelease || g.Elapsed() != 0 {
		t.Fatalf("after Release: %+v", snap(g))
	}
	testutil.RequireNearlyEqual(t, "captured sustain", g.SustainLevel(), 0.5, eps)
	testutil.RequireNearlyEqual(t, "release at t=0", g.AmplitudeAt(PhaseRelease, 0), 0.5, eps)

	g.Advance(0.5)
	testutil.RequireNearlyEqual(t, "release midpoint", g.Amplitude(), 0.25, eps)

	g.Advance(0.5)
	if g.Phase() != PhaseInactive || g.Amplitude() != 0 {
		t.Fatalf("release did not finish: %+v", snap(g))
	}
}

func TestEarlyReleaseDuringAttack(t *testing.T) {
	g := New(WithTopology(TopologyASR), WithSustain(0.8))
	g.Trigger()
	g.Advance(0.25)
	g.Release()

	testutil.RequireNearlyEqual(t, "captured sustain", g.SustainLevel(), 0.2, eps)
	if g.Phase() != PhaseRelease {
		t.Fatalf("phase = %v, want release", g.Phase())
	}
}

func TestTerminalTransitions(t *testing.T) {
	tests := []struct {
		name     string
		topology Topology
		looping  bool
		want     Phase
	}{
		{"adsr one-shot", TopologyADSR, false, PhaseInactive},
		{"adsr looping", TopologyADSR, true, PhaseAttack},
		{"asr one-shot", TopologyASR, false, PhaseInactive},
		{"asr looping", TopologyASR, true, PhaseAttack},
		{"ad one-shot", TopologyAD, false, PhaseInactive},
		{"ad looping", TopologyAD, true, PhaseAttack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(WithTopology(tt.topology), WithLooping(tt.looping))
			g.Trigger()

			// Walk to the start of the terminal timed phase
			terminal := PhaseRelease
			if tt.topology == TopologyAD {
				terminal = PhaseDecay
			}
			for i := 0; i < 10 && g.Phase() != terminal; i++ {
				if g.Phase() == PhaseSustain {
					g.Release()
					continue
				}
				g.Advance(1)
			}
			if g.Phase() != terminal {
				t.Fatalf("phase = %v, want %v", g.Phase(), terminal)
			}

			g.Advance(1.5)

			if g.Phase() != tt.want {
				t.Fatalf("phase = %v, want %v", g.Phase(), tt.want)
			}
			if g.Elapsed() != 0 {
				t.Fatalf("elapsed = %v, want 0", g.Elapsed())
			}
			if !tt.looping && g.Amplitude() != 0 {
				t.Fatalf("amplitude = %v, want exactly 0", g.Amplitude())
			}
		})
	}
}

func TestLoopingRunsRepeatedly(t *testing.T) {
	g := New(WithTopology(TopologyAD), WithAttack(0.1, 0), WithDecay(0.1, 0), WithLooping(true))
	g.Trigger()

	attacks := 0
	prev := g.Phase()
	for i := 0; i < 100; i++ {
		g.Advance(0.01)
		if g.Phase() == PhaseAttack && prev == PhaseDecay {
			attacks++
		}
		prev = g.Phase()
		if !g.Active() {
			t.Fatal("looping envelope went inactive")
		}
	}

	if attacks < 4 {
		t.Fatalf("restarted %d times, want at least 4", attacks)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	g := New()
	g.Trigger()
	g.Advance(0.4)

	g.Release()
	first := snap(g)
	g.Release()
	second := snap(g)

	if first != second {
		t.Fatalf("second Release changed state: %+v -> %+v", first, second)
	}
}

func TestReleaseNoOps(t *testing.T) {
	t.Run("inactive", func(t *testing.T) {
		g := New(WithSustain(0.6))
		before := snap(g)
		g.Release()
		if snap(g) != before {
			t.Fatalf("Release on inactive generator changed state: %+v", snap(g))
		}
		if g.SustainLevel() != 0.6 {
			t.Fatalf("Release on inactive generator overwrote sustain level: %v", g.SustainLevel())
		}
	})

	t.Run("ad", func(t *testing.T) {
		g := New(WithTopology(TopologyAD))
		g.Trigger()
		g.Advance(0.5)
		before := snap(g)

		g.Release()
		if snap(g) != before {
			t.Fatalf("Release on AD changed state: %+v -> %+v", before, snap(g))
		}

		g.Advance(0.5)
		if g.Phase() != PhaseDecay {
			t.Fatalf("AD run did not continue, phase %v", g.Phase())
		}
	})
}

func TestRetriggerRestartsAttack(t *testing.T) {
	g := New()
	g.Trigger()
	g.Advance(1)
	g.Advance(1)
	g.Release()
	g.Advance(0.5)
	level := g.Amplitude()

	g.Trigger()
	if g.Phase() != PhaseAttack || g.Elapsed() != 0 {
		t.Fatalf("after retrigger: %+v", snap(g))
	}
	if g.Amplitude() != level {
		t.Fatalf("Trigger changed amplitude to %v, want %v until next Advance", g.Amplitude(), level)
	}

	g.Advance(0.25)
	testutil.RequireNearlyEqual(t, "amplitude", g.Amplitude(), 0.25, eps)
}

func TestResetKeepsParameters(t *testing.T) {
	g := New(WithTopology(TopologyASR), WithAttack(0.3, 2), WithLooping(true))
	params := g.Params()

	g.Trigger()
	g.Advance(0.1)
	g.Reset()

	if g.Active() || g.Amplitude() != 0 || g.Elapsed() != 0 {
		t.Fatalf("Reset left state %+v", snap(g))
	}
	if g.Params() != params {
		t.Fatalf("Reset changed params: %+v -> %+v", params, g.Params())
	}

	g.Reset()
	if g.Active() {
		t.Fatal("second Reset activated generator")
	}
}

func TestTransitionAbsorbsStepError(t *testing.T) {
	g := New(WithAttack(0.1, 0))
	g.Trigger()

	for i := 0; i < 5; i++ {
		g.Advance(1.0 / 60)
	}
	if g.Phase() != PhaseAttack {
		t.Fatalf("phase after 5 frames = %v, want attack", g.Phase())
	}

	g.Advance(1.0 / 60)
	if g.Phase() != PhaseDecay {
		t.Fatalf("phase after 6 frames = %v, want decay", g.Phase())
	}
}

func TestAdvanceIgnoresNegativeDelta(t *testing.T) {
	g := New()
	g.Trigger()
	g.Advance(0.5)
	g.Advance(-1)

	testutil.RequireNearlyEqual(t, "elapsed", g.Elapsed(), 0.5, eps)
	testutil.RequireNearlyEqual(t, "amplitude", g.Amplitude(), 0.5, eps)
}

func TestZeroLengthPhases(t *testing.T) {
	g := New()
	g.SetAttackTime(0)
	g.SetDecayTime(0)
	g.Trigger()

	g.Advance(0)
	if g.Phase() != PhaseDecay || g.Amplitude() != 1 {
		t.Fatalf("after zero attack: %+v", snap(g))
	}

	g.Advance(0)
	if g.Phase() != PhaseSustain {
		t.Fatalf("after zero decay: %+v", snap(g))
	}
	testutil.RequireNearlyEqual(t, "amplitude", g.Amplitude(), defaultSustainLevel, eps)
}

func TestAmplitudeStaysInRange(t *testing.T) {
	for _, topo := range Topologies() {
		t.Run(topo.String(), func(t *testing.T) {
			g := New(WithTopology(topo), WithAttack(0.2, 4), WithDecay(0.3, -4), WithRelease(0.4, 2), WithSustain(0.5))
			g.Trigger()

			var out []float64
			for i, d := range testutil.JitteredTicks(3, 0.01, 0.008, 400) {
				g.Advance(d)
				out = append(out, g.Amplitude())
				if i == 150 {
					g.Release()
				}
			}

			testutil.RequireFinite(t, out)
			testutil.RequireInRange(t, out, 0, 1)
		})
	}
}

func TestTopologySwitchOutsideSequenceStops(t *testing.T) {
	var buf bytes.Buffer
	g := New(WithLogger(newTestLogger(&buf)))
	g.Trigger()
	g.Advance(1)
	g.Advance(1)

	if g.Phase() != PhaseSustain {
		t.Fatalf("phase = %v, want sustain", g.Phase())
	}

	g.SetTopology(TopologyAD)
	g.Advance(0.1)

	if g.Active() || g.Amplitude() != 0 {
		t.Fatalf("AD generator left in sustain: %+v", snap(g))
	}
	if !strings.Contains(buf.String(), "phase not valid for topology") {
		t.Fatalf("missing diagnostic, log = %q", buf.String())
	}
}

func TestInvalidTopologyProducesSilence(t *testing.T) {
	var buf bytes.Buffer
	g := New(WithLogger(newTestLogger(&buf)), WithTopology(Topology(42)))
	g.Trigger()
	g.Advance(0.5)

	if g.Active() || g.Amplitude() != 0 {
		t.Fatalf("invalid topology produced %+v", snap(g))
	}
	if !strings.Contains(buf.String(), "topology=Topology(42)") {
		t.Fatalf("diagnostic missing topology attribute, log = %q", buf.String())
	}
}

func TestWithLoggerNilIgnored(t *testing.T) {
	g := New(WithLogger(nil), nil)
	if g.logger == nil {
		t.Fatal("nil logger option replaced default logger")
	}
}
