package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-envelope/dsp/core"
	"github.com/cwbudde/algo-envelope/dsp/envelope"
	"github.com/cwbudde/algo-envelope/dsp/envelope/plot"
)

const (
	plotCols = 60
	plotRows = 10
)

var errQuit = errors.New("quit")

// shell holds one generator and the sustain time accumulated in the
// current run, which Duration needs as its hint.
type shell struct {
	out   io.Writer
	gen   *envelope.Generator
	clock core.ClockConfig
	held  float64
}

func newShell(out io.Writer, gen *envelope.Generator, opts ...core.ClockOption) *shell {
	return &shell{
		out:   out,
		gen:   gen,
		clock: core.ApplyClockOptions(opts...),
	}
}

type command struct {
	name  string
	run   func(*shell, []string) error
	arity int // -n means len(args) must be >= n
	usage string
}

var commands []command

func init() {
	commands = []command{
		{"trigger", triggerCommand, 0, "trigger                  start the envelope from attack"},
		{"release", releaseCommand, 0, "release                  enter the release phase"},
		{"reset", resetCommand, 0, "reset                    stop and silence the envelope"},
		{"advance", advanceCommand, -1, "advance <sec> [steps]    advance in clock ticks or in n equal steps"},
		{"tick", tickCommand, 0, "tick                     advance by one clock tick"},
		{"set", setCommand, 2, "set <param> <value>      change a parameter"},
		{"show", showCommand, 0, "show                     print state and plot"},
		{"params", paramsCommand, 0, "params                   print all parameters"},
		{"png", pngCommand, 1, "png <file>               write a PNG plot with the playhead"},
		{"help", helpCommand, 0, "help                     print this list"},
		{"quit", quitCommand, 0, "quit                     leave the shell"},
	}
}

func (s *shell) eval(input string) error {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}

	name, args := fields[0], fields[1:]
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if cmd.arity < 0 {
			arity := -cmd.arity
			if len(args) < arity {
				return fmt.Errorf("%s: wrong number of arguments: need at least %v, got %v",
					cmd.name, arity, len(args))
			}
		} else if len(args) != cmd.arity {
			return fmt.Errorf("%s: wrong number of arguments: want %v, got %v",
				cmd.name, cmd.arity, len(args))
		}
		if err := cmd.run(s, args); err != nil {
			if errors.Is(err, errQuit) {
				return err
			}
			return fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return nil
	}

	return fmt.Errorf("unknown command: %s", name)
}

// step advances the generator once and keeps the sustain time current.
func (s *shell) step(dt float64) {
	before := s.gen.Phase()
	s.gen.Advance(dt)

	switch s.gen.Phase() {
	case envelope.PhaseSustain:
		// The tick that enters sustain belongs to the finished phase.
		if before == envelope.PhaseSustain {
			s.held += dt
		}
	case envelope.PhaseAttack:
		s.held = 0
	}
}

func (s *shell) status() {
	fmt.Fprintf(s.out, "%s  amplitude=%.4f  progress=%.3f  duration=%.3fs\n",
		s.gen.Phase(), s.gen.Amplitude(), s.gen.Progress(), s.gen.Duration(s.held))
}

func triggerCommand(s *shell, _ []string) error {
	s.gen.Trigger()
	s.held = 0
	s.status()
	return nil
}

func releaseCommand(s *shell, _ []string) error {
	s.gen.Release()
	s.status()
	return nil
}

func resetCommand(s *shell, _ []string) error {
	s.gen.Reset()
	s.held = 0
	s.status()
	return nil
}

func advanceCommand(s *shell, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("too many arguments: %v", args)
	}

	seconds, err := parseFloat(args[0])
	if err != nil {
		return err
	}
	if seconds < 0 {
		return fmt.Errorf("seconds must be non-negative: %g", seconds)
	}

	var steps int
	var dt float64
	if len(args) == 2 {
		steps, err = strconv.Atoi(args[1])
		if err != nil || steps < 1 {
			return fmt.Errorf("steps must be a positive integer: %q", args[1])
		}
		dt = seconds / float64(steps)
	} else {
		dt = s.clock.TickDelta()
		steps = int(math.Round(seconds / dt))
	}

	for i := 0; i < steps; i++ {
		s.step(dt)
	}
	s.status()

	return nil
}

func tickCommand(s *shell, _ []string) error {
	s.step(s.clock.TickDelta())
	s.status()
	return nil
}

func setCommand(s *shell, args []string) error {
	name, raw := args[0], args[1]

	switch name {
	case "topology":
		t, err := envelope.ParseTopology(raw)
		if err != nil {
			return err
		}
		s.gen.SetTopology(t)
		return nil
	case "loop":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("loop must be a boolean: %q", raw)
		}
		s.gen.SetLooping(v)
		return nil
	}

	v, err := parseFloat(raw)
	if err != nil {
		return err
	}

	// Validate the new value against defaults for every other field, so a
	// level captured by release cannot block an unrelated change.
	probe := envelope.DefaultParams()
	var apply func(float64)
	switch name {
	case "attack":
		probe.AttackTime, apply = v, s.gen.SetAttackTime
	case "decay":
		probe.DecayTime, apply = v, s.gen.SetDecayTime
	case "release":
		probe.ReleaseTime, apply = v, s.gen.SetReleaseTime
	case "attack-curve":
		probe.AttackCurve, apply = v, s.gen.SetAttackCurve
	case "decay-curve":
		probe.DecayCurve, apply = v, s.gen.SetDecayCurve
	case "release-curve":
		probe.ReleaseCurve, apply = v, s.gen.SetReleaseCurve
	case "sustain":
		probe.SustainLevel, apply = v, s.gen.SetSustainLevel
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}

	if err := probe.Validate(); err != nil {
		return err
	}
	apply(v)

	return nil
}

func showCommand(s *shell, _ []string) error {
	s.status()

	style := plot.DefaultStyle()
	style.Resolution = s.clock.CurveResolution
	geom, head := plot.Snapshot(s.gen, style)

	return plot.WriteText(s.out, geom, head, plotCols, plotRows)
}

func paramsCommand(s *shell, _ []string) error {
	p := s.gen.Params()
	fmt.Fprintf(s.out, "topology       %s\n", p.Topology)
	fmt.Fprintf(s.out, "attack         %gs curve %.3g\n", p.AttackTime, p.AttackCurve)
	if p.Topology != envelope.TopologyASR {
		fmt.Fprintf(s.out, "decay          %gs curve %.3g\n", p.DecayTime, p.DecayCurve)
	}
	if p.Topology != envelope.TopologyAD {
		fmt.Fprintf(s.out, "sustain        %g\n", p.SustainLevel)
		fmt.Fprintf(s.out, "release        %gs curve %.3g\n", p.ReleaseTime, p.ReleaseCurve)
	}
	fmt.Fprintf(s.out, "loop           %t\n", p.Looping)
	fmt.Fprintf(s.out, "rate           %g ticks/s\n", s.clock.FrameRate)
	return nil
}

func pngCommand(s *shell, args []string) error {
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}

	style := plot.DefaultStyle()
	style.Resolution = s.clock.CurveResolution
	geom, head := plot.Snapshot(s.gen, style)

	if err := plot.WritePNG(f, geom, head, style); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "wrote %s\n", args[0])
	return nil
}

func helpCommand(s *shell, _ []string) error {
	for _, cmd := range commands {
		fmt.Fprintln(s.out, cmd.usage)
	}
	fmt.Fprintln(s.out, "\nparameters: topology attack decay release attack-curve decay-curve release-curve sustain loop")
	return nil
}

func quitCommand(*shell, []string) error {
	return errQuit
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}
