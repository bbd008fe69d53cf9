// Command envinfo simulates an envelope generator and prints its timeline.
//
// Usage:
//
//	envinfo [flags]
//
// The envelope is triggered at time zero, held in sustain for -hold seconds,
// released, and advanced at -rate ticks per second until it finishes.
//
// Examples:
//
//	envinfo
//	envinfo -topology asr -attack 0.2 -sustain 0.6 -release 1.5
//	envinfo -attack-curve 3 -decay-curve -2 -plot
//	envinfo -topology ad -loop -max 4 -every 10
//	envinfo -png adsr.png
//	envinfo -list
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/cwbudde/algo-envelope/dsp/core"
	"github.com/cwbudde/algo-envelope/dsp/envelope"
	"github.com/cwbudde/algo-envelope/dsp/envelope/plot"
)

const (
	defaultPlotCols = 72
	defaultPlotRows = 12
)

type options struct {
	params   envelope.Params
	hold     float64
	maxTime  float64
	every    int
	showPlot bool
	pngPath  string
	list     bool
	clock    core.ClockConfig
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if opts.list {
		for _, t := range envelope.Topologies() {
			fmt.Fprintln(stdout, t)
		}
		return 0
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	gen := envelope.New(envelope.WithParams(opts.params), envelope.WithLogger(logger))

	if opts.pngPath != "" {
		if err := writePNG(opts.pngPath, gen, opts.clock); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	if err := printTimeline(stdout, gen, opts); err != nil {
		fmt.Fprintf(stderr, "error: failed to write timeline: %v\n", err)
		return 1
	}

	if opts.showPlot {
		gen.Reset()
		gen.Apply(opts.params)
		cols := terminalWidth(stdout, defaultPlotCols)
		style := plot.DefaultStyle()
		style.Resolution = opts.clock.CurveResolution
		if err := plot.WriteText(stdout, plot.Build(gen, style), plot.Marker{}, cols, defaultPlotRows); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("envinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := envelope.DefaultParams()
	topology := fs.String("topology", def.Topology.String(), "envelope topology: adsr, asr or ad")
	attack := fs.Float64("attack", def.AttackTime, "attack time in seconds")
	decay := fs.Float64("decay", def.DecayTime, "decay time in seconds")
	release := fs.Float64("release", def.ReleaseTime, "release time in seconds")
	attackCurve := fs.Float64("attack-curve", 0, "attack curve in [-10, 10], 0 is linear")
	decayCurve := fs.Float64("decay-curve", 0, "decay curve in [-10, 10], 0 is linear")
	releaseCurve := fs.Float64("release-curve", 0, "release curve in [-10, 10], 0 is linear")
	sustain := fs.Float64("sustain", def.SustainLevel, "sustain level in [0, 1]")
	loop := fs.Bool("loop", false, "restart the envelope when it finishes")
	hold := fs.Float64("hold", 1, "seconds to hold sustain before releasing")
	maxTime := fs.Float64("max", 0, "stop after this many seconds (default: one full run)")
	rate := fs.Float64("rate", 100, "ticks per second")
	every := fs.Int("every", 5, "print every n-th tick (phase changes are always printed)")
	resolution := fs.Int("resolution", core.DefaultClockConfig().CurveResolution, "curve samples per phase for plots")
	showPlot := fs.Bool("plot", false, "print a text plot of the curve")
	pngPath := fs.String("png", "", "write a PNG plot of the curve to `file`")
	list := fs.Bool("list", false, "list available topologies")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: envinfo [flags]\n\n")
		fmt.Fprintf(stderr, "Simulates an envelope generator and prints its timeline.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  envinfo -topology asr -attack 0.2 -sustain 0.6\n")
		fmt.Fprintf(stderr, "  envinfo -attack-curve 3 -plot\n")
		fmt.Fprintf(stderr, "  envinfo -png adsr.png\n")
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	topo, err := envelope.ParseTopology(*topology)
	if err != nil {
		return options{}, err
	}

	opts := options{
		params: envelope.Params{
			Topology:     topo,
			AttackTime:   *attack,
			DecayTime:    *decay,
			ReleaseTime:  *release,
			AttackCurve:  *attackCurve,
			DecayCurve:   *decayCurve,
			ReleaseCurve: *releaseCurve,
			SustainLevel: *sustain,
			Looping:      *loop,
		},
		hold:     *hold,
		maxTime:  *maxTime,
		every:    *every,
		showPlot: *showPlot,
		pngPath:  *pngPath,
		list:     *list,
		clock:    core.ApplyClockOptions(core.WithFrameRate(*rate), core.WithCurveResolution(*resolution)),
	}

	if err := opts.params.Validate(); err != nil {
		return options{}, err
	}
	if opts.hold < 0 || !core.IsFinite(opts.hold) {
		return options{}, fmt.Errorf("hold must be non-negative: %f", opts.hold)
	}
	if *rate <= 0 || *resolution <= 0 {
		return options{}, fmt.Errorf("rate and resolution must be positive")
	}
	if opts.every < 1 {
		opts.every = 1
	}

	return opts, nil
}

// step is one simulated tick.
type step struct {
	time     float64
	phase    envelope.Phase
	elapsed  float64
	level    float64
	progress float64
	duration float64
	changed  bool
}

// simulate triggers gen and advances it tick by tick, releasing it after
// hold seconds of sustain. It stops when the envelope finishes or after
// limit seconds.
func simulate(gen *envelope.Generator, hold, limit float64, clock core.ClockConfig, visit func(step) error) error {
	dt := clock.TickDelta()
	held := 0.0
	now := 0.0

	gen.Trigger()
	prev := gen.Phase()

	for gen.Active() && now < limit {
		before := gen.Phase()
		gen.Advance(dt)
		now += dt

		switch gen.Phase() {
		case envelope.PhaseAttack:
			held = 0
		case envelope.PhaseSustain:
			// The tick that enters sustain belongs to the finished phase.
			if before == envelope.PhaseSustain {
				held += dt
			}
			if held >= hold {
				gen.Release()
			}
		}

		s := step{
			time:     now,
			phase:    gen.Phase(),
			elapsed:  gen.Elapsed(),
			level:    gen.Amplitude(),
			progress: gen.Progress(),
			duration: gen.Duration(held),
			changed:  gen.Phase() != prev,
		}
		prev = gen.Phase()

		if err := visit(s); err != nil {
			return err
		}
	}

	return nil
}

func printTimeline(w io.Writer, gen *envelope.Generator, opts options) error {
	limit := opts.maxTime
	if limit <= 0 {
		// One full run plus slack for frame rounding
		limit = gen.TotalTime(opts.hold) + 10*opts.clock.TickDelta()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Time [s]\tPhase\tElapsed [s]\tAmplitude\tLevel [dB]\tProgress\tDuration [s]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "--------\t-----\t-----------\t---------\t----------\t--------\t------------\n"); err != nil {
		return err
	}

	tick := 0
	err := simulate(gen, opts.hold, limit, opts.clock, func(s step) error {
		tick++
		if !s.changed && tick%opts.every != 0 {
			return nil
		}
		_, err := fmt.Fprintf(tw, "%.3f\t%s\t%.3f\t%.4f\t%.1f\t%.3f\t%.3f\n",
			s.time,
			s.phase,
			s.elapsed,
			s.level,
			core.LinearToDB(s.level),
			s.progress,
			s.duration,
		)
		return err
	})
	if err != nil {
		return err
	}

	return tw.Flush()
}

func writePNG(path string, gen *envelope.Generator, clock core.ClockConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	style := plot.DefaultStyle()
	style.Resolution = clock.CurveResolution
	geom := plot.Build(gen, style)

	if err := plot.WritePNG(f, geom, plot.Playhead(gen, geom), style); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// terminalWidth returns the column count of w when it is a terminal.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}

	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols < 2 {
		return fallback
	}

	return cols
}
