// Command envsh is an interactive shell for driving an envelope generator
// by hand.
//
// Usage:
//
//	envsh [-rate ticks-per-second]
//
// Type "help" at the prompt for the command list.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cwbudde/algo-envelope/dsp/core"
	"github.com/cwbudde/algo-envelope/dsp/envelope"
)

func main() {
	rate := flag.Float64("rate", core.DefaultClockConfig().FrameRate, "ticks per second used by advance")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: envsh [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Interactive envelope generator shell.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *rate <= 0 {
		fmt.Fprintf(os.Stderr, "error: rate must be positive: %f\n", *rate)
		os.Exit(2)
	}

	if err := repl(*rate); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func repl(rate float64) error {
	rl, err := readline.New("env> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	out := rl.Stdout()
	logger := slog.New(slog.NewTextHandler(rl.Stderr(), nil))
	sh := newShell(out, envelope.New(envelope.WithLogger(logger)), core.WithFrameRate(rate))

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return err
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if err := sh.eval(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(out, err)
		}
	}
}
