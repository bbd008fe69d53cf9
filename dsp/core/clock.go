package core

// ClockConfig defines how a host drives envelope generators: how often it
// ticks them and how finely it pre-renders their curves.
type ClockConfig struct {
	FrameRate       float64
	CurveResolution int
}

// ClockOption mutates a ClockConfig.
type ClockOption func(*ClockConfig)

// DefaultClockConfig returns defaults suited to a 60 fps UI host.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		FrameRate:       60,
		CurveResolution: 100,
	}
}

// WithFrameRate sets the tick rate in ticks per second.
func WithFrameRate(frameRate float64) ClockOption {
	return func(cfg *ClockConfig) {
		if frameRate > 0 {
			cfg.FrameRate = frameRate
		}
	}
}

// WithCurveResolution sets the number of curve samples rendered per phase.
func WithCurveResolution(n int) ClockOption {
	return func(cfg *ClockConfig) {
		if n > 0 {
			cfg.CurveResolution = n
		}
	}
}

// ApplyClockOptions applies zero or more options to the default config.
func ApplyClockOptions(opts ...ClockOption) ClockConfig {
	cfg := DefaultClockConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// TickDelta returns the time step in seconds between two ticks.
func (c ClockConfig) TickDelta() float64 {
	if c.FrameRate <= 0 {
		return 0
	}
	return 1 / c.FrameRate
}
