package plot

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/cwbudde/algo-envelope/dsp/core"
)

// ErrInvalidStyle is returned when a Style cannot be rendered.
var ErrInvalidStyle = errors.New("plot: invalid style")

// Style describes the frame and colors of a rendered envelope.
type Style struct {
	Width  int // Frame width in pixels
	Height int // Frame height in pixels
	Margin int // Inset between frame edge and curve area

	// SustainTime is the width, expressed in seconds of envelope time, given
	// to the sustain plateau. Sustain has no duration of its own.
	SustainTime float64

	// Resolution is the number of curve segments rendered per timed phase.
	Resolution int

	LineWidth float64

	Background color.NRGBA
	Curve      color.NRGBA
	Active     color.NRGBA // Fill behind the phase currently playing
	Playhead   color.NRGBA
}

// DefaultStyle returns a dark style sized for a small panel.
func DefaultStyle() Style {
	return Style{
		Width:       325,
		Height:      250,
		Margin:      10,
		SustainTime: 0.05,
		Resolution:  core.DefaultClockConfig().CurveResolution,
		LineWidth:   2,
		Background:  color.NRGBA{22, 28, 31, 255},
		Curve:       color.NRGBA{249, 242, 237, 255},
		Active:      color.NRGBA{255, 181, 98, 96},
		Playhead:    color.NRGBA{248, 116, 116, 255},
	}
}

// Validate reports whether s describes a drawable frame.
func (s Style) Validate() error {
	if s.Width <= 2*s.Margin || s.Height <= 2*s.Margin || s.Margin < 0 {
		return fmt.Errorf("%w: frame %dx%d too small for margin %d", ErrInvalidStyle, s.Width, s.Height, s.Margin)
	}
	if s.SustainTime < 0 || !core.IsFinite(s.SustainTime) {
		return fmt.Errorf("%w: sustain time must be non-negative and finite: %f", ErrInvalidStyle, s.SustainTime)
	}
	if s.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be positive: %d", ErrInvalidStyle, s.Resolution)
	}
	if s.LineWidth <= 0 || !core.IsFinite(s.LineWidth) {
		return fmt.Errorf("%w: line width must be positive: %f", ErrInvalidStyle, s.LineWidth)
	}
	return nil
}

// plotArea returns the inner width and height available to the curve.
func (s Style) plotArea() (float64, float64) {
	return float64(s.Width - 2*s.Margin), float64(s.Height - 2*s.Margin)
}
