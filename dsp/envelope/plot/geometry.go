package plot

import (
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-envelope/dsp/core"
	"github.com/cwbudde/algo-envelope/dsp/envelope"
)

// Point is a curve vertex. In unit space X and Y both lie in [0, 1] with
// Y pointing up.
type Point struct {
	X, Y float64
}

// Segment is the horizontal span of one phase in unit space.
type Segment struct {
	Phase      envelope.Phase
	Start, End float64
}

// Geometry is the static shape of an envelope, laid out left to right with
// each phase as wide as its duration.
type Geometry struct {
	Topology envelope.Topology
	Points   []Point
	Segments []Segment

	timedWidth   float64 // Combined width of attack, decay and release
	sustainWidth float64
}

// Marker is the live playhead position in unit space.
type Marker struct {
	Point
	Phase   envelope.Phase
	Visible bool
}

// Sample evaluates phase at n+1 equally spaced normalized times, reusing
// dst when it has enough capacity.
func Sample(g *envelope.Generator, phase envelope.Phase, n int, dst []float64) []float64 {
	if n < 1 {
		n = 1
	}

	dst = core.EnsureLen(dst, n+1)
	for i := range dst {
		dst[i] = g.AmplitudeAt(phase, float64(i)/float64(n))
	}

	return dst
}

// Build lays out the full curve of g using style's sustain width and
// resolution. The generator is only queried.
func Build(g *envelope.Generator, style Style) Geometry {
	geom := Geometry{Topology: g.Topology()}

	phases := geom.Topology.Phases()
	if len(phases) == 0 {
		return geom
	}

	var total float64
	for _, p := range phases {
		total += phaseWeight(g, p, style.SustainTime)
	}

	n := style.Resolution
	if n < 1 {
		n = 1
	}

	ts := make([]float64, n+1)
	for i := range ts {
		ts[i] = float64(i) / float64(n)
	}

	xs := make([]float64, n+1)
	offsets := make([]float64, n+1)
	var ys []float64

	x := 0.0
	for _, p := range phases {
		w := 1 / float64(len(phases))
		if total > 0 {
			w = phaseWeight(g, p, style.SustainTime) / total
		}

		geom.Segments = append(geom.Segments, Segment{Phase: p, Start: x, End: x + w})

		if p == envelope.PhaseSustain {
			level := g.AmplitudeAt(p, 0)
			geom.appendPoints([]float64{x, x + w}, []float64{level, level})
			geom.sustainWidth = w
			x += w
			continue
		}

		ys = Sample(g, p, n, ys)
		vecmath.ScaleBlock(xs, ts, w)
		core.Fill(offsets, x)
		vecmath.AddBlockInPlace(xs, offsets)
		geom.appendPoints(xs, ys)

		geom.timedWidth += w
		x += w
	}

	return geom
}

// appendPoints adds a phase's vertices, dropping the first one when it
// repeats the previous phase's last vertex.
func (geom *Geometry) appendPoints(xs, ys []float64) {
	start := 0
	if n := len(geom.Points); n > 0 && core.NearlyEqual(geom.Points[n-1].X, xs[0], 1e-12) {
		start = 1
	}

	for i := start; i < len(xs); i++ {
		geom.Points = append(geom.Points, Point{X: xs[i], Y: ys[i]})
	}
}

// phaseWeight returns the horizontal weight of a phase in seconds.
func phaseWeight(g *envelope.Generator, p envelope.Phase, sustainTime float64) float64 {
	switch p {
	case envelope.PhaseAttack:
		return g.AttackTime()
	case envelope.PhaseDecay:
		return g.DecayTime()
	case envelope.PhaseSustain:
		return sustainTime
	case envelope.PhaseRelease:
		return g.ReleaseTime()
	default:
		return 0
	}
}

// Segment returns the span of phase p, if the geometry contains it.
func (geom Geometry) Segment(p envelope.Phase) (Segment, bool) {
	for _, s := range geom.Segments {
		if s.Phase == p {
			return s, true
		}
	}
	return Segment{}, false
}

// ValueAt linearly interpolates the curve height at horizontal position x.
func (geom Geometry) ValueAt(x float64) float64 {
	pts := geom.Points
	if len(pts) == 0 {
		return 0
	}

	i := sort.Search(len(pts), func(i int) bool { return pts[i].X >= x })
	switch {
	case i == 0:
		return pts[0].Y
	case i == len(pts):
		return pts[len(pts)-1].Y
	}

	a, b := pts[i-1], pts[i]
	if b.X == a.X {
		return b.Y
	}

	return a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X)
}

// Playhead positions the live marker of g on geom.
//
// The horizontal position follows Progress, which treats sustain as zero
// width: while sustaining the marker waits at the start of the plateau and
// jumps to its end on release.
func Playhead(g *envelope.Generator, geom Geometry) Marker {
	if !g.Active() {
		return Marker{Phase: envelope.PhaseInactive}
	}

	x := g.Progress() * geom.timedWidth
	if g.Phase() == envelope.PhaseRelease {
		x += geom.sustainWidth
	}

	return Marker{
		Point:   Point{X: core.Clamp(x, 0, 1), Y: g.Amplitude()},
		Phase:   g.Phase(),
		Visible: true,
	}
}

// ToPixels maps unit-space points into the plot area of style, returning
// pixel x and y coordinates. Pixel y grows downwards.
func ToPixels(points []Point, style Style) (xs, ys []float64) {
	w, h := style.plotArea()
	margin := float64(style.Margin)

	n := len(points)
	ux := make([]float64, n)
	uy := make([]float64, n)
	for i, p := range points {
		ux[i] = p.X
		uy[i] = p.Y
	}

	offsets := make([]float64, n)
	xs = make([]float64, n)
	ys = make([]float64, n)

	vecmath.ScaleBlock(xs, ux, w)
	core.Fill(offsets, margin)
	vecmath.AddBlockInPlace(xs, offsets)

	vecmath.ScaleBlock(ys, uy, -h)
	core.Fill(offsets, margin+h)
	vecmath.AddBlockInPlace(ys, offsets)

	return xs, ys
}

// Snapshot builds the geometry and playhead of g in one call.
func Snapshot(g *envelope.Generator, style Style) (Geometry, Marker) {
	geom := Build(g, style)
	return geom, Playhead(g, geom)
}
