// Package envelope provides a deterministic envelope generator for control
// signals.
//
// A [Generator] turns caller-supplied time deltas into a single amplitude in
// [0, 1]. It supports three topologies:
//   - ADSR: attack to full scale, decay to the sustain level, hold, release.
//   - ASR: attack up to the sustain level, hold, release. Suited to gates.
//   - AD: attack to full scale, decay to silence. Suited to triggers; it
//     always completes its run and ignores Release.
//
// Each timed phase follows a power curve t^c whose exponent comes from
// [ScaleCurve], so a raw curve value of 0 is linear, positive values give a
// slow start and negative values a fast start.
//
// The generator owns no clock. Hosts call [Generator.Advance] once per frame
// or sample tick with the elapsed seconds, and drive it with
// [Generator.Trigger], [Generator.Release] and [Generator.Reset] from their
// note on/off gestures. Visualizers pre-render curves with
// [Generator.AmplitudeAt] and position a playhead with [Generator.Progress].
//
// A Generator is not safe for concurrent use.
package envelope
