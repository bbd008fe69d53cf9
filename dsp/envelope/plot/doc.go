// Package plot renders envelope curves for visualizers.
//
// It is a consumer of the [envelope.Generator] query API: curves are
// pre-rendered with AmplitudeAt, and a live playhead is positioned from
// Progress and Amplitude. Nothing in this package mutates a generator.
//
// Layout and colors come from an explicit [Style] value handed to each
// renderer; there is no package-level theme.
//
// Included renderers:
//   - [Build]: unit-space polyline and per-phase spans.
//   - [ToPixels]: maps unit geometry onto a pixel frame.
//   - [WriteText]: ASCII plot for terminals.
//   - [WritePNG]: anti-aliased raster image.
package plot
