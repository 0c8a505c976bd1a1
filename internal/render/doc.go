// Package render turns sampled trajectories into something to look at.
//
// Three backends share the same inputs:
//
//   - terminal: asciigraph line charts, a Braille [Canvas] for attractor
//     projections, and text histograms
//   - HTML: interactive go-echarts pages (time series, 3D attractor,
//     Hovmöller heat map, histogram)
//   - PNG: static gonum/plot figures
//
// Samples that are NaN or infinite are skipped by every backend.
package render
