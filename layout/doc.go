// Package layout provides deep-learning document layout analysis for the
// rail reader.
//
// The [Analyzer] converts a reduced page image (the coarse pixmap) into a
// [model.PageAnalysis]: a set of classified blocks with reading order and
// per-block text lines, in page-point coordinates.
//
// # Pipeline
//
// Analysis runs through fixed phases:
//
//  1. Preprocessing - nearest-neighbor rescale of the coarse pixmap to the
//     detector's square input, scaled to [0, 1]
//  2. Detection - one run of the [Detector] session
//  3. Filtering - confidence, class and minimum-size thresholds
//  4. Non-maximum suppression - class-agnostic, greedy by confidence
//  5. Reading-order normalization - detector-provided order preferred,
//     ascending-y tiebreak, densely reassigned
//  6. Line detection - per-block horizontal projection profiling
//
// For fixed inputs the pipeline is fully deterministic.
//
// # Degradation
//
// A detector output without a usable tensor yields an empty (but valid)
// analysis. When no detector is available at all, callers substitute
// [Fallback], a single full-page text block.
package layout
