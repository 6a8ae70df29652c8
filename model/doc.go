// Package model provides the intermediate representation for page layout
// analysis.
//
// This package defines the data structures shared between the layout
// analyzer, the analysis worker, and the rail navigator. All coordinates
// are in page points (1/72 inch) with the origin at the top-left corner
// and y increasing downward.
//
// # Analysis Structure
//
// The [PageAnalysis] type is the unit of exchange: the analyzer produces
// one per page, the worker caches and publishes them, and the navigator
// consumes them:
//
//   - [LayoutBlock] - a detected semantic region with class, confidence,
//     reading order, and text lines
//   - [LineInfo] - one horizontal text line within a block
//
// # Geometry
//
// Geometric primitives support position and layout calculations:
//
//   - [BBox] - bounding box with intersection, union, and IoU calculations
//   - [Point] - 2D point with distance calculation
//
// # Classes
//
// Detected blocks carry a class identifier into the canonical 25-entry
// class table (see [ClassName] and [ClassID]). The table order is fixed;
// it is a contract with the shipped detector model.
package model
