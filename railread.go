// Package railread is the coordination core of a desktop PDF reader for
// low-vision users. Its central feature is rail mode: above a zoom
// threshold, the viewport locks onto semantically detected text regions
// and advances line by line with typewriter-style snap animations, while
// horizontal hold-to-scroll carries the eye along each line.
//
// The package wires the domain components together under a single
// UI-context owner, the [Viewer]:
//
//   - layout - the detector-driven layout analysis pipeline
//   - worker - background inference with caching and lookahead
//   - rail - the block/line navigation state machine
//   - camera - zoom, clamping, and raster DPI tiers
//   - tab - per-document state
//   - frame - the vsync/poll frame scheduler
//
// The PDF rasterizer and the GUI toolkit are external: the GUI supplies
// a [frame.Host] and an [Opener], and paints from the state the Viewer
// exposes.
//
// Basic usage:
//
//	v := railread.New(host, opener,
//	    railread.WithDetector(session),
//	    railread.WithConfigPath("~/.config/railread/config.yaml"))
//	defer v.Shutdown()
//
//	if _, err := v.OpenDocument("thesis.pdf"); err != nil {
//	    // handle error
//	}
package railread

import "github.com/tsawler/railread/raster"

// Opener opens a document path with the external rasterizer.
type Opener interface {
	Open(path string) (raster.Source, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (raster.Source, error)

// Open calls f.
func (f OpenerFunc) Open(path string) (raster.Source, error) {
	return f(path)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	tab := railread.Must(v.OpenDocument("document.pdf"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
