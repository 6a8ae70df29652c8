package railread

import (
	"log/slog"

	"github.com/tsawler/railread/layout"
)

// Option configures a Viewer.
type Option func(*viewerOptions)

type viewerOptions struct {
	detector   layout.Detector
	configPath string
	logger     *slog.Logger
}

func defaultViewerOptions() viewerOptions {
	return viewerOptions{
		configPath: "config.yaml",
	}
}

// WithDetector supplies the layout model session. Without it the viewer
// runs in fallback mode: every page gets a single full-page text block
// and the application remains usable as a plain viewer.
func WithDetector(d layout.Detector) Option {
	return func(o *viewerOptions) {
		o.detector = d
	}
}

// WithConfigPath sets the location of the persisted configuration
// document.
func WithConfigPath(path string) Option {
	return func(o *viewerOptions) {
		o.configPath = path
	}
}

// WithLogger sets the structured logger used by all components.
func WithLogger(log *slog.Logger) Option {
	return func(o *viewerOptions) {
		o.logger = log
	}
}
