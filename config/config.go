// Package config loads and persists the reader's user configuration as a
// YAML document. Unknown keys are ignored; a missing or corrupt file
// falls back to defaults; navigable layout classes are stored by name and
// converted to class indices on load.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/railread/effect"
	"github.com/tsawler/railread/model"
	"github.com/tsawler/railread/rail"
)

// Config holds the user-configurable parameters for rail reading.
type Config struct {
	// RailZoomThreshold is the zoom level at which rail mode activates.
	RailZoomThreshold float64 `yaml:"rail_zoom_threshold"`

	// SnapDurationMS is the snap animation length in milliseconds.
	SnapDurationMS float64 `yaml:"snap_duration_ms"`

	// ScrollSpeedStart is the hold-scroll speed at the start of a hold,
	// in points per second.
	ScrollSpeedStart float64 `yaml:"scroll_speed_start"`

	// ScrollSpeedMax is the hold-scroll speed after the ramp.
	ScrollSpeedMax float64 `yaml:"scroll_speed_max"`

	// ScrollRampTime is the seconds taken to reach max speed.
	ScrollRampTime float64 `yaml:"scroll_ramp_time"`

	// AnalysisLookaheadPages is how many future pages to pre-analyze
	// (0 disables lookahead).
	AnalysisLookaheadPages int `yaml:"analysis_lookahead_pages"`

	// ColourEffect selects the accessibility colour filter by name.
	ColourEffect string `yaml:"colour_effect"`

	// ColourEffectIntensity is the filter strength in [0, 1].
	ColourEffectIntensity float64 `yaml:"colour_effect_intensity"`

	// NavigableClasses lists the layout class names navigable in rail
	// mode.
	NavigableClasses []string `yaml:"navigable_classes"`
}

// Default returns the stock configuration.
func Default() Config {
	var names []string
	for id := range model.DefaultNavigableClasses() {
		names = append(names, model.ClassName(id))
	}
	sort.Strings(names)

	return Config{
		RailZoomThreshold:      3.0,
		SnapDurationMS:         300,
		ScrollSpeedStart:       10,
		ScrollSpeedMax:         50,
		ScrollRampTime:         1.5,
		AnalysisLookaheadPages: 2,
		ColourEffect:           effect.None.Name(),
		ColourEffectIntensity:  1.0,
		NavigableClasses:       names,
	}
}

// Load reads the config file at path. A missing file creates one with
// defaults; a corrupt file logs a warning and returns defaults.
func Load(path string, log *slog.Logger) Config {
	if log == nil {
		log = slog.Default()
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		log.Info("no config file, using defaults", "path", path)
		cfg := Default()
		if saveErr := cfg.Save(path); saveErr != nil {
			log.Warn("failed to write default config", "path", path, "error", saveErr)
		}
		return cfg
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		log.Warn("failed to parse config, using defaults", "path", path, "error", err)
		return Default()
	}
	log.Info("loaded config", "path", path)
	return cfg
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (c Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// NavigableClassIDs converts the configured class names to indices.
// Unknown names are dropped; legacy aliases resolve to their canonical
// classes.
func (c Config) NavigableClassIDs() map[int]bool {
	set := make(map[int]bool, len(c.NavigableClasses))
	for _, name := range c.NavigableClasses {
		if id, ok := model.ClassID(name); ok {
			set[id] = true
		}
	}
	return set
}

// Effect resolves the configured colour effect, falling back to None for
// unknown names.
func (c Config) Effect() effect.Effect {
	e, ok := effect.Parse(c.ColourEffect)
	if !ok {
		return effect.None
	}
	return e
}

// RailConfig converts to the navigator's parameter set.
func (c Config) RailConfig() rail.Config {
	return rail.Config{
		ZoomThreshold:    c.RailZoomThreshold,
		SnapDurationMS:   c.SnapDurationMS,
		ScrollSpeedStart: c.ScrollSpeedStart,
		ScrollSpeedMax:   c.ScrollSpeedMax,
		ScrollRampTime:   c.ScrollRampTime,
	}
}
