package camera

// Raster DPI tier bounds for the cached page bitmap.
const (
	BaseDPI = 150
	MaxDPI  = 600
)

// TierFor returns the raster DPI needed to display the page crisply at
// the given zoom, clamped to the tier bounds.
func TierFor(zoom float64) float64 {
	return clampFloat(zoom*BaseDPI, BaseDPI, MaxDPI)
}

// NeedsRerender reports whether the cached bitmap's DPI is far enough
// from the needed tier to schedule a background re-render. Upgrades
// trigger at 1.4x the cached resolution; downgrades only below 0.4x and
// never from the base tier.
func NeedsRerender(needed, cached float64) bool {
	if cached <= 0 {
		return true
	}
	if needed > cached*1.4 {
		return true
	}
	if needed < cached*0.4 && cached > BaseDPI {
		return true
	}
	return false
}
