// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() initializer to build a Config with defaults.
//   - External errors must be wrapped via this package's error helpers.
//   - Heuristic constants (cooldowns, windows, validity bounds) live here so
//     they are explicit configuration rather than magic numbers.
package config

// Default provider endpoints. The FastF1 default points at a local HTTP
// bridge exposing the FastF1 schedule/results/laps tables.
const (
	defaultOpenF1BaseURL = "https://api.openf1.org/v1"
	defaultFastF1BaseURL = "http://localhost:8801/api/v1"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Year selects the season to process.
	Year int `koanf:"year"`

	// OutputDir is where export documents are written.
	OutputDir string `koanf:"output_dir"`

	// CachePath points at the SQLite fetch cache; empty disables caching.
	CachePath string `koanf:"cache_path"`

	// WriteMetrics controls whether a metrics dump is written next to the exports.
	WriteMetrics bool `koanf:"write_metrics"`

	// OpenF1BaseURL and FastF1BaseURL override the provider endpoints.
	OpenF1BaseURL string `koanf:"openf1_base_url"`
	FastF1BaseURL string `koanf:"fastf1_base_url"`

	// OpenF1TimeoutS and FastF1TimeoutS bound each provider request.
	OpenF1TimeoutS int `koanf:"openf1_timeout_s"`
	FastF1TimeoutS int `koanf:"fastf1_timeout_s"`

	// PassCooldownS merges position gains within this window into one pass.
	PassCooldownS float64 `koanf:"pass_cooldown_s"`

	// DRSWindowS is how far before a pass a DRS sample still counts for it.
	DRSWindowS float64 `koanf:"drs_window_s"`

	// UndercutLookaheadLaps bounds the post-stop position search.
	UndercutLookaheadLaps int `koanf:"undercut_lookahead_laps"`

	// PitMinDurationS and PitMaxDurationS bound plausible stop durations.
	PitMinDurationS float64 `koanf:"pit_min_duration_s"`
	PitMaxDurationS float64 `koanf:"pit_max_duration_s"`
}

// New creates a Config with defaults. The heuristic values mirror the
// published methodology: 8s pass cooldown, 2s DRS window, 3-lap undercut
// lookahead, 0-120s pit validity bounds.
func New() *Config {
	c := &Config{
		LogLevel:              "info",
		Year:                  2025,
		OutputDir:             "data/exports",
		CachePath:             "data/fetch_cache.db",
		WriteMetrics:          false,
		OpenF1BaseURL:         defaultOpenF1BaseURL,
		FastF1BaseURL:         defaultFastF1BaseURL,
		OpenF1TimeoutS:        90,
		FastF1TimeoutS:        60,
		PassCooldownS:         8,
		DRSWindowS:            2,
		UndercutLookaheadLaps: 3,
		PitMinDurationS:       0,
		PitMaxDurationS:       120,
	}
	return c
}
