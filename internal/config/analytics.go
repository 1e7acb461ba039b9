package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
	"github.com/banshee-data/telemetry.report/internal/units"
)

// DefaultConfigPath is the path to the canonical analytics defaults file.
const DefaultConfigPath = "config/analytics.defaults.json"

// Tie-break policies accepted by favorite_tie_break.
const (
	TieBreakFirstSeen    = "first_seen"
	TieBreakAlphabetical = "alphabetical"
)

// AnalyticsConfig holds the tunable knobs for dashboard statistics, day
// bucketing and track-map projection. Every field is optional; the Get*
// accessors supply the default for anything the file leaves out.
type AnalyticsConfig struct {
	// Dashboard statistics
	TrackLengthKm    *float64 `json:"track_length_km,omitempty"`
	RecentWindow     *int     `json:"recent_window,omitempty"`
	FavoriteTieBreak *string  `json:"favorite_tie_break,omitempty"`

	// Presentation
	Timezone      *string `json:"timezone,omitempty"`
	DistanceUnits *string `json:"distance_units,omitempty"`

	// Track map viewport, in screen pixels
	ViewportWidth   *float64 `json:"viewport_width,omitempty"`
	ViewportHeight  *float64 `json:"viewport_height,omitempty"`
	ViewportPadding *float64 `json:"viewport_padding,omitempty"`
	SmoothSegments  *int     `json:"smooth_segments,omitempty"`
	SkipInvalidLaps *bool    `json:"skip_invalid_laps,omitempty"`

	// Result cache and parallelism
	CacheTTL           *string `json:"cache_ttl,omitempty"` // duration string like "5m"
	CacheMaxEntries    *int    `json:"cache_max_entries,omitempty"`
	ParallelPartitions *int    `json:"parallel_partitions,omitempty"`
}

// EmptyAnalyticsConfig returns an AnalyticsConfig with all fields unset.
func EmptyAnalyticsConfig() *AnalyticsConfig {
	return &AnalyticsConfig{}
}

// DefaultAnalyticsConfig returns a config with every field populated from
// the built-in defaults.
func DefaultAnalyticsConfig() *AnalyticsConfig {
	c := EmptyAnalyticsConfig()
	trackLength := c.GetTrackLengthKm()
	window := c.GetRecentWindow()
	tie := c.GetFavoriteTieBreak()
	tz := c.GetTimezone()
	du := c.GetDistanceUnits()
	w, h, p := c.GetViewportWidth(), c.GetViewportHeight(), c.GetViewportPadding()
	segs := c.GetSmoothSegments()
	skipInvalid := c.GetSkipInvalidLaps()
	ttl := c.GetCacheTTL().String()
	maxEntries := c.GetCacheMaxEntries()
	partitions := c.GetParallelPartitions()
	return &AnalyticsConfig{
		TrackLengthKm:      &trackLength,
		RecentWindow:       &window,
		FavoriteTieBreak:   &tie,
		Timezone:           &tz,
		DistanceUnits:      &du,
		ViewportWidth:      &w,
		ViewportHeight:     &h,
		ViewportPadding:    &p,
		SmoothSegments:     &segs,
		SkipInvalidLaps:    &skipInvalid,
		CacheTTL:           &ttl,
		CacheMaxEntries:    &maxEntries,
		ParallelPartitions: &partitions,
	}
}

// LoadAnalyticsConfig loads an AnalyticsConfig from a JSON file on fsys.
// A nil fsys reads from the OS. The file must have a .json extension and be
// under 1MB. Fields omitted from the file keep their defaults, so partial
// configs are safe.
func LoadAnalyticsConfig(fsys fsutil.FileSystem, path string) (*AnalyticsConfig, error) {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(data), maxFileSize)
	}

	cfg := EmptyAnalyticsConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical analytics defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *AnalyticsConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/ and cmd/telemetry-report/
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalyticsConfig(fsutil.OSFileSystem{}, path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *AnalyticsConfig) Validate() error {
	if c.TrackLengthKm != nil && *c.TrackLengthKm <= 0 {
		return fmt.Errorf("track_length_km must be positive, got %f", *c.TrackLengthKm)
	}
	if c.RecentWindow != nil && *c.RecentWindow < 1 {
		return fmt.Errorf("recent_window must be at least 1, got %d", *c.RecentWindow)
	}
	if c.FavoriteTieBreak != nil {
		switch *c.FavoriteTieBreak {
		case "", TieBreakFirstSeen, TieBreakAlphabetical:
		default:
			return fmt.Errorf("favorite_tie_break must be %q or %q, got %q",
				TieBreakFirstSeen, TieBreakAlphabetical, *c.FavoriteTieBreak)
		}
	}
	if c.Timezone != nil && *c.Timezone != "" && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}
	if c.DistanceUnits != nil && *c.DistanceUnits != "" && !units.IsValid(*c.DistanceUnits) {
		return fmt.Errorf("distance_units must be one of %s, got %q", units.GetValidUnitsString(), *c.DistanceUnits)
	}

	w, h, p := c.GetViewportWidth(), c.GetViewportHeight(), c.GetViewportPadding()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("viewport must have positive size, got %gx%g", w, h)
	}
	if p < 0 || 2*p >= w || 2*p >= h {
		return fmt.Errorf("viewport_padding %g leaves no drawable area in %gx%g", p, w, h)
	}
	if c.SmoothSegments != nil && *c.SmoothSegments < 0 {
		return fmt.Errorf("smooth_segments must be non-negative, got %d", *c.SmoothSegments)
	}

	if c.CacheTTL != nil && *c.CacheTTL != "" {
		if _, err := time.ParseDuration(*c.CacheTTL); err != nil {
			return fmt.Errorf("invalid cache_ttl '%s': %w", *c.CacheTTL, err)
		}
	}
	if c.CacheMaxEntries != nil && *c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must be non-negative, got %d", *c.CacheMaxEntries)
	}
	if c.ParallelPartitions != nil && *c.ParallelPartitions < 0 {
		return fmt.Errorf("parallel_partitions must be non-negative, got %d", *c.ParallelPartitions)
	}

	return nil
}

// GetTrackLengthKm returns the assumed lap length used for the distance heuristic.
func (c *AnalyticsConfig) GetTrackLengthKm() float64 {
	if c.TrackLengthKm == nil {
		return 4.0
	}
	return *c.TrackLengthKm
}

// GetRecentWindow returns the number of sessions compared for recent improvement.
func (c *AnalyticsConfig) GetRecentWindow() int {
	if c.RecentWindow == nil {
		return 5
	}
	return *c.RecentWindow
}

// GetFavoriteTieBreak returns the favorite-track tie policy or the default.
func (c *AnalyticsConfig) GetFavoriteTieBreak() string {
	if c.FavoriteTieBreak == nil || *c.FavoriteTieBreak == "" {
		return TieBreakFirstSeen
	}
	return *c.FavoriteTieBreak
}

// GetTimezone returns the timezone used for day bucketing.
func (c *AnalyticsConfig) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return "UTC"
	}
	return *c.Timezone
}

// GetDistanceUnits returns the units total distance is reported in.
func (c *AnalyticsConfig) GetDistanceUnits() string {
	if c.DistanceUnits == nil || *c.DistanceUnits == "" {
		return units.KM
	}
	return *c.DistanceUnits
}

// GetViewportWidth returns the track map width or the default.
func (c *AnalyticsConfig) GetViewportWidth() float64 {
	if c.ViewportWidth == nil {
		return 600
	}
	return *c.ViewportWidth
}

// GetViewportHeight returns the fixed track map height or the default.
func (c *AnalyticsConfig) GetViewportHeight() float64 {
	if c.ViewportHeight == nil {
		return 400
	}
	return *c.ViewportHeight
}

// GetViewportPadding returns the track map padding or the default.
func (c *AnalyticsConfig) GetViewportPadding() float64 {
	if c.ViewportPadding == nil {
		return 40
	}
	return *c.ViewportPadding
}

// GetSmoothSegments returns the spline subdivisions per polyline span.
// Zero or one disables smoothing.
func (c *AnalyticsConfig) GetSmoothSegments() int {
	if c.SmoothSegments == nil {
		return 8
	}
	return *c.SmoothSegments
}

// GetSkipInvalidLaps reports whether laps flagged invalid are passed over
// when choosing the lap to map. Defaults to false.
func (c *AnalyticsConfig) GetSkipInvalidLaps() bool {
	return c.SkipInvalidLaps != nil && *c.SkipInvalidLaps
}

// GetCacheTTL parses and returns CacheTTL as a time.Duration.
func (c *AnalyticsConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == nil || *c.CacheTTL == "" {
		return 5 * time.Minute // default
	}
	d, err := time.ParseDuration(*c.CacheTTL)
	if err != nil {
		return 5 * time.Minute // default on parse error
	}
	return d
}

// GetCacheMaxEntries returns the cache bound. Zero disables caching.
func (c *AnalyticsConfig) GetCacheMaxEntries() int {
	if c.CacheMaxEntries == nil {
		return 64
	}
	return *c.CacheMaxEntries
}

// GetParallelPartitions returns how many partitions dashboard aggregation
// is split into. Zero or one means sequential.
func (c *AnalyticsConfig) GetParallelPartitions() int {
	if c.ParallelPartitions == nil {
		return 0
	}
	return *c.ParallelPartitions
}
