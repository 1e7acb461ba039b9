package config

import (
	"time"

	"github.com/banshee-data/telemetry.report/internal/analytics"
	"github.com/banshee-data/telemetry.report/internal/trackmap"
	"github.com/banshee-data/telemetry.report/internal/units"
)

// AnalyticsOptions translates the dashboard keys into aggregation options.
func (c *AnalyticsConfig) AnalyticsOptions() []analytics.Option {
	tie, err := analytics.ParseTieBreak(c.GetFavoriteTieBreak())
	if err != nil {
		tie = analytics.TieFirstSeen
	}
	return []analytics.Option{
		analytics.WithTrackLengthKm(c.GetTrackLengthKm()),
		analytics.WithRecentWindow(c.GetRecentWindow()),
		analytics.WithTieBreak(tie),
	}
}

// Viewport returns the configured track map viewport.
func (c *AnalyticsConfig) Viewport() trackmap.Viewport {
	return trackmap.Viewport{
		Width:   c.GetViewportWidth(),
		Height:  c.GetViewportHeight(),
		Padding: c.GetViewportPadding(),
	}
}

// Location loads the configured timezone, falling back to UTC.
func (c *AnalyticsConfig) Location() *time.Location {
	loc, err := units.LoadLocation(c.GetTimezone())
	if err != nil {
		return time.UTC
	}
	return loc
}

// CacheConfig returns the settings for an analytics result cache.
func (c *AnalyticsConfig) CacheConfig() analytics.CacheConfig {
	return analytics.CacheConfig{
		TTL:        c.GetCacheTTL(),
		MaxEntries: c.GetCacheMaxEntries(),
		Partitions: c.GetParallelPartitions(),
		Location:   c.Location(),
		Options:    c.AnalyticsOptions(),
	}
}
