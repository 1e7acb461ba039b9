package analytics

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/telemetry.report/internal/monitoring"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/timeutil"
)

// fingerprintSpace namespaces input fingerprints.
var fingerprintSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://telemetry.report/analytics"))

// Fingerprint derives a stable name-based UUID from the sessions and any
// extra key parts. Equal inputs in the same order give equal fingerprints.
func Fingerprint(sessions []telemetry.SessionSummary, extra ...string) uuid.UUID {
	var b strings.Builder
	for _, e := range extra {
		b.WriteString(e)
		b.WriteByte(0x1e)
	}
	for _, s := range sessions {
		for _, f := range []string{
			s.ID, s.TrackName, s.CarModel, s.SessionType, s.TrackCondition,
			strconv.FormatInt(s.SessionDate.UnixNano(), 10),
			strconv.FormatInt(int64(s.BestLapTime), 10),
			strconv.Itoa(s.LapCount),
		} {
			b.WriteString(f)
			b.WriteByte(0x1f)
		}
		b.WriteByte(0x1e)
	}
	return uuid.NewSHA1(fingerprintSpace, []byte(b.String()))
}

// CacheConfig controls a Cache.
type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int // 0 disables caching
	Partitions int // >1 aggregates in parallel
	Location   *time.Location
	Options    []Option
}

type cacheEntry struct {
	stored        time.Time
	dashboard     *DashboardStats
	distributions *Distributions
}

// Cache memoizes dashboard results keyed by input fingerprint. It wraps the
// pure functions in this package and is safe for concurrent use.
type Cache struct {
	cfg   CacheConfig
	clock timeutil.Clock

	mu      sync.Mutex
	entries map[uuid.UUID]*cacheEntry
}

// NewCache creates a cache. A nil clock uses the real clock.
func NewCache(cfg CacheConfig, clock timeutil.Clock) *Cache {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Cache{
		cfg:     cfg,
		clock:   clock,
		entries: make(map[uuid.UUID]*cacheEntry),
	}
}

// Dashboard returns the aggregate statistics for sessions.
func (c *Cache) Dashboard(ctx context.Context, sessions []telemetry.SessionSummary) (DashboardStats, error) {
	key := Fingerprint(sessions, "dashboard")
	if e := c.lookup(key); e != nil && e.dashboard != nil {
		monitoring.Diagf("dashboard cache hit %s", key)
		return *e.dashboard, nil
	}

	var (
		stats DashboardStats
		err   error
	)
	if c.cfg.Partitions > 1 {
		stats, err = AggregateParallel(ctx, sessions, c.cfg.Partitions, c.cfg.Options...)
	} else {
		stats, err = Aggregate(sessions, c.cfg.Options...)
	}
	if err != nil {
		return DashboardStats{}, err
	}
	c.store(key, func(e *cacheEntry) { e.dashboard = &stats })
	return stats, nil
}

// Distributions returns the dashboard breakdowns for sessions. The returned
// slices are copies the caller may modify.
func (c *Cache) Distributions(sessions []telemetry.SessionSummary) Distributions {
	loc := c.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	key := Fingerprint(sessions, "distributions", loc.String())
	if e := c.lookup(key); e != nil && e.distributions != nil {
		monitoring.Diagf("distributions cache hit %s", key)
		return cloneDistributions(*e.distributions)
	}
	d := ComputeDistributions(sessions, loc)
	stored := cloneDistributions(d)
	c.store(key, func(e *cacheEntry) { e.distributions = &stored })
	return d
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireLocked()
	return len(c.entries)
}

func (c *Cache) lookup(key uuid.UUID) *cacheEntry {
	if c.cfg.MaxEntries <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.expired(e) {
		delete(c.entries, key)
		return nil
	}
	return e
}

func (c *Cache) store(key uuid.UUID, set func(*cacheEntry)) {
	if c.cfg.MaxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && !c.expired(e) {
		set(e)
		return
	}
	c.expireLocked()
	for len(c.entries) >= c.cfg.MaxEntries {
		c.evictOldestLocked()
	}
	e := &cacheEntry{stored: c.clock.Now()}
	set(e)
	c.entries[key] = e
}

func (c *Cache) expired(e *cacheEntry) bool {
	return c.cfg.TTL > 0 && c.clock.Since(e.stored) >= c.cfg.TTL
}

func (c *Cache) expireLocked() {
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey uuid.UUID
		oldest    time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.stored.Before(oldest) {
			oldestKey, oldest, found = k, e.stored, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		monitoring.Diagf("evicted cache entry %s", oldestKey)
	}
}

func cloneDistributions(d Distributions) Distributions {
	return Distributions{
		Tracks:   slices.Clone(d.Tracks),
		Progress: slices.Clone(d.Progress),
		Activity: slices.Clone(d.Activity),
	}
}
