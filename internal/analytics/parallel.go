package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/telemetry.report/internal/monitoring"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// AggregateParallel computes the same statistics as Aggregate by splitting
// sessions into partitions, aggregating each concurrently and merging the
// partials in partition order. Consistency is merged from per-partition
// moments, so it agrees with Aggregate to within floating-point rounding.
func AggregateParallel(ctx context.Context, sessions []telemetry.SessionSummary, partitions int, opts ...Option) (DashboardStats, error) {
	o := buildOptions(opts)
	if partitions > len(sessions) {
		partitions = len(sessions)
	}
	if partitions <= 1 {
		if err := ctx.Err(); err != nil {
			return DashboardStats{}, err
		}
		return Aggregate(sessions, opts...)
	}

	parts := make([]*partial, partitions)
	size := (len(sessions) + partitions - 1) / partitions
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < partitions; i++ {
		i := i
		lo := i * size
		hi := min(lo+size, len(sessions))
		if lo >= hi {
			parts[i] = emptyPartial(o.recentWindow)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := newPartial(sessions[lo:hi], lo, o.recentWindow)
			if err != nil {
				return err
			}
			parts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	monitoring.Diagf("aggregated %d sessions across %d partitions", len(sessions), partitions)

	merged := parts[0]
	for _, p := range parts[1:] {
		merged.merge(p)
	}
	return merged.finalize(o), nil
}

func emptyPartial(window int) *partial {
	return &partial{
		tracks: make(map[string]*trackTally),
		cars:   make(map[string]struct{}),
		keep:   2 * window,
	}
}
