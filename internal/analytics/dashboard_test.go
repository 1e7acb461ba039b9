package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
	"github.com/banshee-data/telemetry.report/internal/testutil"
)

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	for _, in := range [][]telemetry.SessionSummary{nil, {}} {
		got, err := Aggregate(in)
		require.NoError(t, err)

		want := DashboardStats{FavoriteTrack: TrackCount{Name: NoFavoriteTrack}}
		if diff := cmp.Diff(got, want); diff != "" {
			t.Errorf("Aggregate(empty) mismatch (-got +want):\n%s", diff)
		}
	}
}

func TestAggregate_Fixture(t *testing.T) {
	t.Parallel()

	got, err := Aggregate(testutil.Sessions())
	require.NoError(t, err)

	assert.Equal(t, 12, got.TotalSessions)
	assert.Equal(t, 110, got.TotalLaps)
	assert.InDelta(t, 440.0, got.TotalDistanceKm, 1e-9)
	assert.Equal(t, time.Duration(113954545455), got.AverageLapTime)
	assert.Equal(t, 98500*time.Millisecond, got.BestLapTime)
	assert.Equal(t, TrackCount{Name: "Monza", Count: 6}, got.FavoriteTrack)
	assert.Equal(t, 3, got.TracksVisited)
	assert.Equal(t, 2, got.CarsUsed)
	assert.True(t, got.HasConsistency)
	testutil.AssertClose(t, got.ConsistencyScore, 86.38014160730815, 1e-9)
	testutil.AssertClose(t, got.RecentImprovement, -20.30735455543359, 1e-9)
}

func TestAggregate_Properties(t *testing.T) {
	t.Parallel()

	sessions := testutil.Sessions()
	got, err := Aggregate(sessions)
	require.NoError(t, err)

	sum := 0
	lo, hi := time.Duration(0), time.Duration(0)
	for _, s := range sessions {
		sum += s.LapCount
		if !s.HasValidLap() {
			continue
		}
		if lo == 0 || s.BestLapTime < lo {
			lo = s.BestLapTime
		}
		hi = max(hi, s.BestLapTime)
	}
	assert.Equal(t, sum, got.TotalLaps)
	assert.GreaterOrEqual(t, got.AverageLapTime, lo)
	assert.LessOrEqual(t, got.AverageLapTime, hi)
	assert.Equal(t, lo, got.BestLapTime)

	again, err := Aggregate(sessions)
	require.NoError(t, err)
	assert.Equal(t, got, again, "aggregate is idempotent")
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	sessions := testutil.Sessions()
	before := testutil.Sessions()
	_, err := Aggregate(sessions)
	require.NoError(t, err)
	assert.Equal(t, before, sessions)
}

func TestAggregate_FewValidLaps(t *testing.T) {
	t.Parallel()

	got, err := Aggregate([]telemetry.SessionSummary{
		testutil.Session("a", "Monza", "GT3", 2, 0, 4),
		testutil.Session("b", "Monza", "GT3", 1, 90000, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, got.AverageLapTime)
	assert.Equal(t, 90*time.Second, got.BestLapTime)
	assert.Equal(t, PerfectConsistency, got.ConsistencyScore)
	assert.False(t, got.HasConsistency)

	got, err = Aggregate([]telemetry.SessionSummary{testutil.Session("a", "Monza", "GT3", 1, 0, 0)})
	require.NoError(t, err)
	assert.Zero(t, got.AverageLapTime)
	assert.Zero(t, got.BestLapTime)
	assert.Equal(t, PerfectConsistency, got.ConsistencyScore)
}

func TestAggregate_FavoriteTrack(t *testing.T) {
	t.Parallel()

	sessions := []telemetry.SessionSummary{
		{ID: "1", TrackName: "Spa"},
		{ID: "2", TrackName: "Monza"},
		{ID: "3", TrackName: ""},
		{ID: "4", TrackName: "Monza"},
		{ID: "5", TrackName: "Spa"},
		{ID: "6", TrackName: ""},
		{ID: "7", TrackName: ""},
	}

	tests := []struct {
		name string
		opts []Option
		want TrackCount
	}{
		{"first seen by default", nil, TrackCount{Name: "Spa", Count: 2}},
		{"explicit first seen", []Option{WithTieBreak(TieFirstSeen)}, TrackCount{Name: "Spa", Count: 2}},
		{"alphabetical", []Option{WithTieBreak(TieAlphabetical)}, TrackCount{Name: "Monza", Count: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(sessions, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.FavoriteTrack)
			assert.Equal(t, 2, got.TracksVisited, "unnamed tracks are not counted")
		})
	}

	got, err := Aggregate([]telemetry.SessionSummary{{ID: "x"}})
	require.NoError(t, err)
	assert.Equal(t, TrackCount{Name: NoFavoriteTrack}, got.FavoriteTrack)
}

func TestAggregate_RecentImprovement(t *testing.T) {
	t.Parallel()

	t.Run("faster recent sessions", func(t *testing.T) {
		var sessions []telemetry.SessionSummary
		for i := 0; i < 5; i++ {
			sessions = append(sessions, testutil.Session("old", "Monza", "GT3", 20+i, 100000, 1))
			sessions = append(sessions, testutil.Session("new", "Monza", "GT3", i, 95000, 1))
		}
		got, err := Aggregate(sessions)
		require.NoError(t, err)
		testutil.AssertClose(t, got.RecentImprovement, 5.0, 1e-9)
	})

	t.Run("previous window empty", func(t *testing.T) {
		got, err := Aggregate(testutil.Sessions()[:5])
		require.NoError(t, err)
		assert.Zero(t, got.RecentImprovement)
	})

	t.Run("previous mean zero", func(t *testing.T) {
		sessions := []telemetry.SessionSummary{testutil.Session("no-lap", "Monza", "GT3", 10, 0, 2)}
		for i := 0; i < 5; i++ {
			sessions = append(sessions, testutil.Session("n", "Monza", "GT3", i, 90000, 1))
		}
		got, err := Aggregate(sessions)
		require.NoError(t, err)
		assert.Zero(t, got.RecentImprovement)
	})

	t.Run("equal dates keep input order", func(t *testing.T) {
		var sessions []telemetry.SessionSummary
		for i := 0; i < 5; i++ {
			sessions = append(sessions, testutil.Session("r", "Monza", "GT3", 0, 100000, 1))
		}
		sessions = append(sessions, testutil.Session("p", "Monza", "GT3", 0, 200000, 1))
		got, err := Aggregate(sessions)
		require.NoError(t, err)
		testutil.AssertClose(t, got.RecentImprovement, 50.0, 1e-9)
	})

	t.Run("custom window", func(t *testing.T) {
		sessions := []telemetry.SessionSummary{
			testutil.Session("a", "Monza", "GT3", 3, 100000, 1),
			testutil.Session("b", "Monza", "GT3", 2, 100000, 1),
			testutil.Session("c", "Monza", "GT3", 1, 90000, 1),
			testutil.Session("d", "Monza", "GT3", 0, 90000, 1),
		}
		got, err := Aggregate(sessions, WithRecentWindow(2))
		require.NoError(t, err)
		testutil.AssertClose(t, got.RecentImprovement, 10.0, 1e-9)
	})
}

func TestAggregate_TrackLength(t *testing.T) {
	got, err := Aggregate(testutil.Sessions(), WithTrackLengthKm(5.8))
	require.NoError(t, err)
	assert.InDelta(t, 638.0, got.TotalDistanceKm, 1e-9)

	got, err = Aggregate(testutil.Sessions(), WithTrackLengthKm(-1), WithRecentWindow(0), nil)
	require.NoError(t, err)
	assert.InDelta(t, 440.0, got.TotalDistanceKm, 1e-9, "invalid options are ignored")
}

func TestAggregate_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Aggregate([]telemetry.SessionSummary{{ID: "bad", LapCount: -3}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Aggregate([]telemetry.SessionSummary{{ID: "bad", BestLapTime: -time.Second}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseTieBreak(t *testing.T) {
	got, err := ParseTieBreak("Alphabetical")
	require.NoError(t, err)
	assert.Equal(t, TieAlphabetical, got)

	got, err = ParseTieBreak("")
	require.NoError(t, err)
	assert.Equal(t, TieFirstSeen, got)

	_, err = ParseTieBreak("random")
	assert.Error(t, err)

	assert.Equal(t, "first_seen", TieFirstSeen.String())
	assert.Equal(t, "alphabetical", TieAlphabetical.String())
}
