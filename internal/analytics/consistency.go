// Package analytics derives dashboard statistics and distributions from
// session summaries. Every function here is a pure computation over its
// arguments: inputs are never mutated and results are freshly allocated, so
// all of them are safe for concurrent use.
package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// ErrInvalidInput is the sentinel shared with the telemetry package.
var ErrInvalidInput = telemetry.ErrInvalidInput

// PerfectConsistency is reported when there are fewer than two lap times.
const PerfectConsistency = 100.0

// ConsistencyScore rates lap-time dispersion on a 0-100 scale as
// clamp(100 - CV, 0, 100), where CV is the population coefficient of
// variation in percent. Fewer than two laps score 100. Lap times must be
// strictly positive and finite.
func ConsistencyScore(lapTimesMs []float64) (float64, error) {
	for i, v := range lapTimesMs {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("lap time %d = %v: %w", i, v, ErrInvalidInput)
		}
	}
	if len(lapTimesMs) < 2 {
		return PerfectConsistency, nil
	}
	mean, variance := stat.PopMeanVariance(lapTimesMs, nil)
	return scoreFrom(mean, variance), nil
}

func scoreFrom(mean, variance float64) float64 {
	if mean <= 0 || variance < 0 || math.IsNaN(variance) {
		return 0
	}
	cv := math.Sqrt(variance) / mean * 100
	return clamp(100-cv, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Moments accumulates count, mean and the sum of squared deviations so lap
// time dispersion can be built incrementally or merged across partitions.
type Moments struct {
	N    int
	Mean float64
	M2   float64
}

// MomentsOf computes the moments of xs in one batch.
func MomentsOf(xs []float64) Moments {
	if len(xs) == 0 {
		return Moments{}
	}
	mean, variance := stat.PopMeanVariance(xs, nil)
	return Moments{N: len(xs), Mean: mean, M2: variance * float64(len(xs))}
}

// Add folds one observation in using Welford's update.
func (m *Moments) Add(x float64) {
	m.N++
	delta := x - m.Mean
	m.Mean += delta / float64(m.N)
	m.M2 += delta * (x - m.Mean)
}

// Merge combines o into m with Chan et al.'s pairwise formula.
func (m *Moments) Merge(o Moments) {
	if o.N == 0 {
		return
	}
	if m.N == 0 {
		*m = o
		return
	}
	n := m.N + o.N
	delta := o.Mean - m.Mean
	m.Mean += delta * float64(o.N) / float64(n)
	m.M2 += o.M2 + delta*delta*float64(m.N)*float64(o.N)/float64(n)
	m.N = n
}

// PopVariance returns the population variance, or 0 with no observations.
func (m Moments) PopVariance() float64 {
	if m.N == 0 {
		return 0
	}
	return m.M2 / float64(m.N)
}

// Score applies the consistency formula to the accumulated moments.
func (m Moments) Score() float64 {
	if m.N < 2 {
		return PerfectConsistency
	}
	return scoreFrom(m.Mean, m.PopVariance())
}
