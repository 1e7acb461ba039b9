package analytics

import (
	"fmt"
	"strings"
)

// TieBreak decides the favorite track when session counts are equal.
type TieBreak int

const (
	// TieFirstSeen keeps the track encountered first in input order.
	TieFirstSeen TieBreak = iota
	// TieAlphabetical keeps the lexically smallest track name.
	TieAlphabetical
)

func (t TieBreak) String() string {
	switch t {
	case TieFirstSeen:
		return "first_seen"
	case TieAlphabetical:
		return "alphabetical"
	default:
		return fmt.Sprintf("TieBreak(%d)", int(t))
	}
}

// ParseTieBreak maps a config value to a TieBreak.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_seen":
		return TieFirstSeen, nil
	case "alphabetical":
		return TieAlphabetical, nil
	}
	return TieFirstSeen, fmt.Errorf("unknown tie break %q", s)
}

const (
	DefaultTrackLengthKm = 4.0
	DefaultRecentWindow  = 5
)

type options struct {
	trackLengthKm float64
	recentWindow  int
	tieBreak      TieBreak
}

// Option tunes Aggregate and AggregateParallel.
type Option func(*options)

// WithTrackLengthKm sets the assumed distance of one lap. Non-positive
// values are ignored.
func WithTrackLengthKm(km float64) Option {
	return func(o *options) {
		if km > 0 {
			o.trackLengthKm = km
		}
	}
}

// WithRecentWindow sets how many sessions form the recent and previous
// groups for the improvement figure. Values below 1 are ignored.
func WithRecentWindow(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.recentWindow = n
		}
	}
}

// WithTieBreak sets the favorite-track tie policy.
func WithTieBreak(t TieBreak) Option {
	return func(o *options) {
		o.tieBreak = t
	}
}

func buildOptions(opts []Option) options {
	o := options{
		trackLengthKm: DefaultTrackLengthKm,
		recentWindow:  DefaultRecentWindow,
		tieBreak:      TieFirstSeen,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
