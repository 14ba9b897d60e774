// Package freshness classifies files into visual freshness buckets by the
// time elapsed since their last modification.
package freshness

import "time"

// Bucket is the visual freshness classification of a file.
type Bucket int

const (
	// None means the file is stale beyond tracking and gets no badge.
	None Bucket = iota
	// Hot means the file was modified within the hot threshold.
	Hot
	// Warm means the file was modified within the warm threshold.
	Warm
	// Cold means the file was modified within the cool threshold.
	Cold
)

// String returns the bucket name for logging and badges.
func (b Bucket) String() string {
	switch b {
	case Hot:
		return "hot"
	case Warm:
		return "warm"
	case Cold:
		return "cold"
	default:
		return "none"
	}
}

// Threshold scale factors applied to the base multiplier.
const (
	hotFactor  = 2
	warmFactor = 10
	coolFactor = 100
)

// Thresholds holds the three bucket boundaries derived from a single base
// duration. Invariant: Hot < Warm < Cool (strictly increasing multiples of
// the same positive base).
type Thresholds struct {
	Hot  time.Duration
	Warm time.Duration
	Cool time.Duration
}

// NewThresholds derives the bucket boundaries from the base multiplier in
// seconds. A non-positive multiplier falls back to 1 second.
func NewThresholds(multiplierSeconds int) Thresholds {
	if multiplierSeconds <= 0 {
		multiplierSeconds = 1
	}
	base := time.Duration(multiplierSeconds) * time.Second
	return Thresholds{
		Hot:  base * hotFactor,
		Warm: base * warmFactor,
		Cool: base * coolFactor,
	}
}

// Classify maps the age of a file into a bucket. Buckets are half-open on
// the lower bound and exclusive on the upper, so a delta exactly at a
// boundary falls into the next (colder) bucket. Timestamps are trusted as
// given; the function is pure.
func (t Thresholds) Classify(lastModified, now time.Time) Bucket {
	delta := now.Sub(lastModified)
	switch {
	case delta < t.Hot:
		return Hot
	case delta < t.Warm:
		return Warm
	case delta < t.Cool:
		return Cold
	default:
		return None
	}
}
