package profiletree

import (
	"github.com/pkg/errors"
)

// UnknownValue is the dedicated characteristic value that records with a missing value are
// grouped under. During matching it is an ordinary value, never a wildcard.
const UnknownValue = "(unknown)"

// HistoricalRecord is one aggregated group of past applications sharing a path of
// characteristic values.
type HistoricalRecord struct {
	Path           []string `json:"path"`
	Count          int64    `json:"count"`
	HitCount       int64    `json:"hitCount"`
	RejectionCount int64    `json:"rejectionCount"`
}

func (r HistoricalRecord) validate(features int) error {
	switch {
	case len(r.Path) > features:
		return errors.Wrapf(ErrInvalidRecord, "path has %d values, at most %d expected", len(r.Path), features)
	case r.Count < 0:
		return errors.Wrapf(ErrInvalidRecord, "negative count %d", r.Count)
	case r.HitCount < 0 || r.HitCount > r.Count:
		return errors.Wrapf(ErrInvalidRecord, "hitCount %d outside [0,%d]", r.HitCount, r.Count)
	case r.RejectionCount < 0 || r.RejectionCount > r.Count:
		return errors.Wrapf(ErrInvalidRecord, "rejectionCount %d outside [0,%d]", r.RejectionCount, r.Count)
	}
	return nil
}

// valueAt returns the characteristic value of the record at the given level.
func (r HistoricalRecord) valueAt(level int) string {
	if level >= len(r.Path) || r.Path[level] == "" {
		return UnknownValue
	}
	return r.Path[level]
}
