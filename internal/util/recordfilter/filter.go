// Package recordfilter selects the historical records a build uses through an expr expression.
package recordfilter

import (
	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/pkg/errors"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
)

var ErrInvalidExpr = errors.New("invalid record filter expression")

// RecordContext is the environment an expression is evaluated against, once per record.
type RecordContext struct {
	Path           []string
	Count          int64
	HitCount       int64
	RejectionCount int64
}

// Value returns the characteristic value at level, or the unknown value when missing.
func (c RecordContext) Value(level int) string {
	if level < 0 || level >= len(c.Path) || c.Path[level] == "" {
		return profiletree.UnknownValue
	}
	return c.Path[level]
}

func (c RecordContext) HitRate() float64 {
	hit, _ := profiletree.Rates(c.Count, c.HitCount, c.RejectionCount)
	return hit
}

func (c RecordContext) RejectionRate() float64 {
	_, rejection := profiletree.Rates(c.Count, c.HitCount, c.RejectionCount)
	return rejection
}

// Filter is a compiled record filter. The zero value and a nil *Filter keep every record.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile compiles src, which must evaluate to a bool. An empty src yields a filter keeping
// every record.
func Compile(src string) (*Filter, error) {
	if src == "" {
		return &Filter{}, nil
	}
	program, err := expr.Compile(src, expr.Env(RecordContext{}), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidExpr, "%s: %v", src, err)
	}
	return &Filter{source: src, program: program}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Apply returns the records the expression evaluates to true for, in their original order.
func (f *Filter) Apply(records []profiletree.HistoricalRecord) ([]profiletree.HistoricalRecord, error) {
	if f == nil || f.program == nil {
		return records, nil
	}

	kept := make([]profiletree.HistoricalRecord, 0, len(records))
	for i, r := range records {
		out, err := expr.Run(f.program, RecordContext{
			Path:           r.Path,
			Count:          r.Count,
			HitCount:       r.HitCount,
			RejectionCount: r.RejectionCount,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "record filter failed on record %d", i)
		}
		if out.(bool) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}
