package profiletree

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("profiletree")

// BuildStats reports how each stage of a build shaped the tree.
type BuildStats struct {
	Records              int `json:"records" msgpack:"records"`
	SplitNodes           int `json:"splitNodes" msgpack:"splitNodes"`
	FilteredNodes        int `json:"filteredNodes" msgpack:"filteredNodes"`
	NeutralRemoved       int `json:"neutralRemoved" msgpack:"neutralRemoved"`
	Collapsed            int `json:"collapsed" msgpack:"collapsed"`
	ShallowLeavesRemoved int `json:"shallowLeavesRemoved" msgpack:"shallowLeavesRemoved"`
	Nodes                int `json:"nodes" msgpack:"nodes"`
	Leaves               int `json:"leaves" msgpack:"leaves"`
	Depth                int `json:"depth" msgpack:"depth"`
}

type buildOptions struct {
	snapshotID     string
	datasetVersion string
	now            func() time.Time
}

type BuildOption func(*buildOptions)

// WithSnapshotID sets the snapshot id instead of generating a new ULID.
func WithSnapshotID(id string) BuildOption {
	return func(o *buildOptions) {
		o.snapshotID = id
	}
}

// WithDatasetVersion records the version of the aggregated dataset the records come from.
func WithDatasetVersion(version string) BuildOption {
	return func(o *buildOptions) {
		o.datasetVersion = version
	}
}

// WithClock replaces time.Now for the BuiltAt timestamp.
func WithClock(now func() time.Time) BuildOption {
	return func(o *buildOptions) {
		o.now = now
	}
}

// Build runs split, group size filter, classification and pruning over records and freezes
// the result. conf is copied; the returned tree shares no state with the caller.
func Build(ctx context.Context, conf Config, records []HistoricalRecord, opts ...BuildOption) (*ProfileTree, error) {
	o := buildOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	conf = conf.clone()
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "profiletree.build", trace.WithAttributes(
		attribute.Int("profiletree.records", len(records)),
		attribute.String("profiletree.dataset_version", o.datasetVersion),
	))
	defer span.End()

	t, stats, err := runStages(ctx, conf, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	nodes := freeze(t)
	pt := &ProfileTree{
		snapshotID:     o.snapshotID,
		builtAt:        o.now().UTC(),
		datasetVersion: o.datasetVersion,
		conf:           conf,
		parameterHash:  conf.ParameterSet().Hash(),
		nodes:          nodes,
	}
	if pt.snapshotID == "" {
		pt.snapshotID = strings.ToLower(ulid.Make().String())
	}
	stats.Nodes = pt.Len()
	stats.Leaves = pt.Leaves()
	stats.Depth = pt.Depth()
	pt.stats = stats

	span.SetAttributes(
		attribute.String("profiletree.snapshot_id", pt.snapshotID),
		attribute.Int("profiletree.nodes", stats.Nodes),
	)
	return pt, nil
}

func runStages(ctx context.Context, conf Config, records []HistoricalRecord) (*Tree, BuildStats, error) {
	stats := BuildStats{Records: len(records)}

	var t *Tree
	err := stage(ctx, "split", func(ctx context.Context) (err error) {
		t, err = Split(ctx, conf.Features, records, conf.BuildConcurrency)
		if err == nil {
			stats.SplitNodes = t.Len()
		}
		return err
	})
	if err != nil {
		return nil, stats, err
	}

	if err := stage(ctx, "filter", func(context.Context) error {
		stats.FilteredNodes = FilterGroups(t, conf)
		return nil
	}); err != nil {
		return nil, stats, err
	}

	if err := stage(ctx, "classify", func(context.Context) error {
		return Classify(t, conf)
	}); err != nil {
		return nil, stats, err
	}

	if err := stage(ctx, "prune", func(context.Context) error {
		ps := Prune(t)
		stats.NeutralRemoved = ps.NeutralRemoved
		stats.Collapsed = ps.Collapsed
		stats.ShallowLeavesRemoved = FilterShallowLeaves(t, conf.MinProfileDepth)
		return nil
	}); err != nil {
		return nil, stats, err
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, errors.Wrap(err, "build interrupted")
	}
	return t, stats, nil
}

func stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "profiletree.stage."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.WithMessage(err, name)
	}
	return nil
}
