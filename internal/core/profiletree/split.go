package profiletree

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Split partitions records into a tree of depth len(features): the root holds every record
// and level i+1 partitions its parent's records by the value of features[i]. A child exists
// for every distinct value. Subtrees below the first level are built concurrently, at most
// concurrency at a time (unbounded when concurrency <= 0); ctx is checked before every
// subtree build.
func Split(ctx context.Context, features []string, records []HistoricalRecord, concurrency int) (*Tree, error) {
	if len(features) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "no features to split on")
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	for i := range records {
		if err := records[i].validate(len(features)); err != nil {
			return nil, errors.WithMessagef(err, "record %d", i)
		}
	}

	t := newTree(features, aggregate(0, []string{}, records))

	groups, keys := partition(records, 0)
	subtrees := make([]*Tree, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, key := range keys {
		if gctx.Err() != nil {
			break
		}
		i, key := i, key
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			subtrees[i] = growSubtree(features, key, groups[key])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "split interrupted")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "split interrupted")
	}

	for _, sub := range subtrees {
		t.graft(rootIndex, sub)
	}
	return t, nil
}

// growSubtree builds the complete subtree of one first-level value.
func growSubtree(features []string, key string, records []HistoricalRecord) *Tree {
	sub := newTree(features, aggregate(1, []string{key}, records))
	sub.grow(rootIndex, records)
	return sub
}

func (t *Tree) grow(parent int, records []HistoricalRecord) {
	depth := t.nodes[parent].depth
	if depth >= len(t.features) {
		return
	}
	groups, keys := partition(records, depth)
	for _, key := range keys {
		path := make([]string, depth+1)
		copy(path, t.nodes[parent].path)
		path[depth] = key

		child := t.add(parent, aggregate(depth+1, path, groups[key]))
		t.grow(child, groups[key])
	}
}

// partition groups records by their value at level and returns the sorted group keys.
func partition(records []HistoricalRecord, level int) (map[string][]HistoricalRecord, []string) {
	groups := lo.GroupBy(records, func(r HistoricalRecord) string {
		return r.valueAt(level)
	})
	keys := lo.Keys(groups)
	sort.Strings(keys)
	return groups, keys
}

func aggregate(depth int, path []string, records []HistoricalRecord) node {
	n := node{
		depth: depth,
		path:  path,
	}
	for _, r := range records {
		n.count += r.Count
		n.hitCount += r.HitCount
		n.rejectionCount += r.RejectionCount
	}
	return n
}
