package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/model"
	"github.com/kvv-bao/profiler/internal/repo/selector"
)

type HistoricalGroup struct {
	db *bun.DB

	sel selector.S[model.HistoricalGroup]
}

func NewHistoricalGroup(db *bun.DB) *HistoricalGroup {
	return &HistoricalGroup{
		db:  db,
		sel: selector.New[model.HistoricalGroup](db),
	}
}

// GetLatestDatasetVersion returns the dataset version of the most recently loaded group.
func (r *HistoricalGroup) GetLatestDatasetVersion(ctx context.Context) (string, error) {
	group, err := r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Column("dataset_version").OrderExpr("created_at DESC, group_id DESC").Limit(1)
	})
	if err != nil {
		return "", err
	}
	return group.DatasetVersion, nil
}

// GetRecordsByDatasetVersion loads every group of a dataset version as historical records.
func (r *HistoricalGroup) GetRecordsByDatasetVersion(ctx context.Context, datasetVersion string) ([]profiletree.HistoricalRecord, error) {
	groups, err := r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Column("path", "count", "hit_count", "rejection_count").
			Where("dataset_version = ?", datasetVersion).
			Order("group_id")
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load historical groups of dataset %q", datasetVersion)
	}

	records := make([]profiletree.HistoricalRecord, len(groups))
	for i, g := range groups {
		records[i] = g.Record()
	}
	return records, nil
}

// CountByDatasetVersion returns the number of groups loaded for a dataset version.
func (r *HistoricalGroup) CountByDatasetVersion(ctx context.Context, datasetVersion string) (int, error) {
	return r.sel.Count(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("dataset_version = ?", datasetVersion)
	})
}

// BulkInsert stores groups in batches of batchSize.
func (r *HistoricalGroup) BulkInsert(ctx context.Context, groups []*model.HistoricalGroup, batchSize int) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for start := 0; start < len(groups); start += batchSize {
			end := start + batchSize
			if end > len(groups) {
				end = len(groups)
			}
			batch := groups[start:end]
			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return errors.Wrapf(err, "failed to insert historical groups [%d,%d)", start, end)
			}
		}
		return nil
	})
}
