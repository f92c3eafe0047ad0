package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/kvv-bao/profiler/internal/model"
	"github.com/kvv-bao/profiler/internal/repo/selector"
)

type ProfileTreeSnapshot struct {
	db *bun.DB

	sel selector.S[model.ProfileTreeSnapshot]
}

func NewProfileTreeSnapshot(db *bun.DB) *ProfileTreeSnapshot {
	return &ProfileTreeSnapshot{
		db:  db,
		sel: selector.New[model.ProfileTreeSnapshot](db),
	}
}

func (r *ProfileTreeSnapshot) GetSnapshotByID(ctx context.Context, id string) (*model.ProfileTreeSnapshot, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("snapshot_id = ?", id)
	})
}

func (r *ProfileTreeSnapshot) GetLatestSnapshot(ctx context.Context) (*model.ProfileTreeSnapshot, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("built_at DESC").Limit(1)
	})
}

// GetRecentSnapshots lists the most recent snapshots without their documents.
func (r *ProfileTreeSnapshot) GetRecentSnapshots(ctx context.Context, limit int) ([]*model.ProfileTreeSnapshot, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			ExcludeColumn("document").
			OrderExpr("built_at DESC").
			Limit(limit)
	})
}

func (r *ProfileTreeSnapshot) SaveSnapshot(ctx context.Context, snapshot *model.ProfileTreeSnapshot) error {
	_, err := r.db.NewInsert().
		Model(snapshot).
		On("CONFLICT (snapshot_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to save profile tree snapshot %s", snapshot.SnapshotID)
	}
	return nil
}
