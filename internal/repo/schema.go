package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/kvv-bao/profiler/internal/model"
)

// CreateSchema creates the tables and indexes of the service when they do not exist yet.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*model.HistoricalGroup)(nil),
		(*model.ProfileTreeSnapshot)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, "failed to create table for %T", m)
		}
	}

	indexes := []*bun.CreateIndexQuery{
		db.NewCreateIndex().
			Model((*model.HistoricalGroup)(nil)).
			Index("historical_groups_dataset_version_idx").
			Column("dataset_version").
			IfNotExists(),
		db.NewCreateIndex().
			Model((*model.ProfileTreeSnapshot)(nil)).
			Index("profile_tree_snapshots_built_at_idx").
			Column("built_at").
			IfNotExists(),
	}
	for _, q := range indexes {
		if _, err := q.Exec(ctx); err != nil {
			return errors.Wrap(err, "failed to create index")
		}
	}

	log.Info().Str("evt.name", "repo.schema.created").Msg("database schema is up to date")
	return nil
}
