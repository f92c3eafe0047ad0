package ops

import (
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/repo"
)

type migrateDeps struct {
	fx.In

	DB *bun.DB
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the tables and indexes the service needs",
		Action: withDeps(func(c *cli.Context, deps migrateDeps) error {
			if err := repo.CreateSchema(c.Context, deps.DB); err != nil {
				return err
			}
			log.Info().Str("evt.name", "cli.migrate.done").Msg("schema is up to date")
			return nil
		}),
	}
}
