package ops

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "github.com/kvv-bao/profiler/cmd/app/cli"
)

// withDeps starts the application in CLI mode, populates T from it and stops it once fn
// returns.
func withDeps[T any](fn func(c *cli.Context, deps T) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		var deps T
		app, err := cliapp.Start(fx.Populate(&deps))
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Stop(context.Background()); err != nil {
				log.Warn().Err(err).Str("evt.name", "cli.stop.failed").Msg("failed to stop application")
			}
		}()

		return fn(c, deps)
	}
}

func Command() *cli.Command {
	return &cli.Command{
		Name:  "ops",
		Usage: "operate on the database and the published profile tree",
		Subcommands: []*cli.Command{
			migrateCommand(),
			importGroupsCommand(),
			rebuildCommand(),
		},
	}
}
