package ops

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/service"
)

type rebuildDeps struct {
	fx.In

	ProfileTreeService *service.ProfileTree
}

func rebuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "rebuild",
		Usage: "build, persist and publish a new profile tree from the historical groups",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dataset-version", Usage: "dataset version to build from; defaults to the configured or latest one"},
		},
		Action: withDeps(func(c *cli.Context, deps rebuildDeps) error {
			pt, err := deps.ProfileTreeService.Rebuild(c.Context, c.String("dataset-version"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, pt.SnapshotID())
			return nil
		}),
	}
}
