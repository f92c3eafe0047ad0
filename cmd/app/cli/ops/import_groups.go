package ops

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/cmd/app/cli/offline"
	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/model"
	"github.com/kvv-bao/profiler/internal/repo"
)

type importGroupsDeps struct {
	fx.In

	HistoricalGroupRepo *repo.HistoricalGroup
}

func importGroupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "import-groups",
		Usage: "load historical records from a JSON file into the historical_groups table",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "historical records (JSON array); - for stdin", Required: true},
			&cli.StringFlag{Name: "dataset-version", Usage: "dataset version the records belong to", Required: true},
			&cli.IntFlag{Name: "batch-size", Value: 1000},
		},
		Action: withDeps(func(c *cli.Context, deps importGroupsDeps) error {
			records, err := offline.ReadRecords(c.String("input"))
			if err != nil {
				return err
			}

			groups := toGroups(c.String("dataset-version"), records)
			if err := deps.HistoricalGroupRepo.BulkInsert(c.Context, groups, c.Int("batch-size")); err != nil {
				return err
			}

			log.Info().
				Str("evt.name", "cli.import.done").
				Str("datasetVersion", c.String("dataset-version")).
				Int("groups", len(groups)).
				Msg("historical groups imported")
			return nil
		}),
	}
}

func toGroups(datasetVersion string, records []profiletree.HistoricalRecord) []*model.HistoricalGroup {
	return lo.Map(records, func(r profiletree.HistoricalRecord, _ int) *model.HistoricalGroup {
		return &model.HistoricalGroup{
			DatasetVersion: datasetVersion,
			Path:           r.Path,
			Count:          r.Count,
			HitCount:       r.HitCount,
			RejectionCount: r.RejectionCount,
		}
	})
}
