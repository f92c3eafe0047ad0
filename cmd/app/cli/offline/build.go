package offline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/pkg/logger"
	"github.com/kvv-bao/profiler/internal/service"
	"github.com/kvv-bao/profiler/internal/util/recordfilter"
)

type buildOptions struct {
	input          string
	output         string
	filter         string
	datasetVersion string
	snapshotID     string
}

func BuildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "build a profile tree from a JSON file of historical records and write its audit document",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "historical records (JSON array); - for stdin", Required: true},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "audit document destination; - for stdout", Value: stdio},
			&cli.StringFlag{Name: "filter", Usage: "record filter expression, overriding PROFILER_PROFILE_RECORD_FILTER"},
			&cli.StringFlag{Name: "dataset-version", Usage: "dataset version recorded on the tree"},
			&cli.StringFlag{Name: "snapshot-id", Usage: "snapshot id of the tree; generated when empty"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug output"},
		},
		Action: func(c *cli.Context) error {
			logger.ConfigureConsole(c.Bool("verbose"))

			ps, err := appconfig.ParseProfile()
			if err != nil {
				return err
			}
			conf, err := ps.ProfileTreeConfig()
			if err != nil {
				return err
			}

			opts := buildOptions{
				input:          c.String("input"),
				output:         c.String("output"),
				filter:         ps.ProfileRecordFilter,
				datasetVersion: c.String("dataset-version"),
				snapshotID:     c.String("snapshot-id"),
			}
			if c.IsSet("filter") {
				opts.filter = c.String("filter")
			}

			_, err = runBuild(c.Context, conf, opts, os.Stdout)
			return err
		},
	}
}

func runBuild(ctx context.Context, conf profiletree.Config, opts buildOptions, stdout io.Writer) (*profiletree.ProfileTree, error) {
	filter, err := recordfilter.Compile(opts.filter)
	if err != nil {
		return nil, err
	}

	records, err := ReadRecords(opts.input)
	if err != nil {
		return nil, err
	}
	loaded := len(records)
	if records, err = filter.Apply(records); err != nil {
		return nil, err
	}

	buildOpts := []profiletree.BuildOption{profiletree.WithDatasetVersion(opts.datasetVersion)}
	if opts.snapshotID != "" {
		buildOpts = append(buildOpts, profiletree.WithSnapshotID(opts.snapshotID))
	}

	start := time.Now()
	pt, err := profiletree.Build(ctx, conf, records, buildOpts...)
	if err != nil {
		return nil, err
	}
	service.LogBuildStats(pt, loaded, time.Since(start))

	if err := writeJSON(opts.output, stdout, pt.Document()); err != nil {
		return nil, err
	}

	log.Info().
		Str("evt.name", "cli.build.written").
		Str("output", opts.output).
		Msg("audit document written")
	return pt, nil
}
