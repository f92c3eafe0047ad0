package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/kvv-bao/profiler/cmd/app/cli/offline"
	"github.com/kvv-bao/profiler/cmd/app/cli/ops"
	"github.com/kvv-bao/profiler/cmd/app/server"
	"github.com/kvv-bao/profiler/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "profiler",
		Description: "Builds rule-based profile trees from aggregated historical visa-application outcomes and matches new applications against them. Built with Go, fiber, bun and go.uber.org/fx. Uses NATS to fan out published trees and Redis for locking and caching.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			offline.BuildCommand(),
			offline.MatchCommand(),
			ops.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
