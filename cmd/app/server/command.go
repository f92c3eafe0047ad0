package server

import (
	"github.com/urfave/cli/v2"

	"github.com/kvv-bao/profiler/internal/app"
	"github.com/kvv-bao/profiler/internal/app/appcontext"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "start the HTTP server and the rebuild worker",
		Action: func(c *cli.Context) error {
			app.New(appcontext.Declare(appcontext.EnvServer)).Run()
			return nil
		},
	}
}
