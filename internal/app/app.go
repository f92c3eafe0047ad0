package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/app/appcontext"
	"github.com/kvv-bao/profiler/internal/controller"
	"github.com/kvv-bao/profiler/internal/infra"
	"github.com/kvv-bao/profiler/internal/pkg/logger"
	"github.com/kvv-bao/profiler/internal/repo"
	"github.com/kvv-bao/profiler/internal/server"
	"github.com/kvv-bao/profiler/internal/service"
	"github.com/kvv-bao/profiler/internal/workers/calcwkr"
)

func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration are the only two things that are not in the fx graph
	// because some other packages need them to be initialized before fx starts
	logger.Configure(conf)

	baseOpts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Infrastructures
		infra.Module(),

		// Repositories
		repo.Module(),

		// Services
		service.Module(),

		// Global Singleton Inits
		fx.Invoke(infra.SentryInit),
		fx.Invoke(infra.TracingInit),
	}

	if ctx.Env != appcontext.EnvCLI {
		baseOpts = append(baseOpts,
			// Servers
			server.Module(),

			// Controllers are fx#Invoke functions and registered after the services they depend on
			controller.Module(),

			// Workers
			fx.Invoke(calcwkr.Start),
		)
	}

	baseOpts = append(baseOpts,
		// fx Extra Options
		fx.StartTimeout(1*time.Minute),
		// StopTimeout is not typically needed, since we're using fiber's Shutdown(),
		// in which fiber has its own IdleTimeout for controlling the shutdown timeout.
		// It acts as a countermeasure in case the fiber app is not properly shutting down.
		fx.StopTimeout(5*time.Minute),
	)

	return append(baseOpts, additionalOpts...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
