package server

import (
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/server/httpserver"
	"github.com/kvv-bao/profiler/internal/server/svr"
)

func Module() fx.Option {
	return fx.Module("server",
		fx.Provide(httpserver.Create),
		fx.Provide(svr.CreateEndpointGroups),
		fx.Invoke(httpserver.Run))
}
