package httpserver

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
)

// Run binds the listener on start and shuts the app down gracefully on stop.
func Run(app *fiber.App, conf *appconfig.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", conf.ServiceAddress)
			if err != nil {
				return err
			}

			log.Info().
				Str("evt.name", "http.server.listening").
				Str("address", ln.Addr().String()).
				Msg("http server listening")

			go func() {
				if err := app.Listener(ln); err != nil {
					log.Error().Err(err).Str("evt.name", "http.server.terminated").Msg("server terminated unexpectedly")
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if conf.DevMode {
				return nil
			}
			return app.ShutdownWithContext(ctx)
		},
	})
}
