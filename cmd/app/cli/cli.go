package cli

import (
	"context"

	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/app"
	"github.com/kvv-bao/profiler/internal/app/appcontext"
)

// Start starts the application without the HTTP server and the workers. It returns the app so
// the caller can stop it once done.
func Start(module fx.Option) (*fx.App, error) {
	a := app.New(appcontext.Declare(appcontext.EnvCLI), module)
	return a, a.Start(context.Background())
}
