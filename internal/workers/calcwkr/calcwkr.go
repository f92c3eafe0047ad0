package calcwkr

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/service"
)

const heartbeatKey = "rebuild"

// Rebuilder is the part of service.ProfileTree the worker drives.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

type rebuilderFunc func(ctx context.Context) error

func (f rebuilderFunc) Rebuild(ctx context.Context) error {
	return f(ctx)
}

type WorkerDeps struct {
	fx.In
	ProfileTreeService *service.ProfileTree
}

type Worker struct {
	// count counts batches worker has completed so far
	count int

	// interval describes the interval in-between two rebuilds
	interval time.Duration

	// timeout bounds a single rebuild
	timeout time.Duration

	heartbeatURL string

	rebuilder Rebuilder
}

func Start(conf *appconfig.Config, deps WorkerDeps, lc fx.Lifecycle) {
	if !conf.WorkerEnabled {
		log.Info().Str("evt.name", "worker.calc.disabled").Msg("profile tree rebuild worker is disabled")
		return
	}

	w := &Worker{
		interval:     conf.WorkerInterval,
		timeout:      conf.WorkerTimeout,
		heartbeatURL: conf.WorkerHeartbeatURL[heartbeatKey],
		rebuilder: rebuilderFunc(func(ctx context.Context) error {
			_, err := deps.ProfileTreeService.Rebuild(ctx, "")
			return err
		}),
	}

	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			cancel = w.do()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) do() context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			log.Info().
				Str("evt.name", "worker.calc.batch.started").
				Int("count", w.count).
				Msg("worker batch started")

			if err := w.runOnce(ctx); err != nil {
				log.Error().
					Err(err).
					Str("evt.name", "worker.calc.batch.failed").
					Int("count", w.count).
					Msg("worker batch failed")
			} else {
				log.Info().Str("evt.name", "worker.calc.batch.finished").Int("count", w.count).Msg("worker batch finished")
				w.heartbeat()
			}

			w.count++

			select {
			case <-ctx.Done():
				return
			case <-time.After(w.interval):
			}
		}
	}()

	return cancel
}

func (w *Worker) runOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := observeCalcDuration("ProfileTreeService", func() error {
		return w.rebuilder.Rebuild(ctx)
	})
	if errors.Is(err, service.ErrRebuildInProgress) {
		log.Info().Str("evt.name", "worker.calc.skipped").Msg("another replica is rebuilding the profile tree; skipping")
		return nil
	}
	return err
}

func (w *Worker) heartbeat() {
	if w.heartbeatURL == "" {
		return
	}

	code, _, errs := fiber.Get(w.heartbeatURL).Timeout(10 * time.Second).Bytes()
	if len(errs) > 0 || code >= 400 {
		log.Warn().
			Errs("errors", errs).
			Int("status", code).
			Str("evt.name", "worker.calc.heartbeat.failed").
			Msg("failed to ping worker heartbeat url")
	}
}

func (w *Worker) Count() int {
	return w.count
}
