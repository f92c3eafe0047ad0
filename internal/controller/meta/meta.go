package meta

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/pkg/bininfo"
	"github.com/kvv-bao/profiler/internal/server/svr"
	"github.com/kvv-bao/profiler/internal/service"
)

type Meta struct {
	fx.In

	HealthService *service.Health
}

func RegisterMeta(meta *svr.Meta, c Meta) {
	meta.Get("/bininfo", c.BinInfo)

	// cached for a second to bound the load probes put on the backing stores
	probeCache := cache.New(cache.Config{
		Expiration: time.Second,
	})
	meta.Get("/health", probeCache, c.Health)
	meta.Get("/ready", probeCache, c.Ready)
}

func (c *Meta) BinInfo(ctx *fiber.Ctx) error {
	return ctx.JSON(bininfo.Info())
}

func (c *Meta) Health(ctx *fiber.Ctx) error {
	if err := c.HealthService.Ping(ctx.UserContext()); err != nil {
		return apierr.ErrUnavailable.Msg("unhealthy: %s", err)
	}

	return ctx.JSON(fiber.Map{
		"status": "ok",
	})
}

// Ready additionally requires a published profile tree.
func (c *Meta) Ready(ctx *fiber.Ctx) error {
	if err := c.HealthService.Ready(ctx.UserContext()); err != nil {
		return apierr.ErrUnavailable.Msg("not ready: %s", err)
	}

	return ctx.JSON(fiber.Map{
		"status": "ready",
	})
}
