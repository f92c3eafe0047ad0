package meta

import (
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/model/types"
	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/pkg/fiberstore"
	"github.com/kvv-bao/profiler/internal/pkg/middlewares"
	"github.com/kvv-bao/profiler/internal/server/svr"
	"github.com/kvv-bao/profiler/internal/service"
	"github.com/kvv-bao/profiler/internal/util/rekuest"
)

type AdminController struct {
	fx.In

	ProfileTreeService *service.ProfileTree
	Redis              *redis.Client
	RedSync            *redsync.Redsync
}

func RegisterAdmin(admin *svr.Admin, c AdminController) {
	idempotent := middlewares.Idempotency(middlewares.IdempotencyConfig{
		Lifetime:            time.Hour * 24,
		KeyHeader:           middlewares.HeaderIdempotencyKey,
		KeepResponseHeaders: []string{fiber.HeaderContentType},
		Storage:             fiberstore.NewRedis(c.Redis, "idempotency:admin"),
		RedSync:             c.RedSync,
	})

	admin.Post("/profile-tree/rebuild", idempotent, c.Rebuild)
	admin.Post("/profile-tree/reload", c.Reload)
}

// Rebuild builds, persists and publishes a new profile tree.
func (c *AdminController) Rebuild(ctx *fiber.Ctx) error {
	var req types.RebuildRequest
	if len(ctx.Body()) > 0 {
		if err := rekuest.ValidBody(ctx, &req); err != nil {
			return err
		}
	}

	pt, err := c.ProfileTreeService.Rebuild(ctx.UserContext(), req.DatasetVersion.ValueOrZero())
	if errors.Is(err, service.ErrRebuildInProgress) {
		return apierr.ErrConflict.Msg("a profile tree rebuild is already in progress")
	}
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(types.RebuildResponse{
		SnapshotID:     pt.SnapshotID(),
		DatasetVersion: pt.DatasetVersion(),
		ParameterHash:  pt.ParameterHash(),
		BuiltAt:        pt.BuiltAt().Format(time.RFC3339),
		Nodes:          pt.Len(),
		Leaves:         pt.Stats().Leaves,
		RootLabel:      pt.RootLabel().String(),
	})
}

// Reload republishes the most recently persisted snapshot.
func (c *AdminController) Reload(ctx *fiber.Ctx) error {
	if err := c.ProfileTreeService.LoadLatest(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"snapshotId": c.ProfileTreeService.Current().SnapshotID(),
	})
}
