package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/model/types"
	"github.com/kvv-bao/profiler/internal/pkg/cachectrl"
	"github.com/kvv-bao/profiler/internal/server/svr"
	"github.com/kvv-bao/profiler/internal/service"
	"github.com/kvv-bao/profiler/internal/util/rekuest"
)

const (
	defaultSnapshotsLimit = 20

	// a published tree may be replaced by the next rebuild; a named snapshot never changes
	currentMaxAge  = time.Minute
	snapshotMaxAge = 24 * time.Hour
)

type ProfileTree struct {
	fx.In

	ProfileTreeService *service.ProfileTree
}

func RegisterProfileTree(v1 *svr.V1, c ProfileTree) {
	v1.Get("/profile-tree", c.Document)
	v1.Get("/profile-tree/profiles", c.Profiles)
	v1.Get("/profile-tree/snapshots", c.Snapshots)
}

// Document returns the audit document of the published tree, or of the snapshot given by the
// snapshotId query parameter.
func (c *ProfileTree) Document(ctx *fiber.Ctx) error {
	var q types.ProfileTreeQuery
	if err := rekuest.ValidQuery(ctx, &q); err != nil {
		return err
	}

	doc, err := c.ProfileTreeService.Document(ctx.UserContext(), q.SnapshotID)
	if err != nil {
		return err
	}

	maxAge := currentMaxAge
	if q.SnapshotID != "" {
		maxAge = snapshotMaxAge
	}
	if cachectrl.OptIn(ctx, doc.SnapshotID, doc.BuiltAt, maxAge) {
		return ctx.SendStatus(fiber.StatusNotModified)
	}

	return ctx.JSON(doc)
}

func (c *ProfileTree) Profiles(ctx *fiber.Ctx) error {
	profiles, err := c.ProfileTreeService.Profiles()
	if err != nil {
		return err
	}

	if cachectrl.OptIn(ctx, profiles.SnapshotID, profiles.BuiltAt, currentMaxAge) {
		return ctx.SendStatus(fiber.StatusNotModified)
	}

	return ctx.JSON(profiles)
}

func (c *ProfileTree) Snapshots(ctx *fiber.Ctx) error {
	var q types.SnapshotsQuery
	if err := rekuest.ValidQuery(ctx, &q); err != nil {
		return err
	}
	if q.Limit == 0 {
		q.Limit = defaultSnapshotsLimit
	}

	snapshots, err := c.ProfileTreeService.Snapshots(ctx.UserContext(), q.Limit)
	if err != nil {
		return err
	}

	cachectrl.OptOut(ctx)
	return ctx.JSON(fiber.Map{
		"snapshots": snapshots,
	})
}
