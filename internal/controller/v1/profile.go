package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/model/types"
	"github.com/kvv-bao/profiler/internal/pkg/cachectrl"
	"github.com/kvv-bao/profiler/internal/server/svr"
	"github.com/kvv-bao/profiler/internal/service"
	"github.com/kvv-bao/profiler/internal/util/rekuest"
)

type Profile struct {
	fx.In

	MatchService *service.Match
}

func RegisterProfile(v1 *svr.V1, c Profile) {
	v1.Post("/profiles/match", c.Match)
	v1.Post("/profiles/match/batch", c.MatchBatch)
	v1.Get("/profiles/features", c.Features)
}

func query(req types.MatchRequest) service.MatchQuery {
	return service.MatchQuery{
		Values:     req.Values,
		Attributes: req.Attributes,
	}
}

// Match returns the profile of one application.
func (c *Profile) Match(ctx *fiber.Ctx) error {
	var req types.MatchRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	profile, err := c.MatchService.Match(query(req))
	if err != nil {
		return err
	}

	cachectrl.OptOut(ctx)
	return ctx.JSON(profile)
}

// MatchBatch returns the profiles of several applications, all matched against the same tree.
func (c *Profile) MatchBatch(ctx *fiber.Ctx) error {
	var req types.BatchMatchRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	qs := make([]service.MatchQuery, len(req.Applications))
	for i, app := range req.Applications {
		qs[i] = query(app)
	}

	profiles, err := c.MatchService.MatchBatch(qs)
	if err != nil {
		return err
	}

	cachectrl.OptOut(ctx)
	return ctx.JSON(fiber.Map{
		"profiles": profiles,
	})
}

func (c *Profile) Features(ctx *fiber.Ctx) error {
	features, err := c.MatchService.Features()
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"features": features,
	})
}
