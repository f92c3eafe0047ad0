package meta

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kvv-bao/profiler/internal/pkg/bininfo"
)

func RegisterIndex(app *fiber.App) {
	app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Profiler API v1",
			"version": bininfo.Version,
		})
	})
}
