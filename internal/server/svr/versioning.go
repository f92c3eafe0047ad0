package svr

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/pkg/middlewares"
)

type V1 struct {
	fiber.Router
}

type Admin struct {
	fiber.Router
}

type Meta struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App, conf *appconfig.Config) (*V1, *Admin, *Meta) {
	v1 := app.Group("/api/v1")
	admin := app.Group("/api/_/admin", middlewares.AdminAuth(conf.AdminKey))
	meta := app.Group("/api/_")

	return &V1{Router: v1}, &Admin{Router: admin}, &Meta{Router: meta}
}
