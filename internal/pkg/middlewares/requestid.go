package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kvv-bao/profiler/internal/pkg/flog"
)

// RequestID copies the request id assigned by the logger chain into the fiber locals.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := flog.IDFromFiberCtx(c); ok {
			c.Locals(LocalsKeyRequestID, id.String())
		}
		return c.Next()
	}
}
