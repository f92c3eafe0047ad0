package middlewares

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/rs/zerolog/log"

	"github.com/kvv-bao/profiler/internal/pkg/apierr"
)

// AdminAuth accepts requests carrying "Authorization: Bearer <key>". An empty key rejects
// every request.
func AdminAuth(key string) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(c *fiber.Ctx, presented string) (bool, error) {
			if key == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Warn().
				Str("evt.name", "http.admin.unauthorized").
				Str("ip", c.IP()).
				Str("path", c.Path()).
				Msg("rejected admin request")
			return apierr.ErrUnauthorized
		},
	})
}
