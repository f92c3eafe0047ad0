package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/util/rekuest"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*apierr.Error); ok {
				return c.Status(e.StatusCode).SendString(e.ErrorCode)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
}

func TestAdminAuth(t *testing.T) {
	app := newTestApp()
	app.Use(AdminAuth("s3cret"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid key", "Bearer s3cret", fiber.StatusOK},
		{"wrong key", "Bearer nope", fiber.StatusUnauthorized},
		{"missing scheme", "s3cret", fiber.StatusUnauthorized},
		{"missing header", "", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAdminAuthEmptyKey(t *testing.T) {
	app := newTestApp()
	app.Use(AdminAuth(""))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer ")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestInjectI18n(t *testing.T) {
	app := newTestApp()
	app.Use(InjectI18n())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(rekuest.LocalsKeyTranslator).(ut.Translator).Locale())
	})

	tests := []struct {
		acceptLanguage string
		locale         string
	}{
		{"nl-NL,nl;q=0.9,en;q=0.8", "nl"},
		{"en-US", "en"},
		{"fr-FR", "en"},
		{"", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.acceptLanguage, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			req.Header.Set(fiber.HeaderAcceptLanguage, tt.acceptLanguage)
			resp, err := app.Test(req)
			require.NoError(t, err)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.locale, string(body))
		})
	}
}

func TestRequestID(t *testing.T) {
	app := newTestApp()
	Logger(app)
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalsKeyRequestID).(string))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.Equal(t, string(body), resp.Header.Get(HeaderRequestID))
}
