package httpserver

import (
	"strconv"

	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/pkg/flog"
)

func handleCustomError(ctx *fiber.Ctx, e *apierr.Error) error {
	flog.WarnFrom(ctx).
		Err(e).
		Str("evt.name", "http.error").
		Int("status", e.StatusCode).
		Msg(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}
	if e.Extras != nil {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

// ErrorHandler renders every error as a JSON body in the apierr.Error shape. Errors that
// are neither an apierr.Error nor a fiber.Error are reported to sentry as internal errors.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var pe *apierr.Error
	if errors.As(err, &pe) {
		return handleCustomError(ctx, pe)
	}

	re := *apierr.ErrInternalError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		re.StatusCode = fe.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = fe.Message
		return handleCustomError(ctx, &re)
	}

	flog.ErrorFrom(ctx).
		Stack().
		Err(err).
		Str("evt.name", "http.error.internal").
		Msg("internal server error")

	if hub := fibersentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetTag("status", strconv.Itoa(re.StatusCode))
		if id, ok := flog.IDFromFiberCtx(ctx); ok {
			hub.Scope().SetTag("request_id", id.String())
		}
		hub.CaptureException(err)
	}

	return handleCustomError(ctx, &re)
}
