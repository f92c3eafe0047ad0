package rekuest

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"

	"github.com/kvv-bao/profiler/internal/util/i18n"
)

const LocalsKeyTranslator = "T"

// TranslatorFromCtx returns the translator chosen by the i18n middleware, falling back to
// English when the middleware did not run.
func TranslatorFromCtx(ctx *fiber.Ctx) ut.Translator {
	if tr, ok := ctx.Locals(LocalsKeyTranslator).(ut.Translator); ok {
		return tr
	}
	return i18n.UT.GetFallback()
}
