package rekuest

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	nlTranslations "github.com/go-playground/validator/v10/translations/nl"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/util/i18n"
)

var Validate = newValidator()

func init() {
	entr, _ := i18n.UT.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(Validate, entr); err != nil {
		log.Warn().Err(err).Str("locale", "en").Msg("could not register translation")
	}

	nltr, _ := i18n.UT.GetTranslator("nl")
	if err := nlTranslations.RegisterDefaultTranslations(Validate, nltr); err != nil {
		log.Warn().Err(err).Str("locale", "nl").Msg("could not register translation")
	}

	messages := map[ut.Translator]string{
		entr: "{0} must not contain control characters",
		nltr: "{0} mag geen controletekens bevatten",
	}
	for tr, text := range messages {
		text := text
		err := Validate.RegisterTranslation("charvalue", tr, func(ut ut.Translator) error {
			return ut.Add("charvalue", text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("charvalue", fe.Field())
			return t
		})
		if err != nil {
			log.Warn().Err(err).Str("locale", tr.Locale()).Msg("could not register translation for function charvalue")
		}
	}
}

type ErrorResponse struct {
	Field     string `json:"field,omitempty"`
	Violation string `json:"violation"`
	Message   string `json:"message"`
}

func translate(utt ut.Translator, ve validator.ValidationErrors) []*ErrorResponse {
	trans := make([]*ErrorResponse, 0, len(ve))
	for _, fe := range ve {
		trans = append(trans, &ErrorResponse{
			Field:     fe.Namespace(),
			Violation: fe.Tag(),
			Message:   fe.Translate(utt),
		})
	}
	return trans
}

func validateStruct(ctx *fiber.Ctx, s any) []*ErrorResponse {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		panic(err)
	}
	return translate(TranslatorFromCtx(ctx), errs)
}

// ValidBody will get the body from *fiber.Ctx using fiber#BodyParser(),
// and validate it using the validator singleton. If the validation passed it will write the unmarshalled body
// to dest and return a nil, otherwise it will return an error. Notice that dest shall
// always be a pointer.
func ValidBody(ctx *fiber.Ctx, dest any) error {
	if err := ctx.BodyParser(dest); err != nil {
		return apierr.ErrInvalidReq.Msg("invalid request: %s", err)
	}

	return ValidStruct(ctx, dest)
}

func ValidStruct(ctx *fiber.Ctx, dest any) error {
	if err := validateStruct(ctx, dest); err != nil {
		return apierr.NewInvalidViolations(err)
	}

	return nil
}

// ValidQuery parses the query string into dest and validates it.
func ValidQuery(ctx *fiber.Ctx, dest any) error {
	if err := ctx.QueryParser(dest); err != nil {
		return apierr.ErrInvalidReq.Msg("invalid query: %s", err)
	}

	return ValidStruct(ctx, dest)
}
