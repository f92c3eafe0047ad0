package rekuest

import (
	"reflect"
	"unicode"

	"github.com/go-playground/validator/v10"
	"gopkg.in/guregu/null.v3"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("charvalue", charValue)
	validate.RegisterCustomTypeFunc(nullStringValuer, null.String{})
	validate.RegisterCustomTypeFunc(nullIntValuer, null.Int{})

	return validate
}

// charValue rejects characteristic values containing control characters. The empty value is
// allowed: it marks a missing characteristic.
func charValue(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func nullStringValuer(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(null.String); ok {
		return valuer.String
	}

	return nil
}

func nullIntValuer(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(null.Int); ok {
		return valuer.Int64
	}

	return nil
}
