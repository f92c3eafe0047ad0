package i18n

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/nl"
	ut "github.com/go-playground/universal-translator"
)

// UT holds the translators of every locale violation messages are rendered in. English is the
// fallback.
var UT = ut.New(en.New(), en.New(), nl.New())
