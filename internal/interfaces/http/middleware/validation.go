package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// pricePattern accepts plain decimal amounts with a period or comma
// separator, e.g. "12.50", "5,00", "1299".
var pricePattern = regexp.MustCompile(`^\d+([.,]\d{1,2})?$`)

// RegisterCustomValidators installs storefront validators on gin's binding
// engine. Call once at startup, before routes are served.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return pricePattern.MatchString(fl.Field().String())
	})
}
