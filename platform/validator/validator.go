// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var zip5Pattern = regexp.MustCompile(`^\d{5}$`)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the marketplace-specific tags registered:
//
//	zip5 - a five digit US postal code
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("zip5", func(fl validator.FieldLevel) bool {
		return zip5Pattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}
