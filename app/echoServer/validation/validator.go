// Package validation adapts go-playground/validator to echo.Validator.
package validation

import (
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

// Validate satisfies echo.Validator so controllers can rely on
// c.Validate as well as their own *validator.Validate.
func (v *Validator) Validate(i any) error {
	return v.v.Struct(i)
}
