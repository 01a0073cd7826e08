package internal

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("username_rules", func(fl validator.FieldLevel) bool {
		re := regexp.MustCompile(`^\w+$`)
		return re.MatchString(fl.Field().String())
	})

	return v
}
