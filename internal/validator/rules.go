package validator

import (
	"log"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register validation tag '%s': %v", tag, err)
		}
	}

	// 'phone': 10 to 15 ASCII digits
	mustRegister("phone", validatePhone)
}

func validatePhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // use 'required' for presence
	}
	return phonePattern.MatchString(value)
}
