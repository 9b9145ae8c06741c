package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/tmasula/dnevnik/core"
)

var (
	roleTag  = "role"
	roleText = "role must be one of admin, student or teacher"
)

func init() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(roleTag, roleText)
}

// roleValidation checks that the provided role is in AllRoles.
func roleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}
