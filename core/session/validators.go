package session

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ecoquest/ecoquest/core"
)

var (
	roleTag  = "role"
	roleText = "{0} must be one of STUDENT, TEACHER, AMBASSADOR or ADMIN"

	signupRoleTag  = "signuprole"
	signupRoleText = "{0} must be one of STUDENT, TEACHER or AMBASSADOR"
)

// InitValidators registers the role validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, rolesValidation(AllRoles))
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	_ = validate.RegisterValidation(signupRoleTag, rolesValidation(SignupRoles))
	core.RegisterCustomTranslation(validate, translator, signupRoleTag, signupRoleText)
}

func rolesValidation(roles []Role) validator.Func {
	return func(fl validator.FieldLevel) bool {
		switch v := fl.Field().Interface().(type) {
		case Role:
			return v.in(roles)
		case string:
			return Role(v).in(roles)
		}
		return false
	}
}
