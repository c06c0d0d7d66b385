package user

import (
	"reflect"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	// password policy
	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// InitValidators registers the user validators on top of core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	validate.RegisterStructValidation(userStructValidation, NewUser{}, UpdateUser{}, PasswordReset{})
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// roleValidation checks that the role is one of auth.AllRoles.
func roleValidation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return auth.ParseRole(fl.Field().String()) != ""
}

// userStructValidation does struct level validation on NewUser, UpdateUser and PasswordReset structs.
func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		validatePassword(usr.Password, "password", sl, usr.FirstName, usr.LastName, usr.Email)
	case UpdateUser:
		if usr.Password != nil {
			var first, last string
			if usr.FirstName != nil {
				first = *usr.FirstName
			}
			if usr.LastName != nil {
				last = *usr.LastName
			}
			validatePassword(*usr.Password, "password", sl, first, last)
		}
	case PasswordReset:
		validatePassword(usr.NewPassword, "new_password", sl)
	}
}

// validatePassword applies the password policy to provided password:
// - no whitespace
// - no user attrs similarity
func validatePassword(pwd, field string, sl validator.StructLevel, attrs ...string) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, field, "Password", tag, "")
	}

	if strings.IndexFunc(pwd, unicode.IsSpace) >= 0 {
		reportErr(pwdNoSpaceTag)
		return
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if getRatio(lpwd, strings.ToLower(attr)) >= pwdMaxSim {
			reportErr(pwdAttrSimTag)
			return
		}
	}
}
