package fakeapi

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9][0-9]{9,14}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// fieldError is one entry of a 422 response, in the shape used by the real API.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func valueError(field, msg string) fieldError {
	return fieldError{Loc: []string{"body", field}, Msg: "Value error, " + msg, Type: "value_error"}
}

type createUserBody struct {
	Username string  `json:"username" validate:"min=3,max=50,username_chars"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"min=6"`
	Age      int     `json:"age" validate:"gte=13,lte=150"`
	Phone    *string `json:"phone" validate:"omitnil,phone"`
}

type updateUserBody struct {
	Email *string `json:"email" validate:"omitnil,email"`
	Age   *int    `json:"age" validate:"omitnil,gte=13,lte=150"`
	Phone *string `json:"phone" validate:"omitnil,phone"`
}

func (b createUserBody) validate() []fieldError { return validationErrors(validate.Struct(b)) }

func (b updateUserBody) validate() []fieldError { return validationErrors(validate.Struct(b)) }

// validationErrors maps the validator's per-field failures to the API's 422 entries. Anything
// other than ValidationErrors means the body type itself is unusable, which is a programming error.
func validationErrors(err error) []fieldError {
	if err == nil {
		return nil
	}
	var errs []fieldError
	for _, fe := range err.(validator.ValidationErrors) {
		errs = append(errs, valueError(fe.Field(), messageFor(fe)))
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "username":
		if fe.Tag() == "username_chars" {
			return "Username contains invalid characters"
		}
		return "Username must be between 3 and 50 characters"
	case "email":
		return "value is not a valid email address"
	case "password":
		return "Password must be at least 6 characters"
	case "age":
		return "Age must be between 13 and 150"
	case "phone":
		return "Invalid phone number format"
	}
	return "Invalid value for " + fe.Field()
}
