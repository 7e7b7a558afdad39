package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PhonePattern is the permissive phone rule: digits, '+', whitespace, '-',
// parentheses, at least seven characters.
var PhonePattern = regexp.MustCompile(`^[0-9+\s\-()]{7,}$`)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
	FormatValidationErrors(err error) map[string]string
}

type customValidator struct {
	validate *validator.Validate
}

func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages line up with request fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return PhonePattern.MatchString(fl.Field().String())
	})

	return &customValidator{validate: v}
}

func (cv *customValidator) Validate(obj interface{}) error {
	return cv.validate.Struct(obj)
}

func (cv *customValidator) FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		if err != nil {
			out["_"] = err.Error()
		}
		return out
	}

	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out[field] = field + " is required"
		case "phone":
			out[field] = field + " must contain at least 7 digits, spaces, '+', '-' or parentheses"
		case "datetime":
			out[field] = field + " must use the format " + e.Param()
		case "min":
			out[field] = field + " must be at least " + e.Param() + " characters"
		case "max":
			out[field] = field + " must be at most " + e.Param() + " characters"
		default:
			out[field] = field + " is invalid"
		}
	}

	return out
}
