package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator names fields by their label tag in messages, falling back to
// the Go field name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// checkText validates free text after trimming. field is used in the message,
// e.g. "Comment cannot be empty".
func checkText(field, value string, max int) error {
	err := validate.Var(strings.TrimSpace(value), fmt.Sprintf("required,max=%d", max))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return ValidationError(describe(field, verrs[0]))
	}
	return ValidationError(field + " is invalid")
}

// checkStruct validates struct tags and reports the first failing field.
func checkStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return ValidationError(describe(verrs[0].Field(), verrs[0]))
	}
	return InternalError("failed to validate input", err)
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " cannot be empty"
	case "max":
		return fmt.Sprintf("%s must be %s characters or less", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url", "http_url":
		return field + " must be a valid URL"
	case "startswith":
		return fmt.Sprintf("%s must start with %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
