// Package validate builds go-playground validators that report fields by
// their JSON names, and turns validation failures into ValidationFailed
// errors with one message per field.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/campusconnect/internal/app/system/apperr"
	"github.com/go-playground/validator/v10"
)

// New returns a validator whose field errors carry json tag names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors converts validator errors into apperr.Validation with summary
// as the message. custom supplies messages for app-registered tags.
// Errors that are not validation errors are wrapped as ValidationFailed.
func FieldErrors(err error, summary string, custom map[string]string) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.Wrap(apperr.ValidationFailed, summary, err)
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[fe.Field()] = message(fe, custom)
	}
	return apperr.Validation(summary, fields)
}

func message(fe validator.FieldError, custom map[string]string) string {
	if msg, ok := custom[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "is invalid"
	}
}
