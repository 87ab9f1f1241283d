// Package validation checks request payloads and reports failures per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookshelf/internal/metadata"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("isbn", func(fl validator.FieldLevel) bool {
		return metadata.IsValidISBN(fl.Field().String())
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Struct validates s using its `validate` tags. It returns nil when s is valid.
func Struct(s any) []FieldError {
	return collect("", validate.Struct(s))
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, value any, tag string) []FieldError {
	return collect(field, validate.Var(value, tag))
}

func collect(field string, err error) []FieldError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: field, Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		out = append(out, FieldError{Field: name, Message: message(name, fe)})
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "isbn":
		return fmt.Sprintf("%s must be a valid ISBN-10 or ISBN-13", field)
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
