package server

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tritrack/tritrack/internal/models"
)

// newValidator builds the payload validator. Field errors are reported by
// their JSON names, and the "discipline" tag accepts the canonical
// discipline names only.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("discipline", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.Disciplines, fl.Field().String())
	})
	return v
}

// validationError is a payload that failed validation; it maps to 400.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

// check validates v and turns field errors into one readable message.
func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &validationError{msg: err.Error()}
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return &validationError{msg: strings.Join(parts, "; ")}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "discipline":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(models.Disciplines, " "))
	case "gte", "gt", "lte", "lt":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), comparisons[fe.Tag()], fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

var comparisons = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}
