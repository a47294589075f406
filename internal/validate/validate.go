// Package validate is the schema-validation collaborator: it turns a
// candidate record into an accept/reject decision with field-level
// messages.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var v = validator.New()

// Struct validates a tagged struct. A nil result means the record is
// acceptable.
func Struct(candidate any) []FieldError {
	err := v.Struct(candidate)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
	case "email":
		return "invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s", strings.ToLower(fe.Field()), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", strings.ToLower(fe.Field()), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", strings.ToLower(fe.Field()), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", strings.ToLower(fe.Field()), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", strings.ToLower(fe.Field()))
	default:
		return fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field()))
	}
}
