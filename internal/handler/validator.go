package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"inventory-catalog-api/internal/model"
	"inventory-catalog-api/pkg/apierror"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports json field names and knows
// the slotkey and elementtype tags.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slotkey", validateSlotKey)
	_ = v.RegisterValidation("elementtype", validateElementType)
	return &Validator{validate: v}
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s any) error {
	return v.validate.Struct(s)
}

// FieldErrors converts validator output into API error details.
func FieldErrors(err error) []apierror.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []apierror.FieldError{{Field: "body", Message: "Invalid request format"}}
	}

	out := make([]apierror.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		out = append(out, apierror.FieldError{Field: field, Message: fieldMessage(e)})
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at most %s entries", e.Param())
		}
		return fmt.Sprintf("Must be at most %s characters", e.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", e.Param())
	case "slotkey":
		return "Unknown field slot"
	case "elementtype":
		return "Unknown custom id element type"
	}
	return "Invalid value"
}

func validateSlotKey(fl validator.FieldLevel) bool {
	_, err := model.ParseSlotKey(fl.Field().String())
	return err == nil
}

func validateElementType(fl validator.FieldLevel) bool {
	_, ok := model.ParseElementType(fl.Field().String())
	return ok
}
