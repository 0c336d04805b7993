// Package validation validates decoded request bodies with validator/v10 and
// reports failures as domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/aura-site/api/errors"
)

// MaxHandleLength is the longest handle the social network allows.
const MaxHandleLength = 15

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return ValidHandle(fl.Field().String())
	})

	return &Validator{v: v}
}

// ValidHandle reports whether s is a well-formed social handle.
func ValidHandle(s string) bool {
	return handlePattern.MatchString(s)
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var validates a single value against a tag.
func (v *Validator) Var(field any, tag string) error {
	if err := v.v.Var(field, tag); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		field := e.Field()
		if field == "" {
			field = "value"
		}
		fieldErrors[field] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "handle":
		return fmt.Sprintf("must be 1 to %d letters, digits or underscores", MaxHandleLength)
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
