package domain

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Fields holds the present fields of a creation or update input keyed by
// column name. Absent fields have no key.
type Fields map[string]any

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validator exposes the shared validator so request decoding uses the same
// rules and custom types as the domain inputs.
func Validator() *validator.Validate {
	return validate
}

// validateStruct runs tag validation and converts the first failure into a
// ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return NewValidationError(fe.Field(), describeTag(fe), sentinelFor(fe))
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return "is invalid"
	}
}

func sentinelFor(fe validator.FieldError) error {
	switch fe.Field() {
	case "Email":
		return ErrInvalidEmail
	case "Password":
		return ErrInvalidPassword
	default:
		return ErrValidation
	}
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return NewValidationError("Email", "must be a valid email address", ErrInvalidEmail)
	}
	return nil
}

func validatePassword(password string) error {
	if err := validate.Var(password, "required,min=8,max=72"); err != nil {
		return NewValidationError("Password", "must be between 8 and 72 characters", ErrInvalidPassword)
	}
	return nil
}
