// Package validation checks operation inputs against their struct tags and
// reports failures per field using the input's JSON field names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Amounts are compared numerically so gt/lte style tags work on decimals.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// FieldError describes one failed constraint.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Message renders the constraint as a short human readable phrase.
func (f FieldError) Message() string {
	switch f.Rule {
	case "required":
		return f.Field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f.Field, f.Param)
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", f.Field, f.Param)
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", f.Field, f.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", f.Field, f.Param)
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", f.Field, f.Param)
	default:
		return fmt.Sprintf("%s failed %s", f.Field, f.Rule)
	}
}

// Error aggregates every failed field of one input.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Struct validates v and returns *Error when any constraint fails.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &Error{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// FieldsOf returns the failed fields when err is a validation error.
func FieldsOf(err error) ([]FieldError, bool) {
	var verr *Error
	if !errors.As(err, &verr) {
		return nil, false
	}
	return verr.Fields, true
}
