// Package validation runs the declarative per-field rule sets and
// flattens failures into field-level violations. All string fields are
// expected to be trimmed by the caller before rules are evaluated;
// rules are declared as validator/v10 struct tags with json field
// naming, so violations report the wire-format field names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"memoir/internal/shared/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct evaluates the rule tags on s and returns every violation
// found. Within a single field the checks fail fast (a field that
// fails its type or required rule is not also checked against bounds),
// but all fields are always checked.
func Struct(s interface{}) []apperrors.FieldViolation {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return []apperrors.FieldViolation{{Field: "payload", Message: "is not a valid object"}}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []apperrors.FieldViolation{{Field: "payload", Message: err.Error()}}
	}

	violations := make([]apperrors.FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, apperrors.FieldViolation{
			Field:   fieldPath(fe),
			Value:   fe.Value(),
			Message: messageFor(fe),
		})
	}
	return violations
}

// Element evaluates rules on one element of an array field, labeling
// each violation with the element index, e.g. "notes[3].text".
func Element(field string, index int, elem interface{}) []apperrors.FieldViolation {
	violations := Struct(elem)
	for i := range violations {
		violations[i].Field = fmt.Sprintf("%s[%d].%s", field, index, violations[i].Field)
	}
	return violations
}

// Violation builds a single ad-hoc violation for checks that fall
// outside the declarative tags (cross-field exclusions, enum sets with
// multi-word members, duplicate sub-objects).
func Violation(field string, value interface{}, message string) apperrors.FieldViolation {
	return apperrors.FieldViolation{Field: field, Value: value, Message: message}
}

// OneOf checks enum membership for values the oneof tag cannot express
// (members containing spaces). Empty values pass; pair with a required
// rule when the field is mandatory.
func OneOf(field, value string, allowed []string) *apperrors.FieldViolation {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	v := Violation(field, value, "must be one of: "+strings.Join(allowed, ", "))
	return &v
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "RequestType.field" or deeper; strip the root type.
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	case "unique":
		return "must not contain duplicates"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed the '%s' rule", fe.Tag())
	}
}
