package core

// validation.go holds the cell-level rules used by CSV row transforms and by
// the create/update paths of the service.
//
// Every rule takes the raw value and a human-readable field name and returns
// either the normalized value or a *ValidationError whose message names the
// field, e.g. "Selling Price must be a valid number".

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// emailRegex is a deliberately loose local@domain.tld shape check.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError represents a single validation failure for a field.
type ValidationError struct {
	Field   string // Field name as shown to the user
	Value   string // The rejected value
	Message string // Full message, already naming the field
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, value, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: field + " " + fmt.Sprintf(format, args...),
	}
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// RequireNonEmpty returns the trimmed value, failing when it is blank.
func RequireNonEmpty(value, field string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", invalid(field, value, "is required")
	}
	return v, nil
}

// ParseDecimal parses a floating-point number into an exact decimal.
func ParseDecimal(value, field string) (decimal.Decimal, error) {
	v := strings.TrimSpace(value)
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return decimal.Zero, invalid(field, value, "must be a valid number")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, invalid(field, value, "must be a valid number")
	}
	return d, nil
}

// ParseNonNegativeDecimal is ParseDecimal that also rejects values below zero.
func ParseNonNegativeDecimal(value, field string) (decimal.Decimal, error) {
	d, err := ParseDecimal(value, field)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, invalid(field, value, "must not be negative")
	}
	return d, nil
}

// ParseWholeNumber parses an integer. Fractional values are rejected.
func ParseWholeNumber(value, field string) (int, error) {
	v := strings.TrimSpace(value)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid(field, value, "must be a whole number")
	}
	return n, nil
}

// ParseNonNegativeWholeNumber is ParseWholeNumber that also rejects values below zero.
func ParseNonNegativeWholeNumber(value, field string) (int, error) {
	n, err := ParseWholeNumber(value, field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, invalid(field, value, "must not be negative")
	}
	return n, nil
}

// ParseEmail returns the trimmed address when it has a local@domain.tld shape.
func ParseEmail(value, field string) (string, error) {
	v := strings.TrimSpace(value)
	if !emailRegex.MatchString(v) {
		return "", invalid(field, value, "must be a valid email address")
	}
	return v, nil
}

// OptionalEmail is ParseEmail that accepts a blank value.
func OptionalEmail(value, field string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return ParseEmail(value, field)
}

// requireNonNegative checks an already-parsed amount.
func requireNonNegative(d decimal.Decimal, field string) error {
	if d.IsNegative() {
		return invalid(field, d.String(), "must not be negative")
	}
	return nil
}
