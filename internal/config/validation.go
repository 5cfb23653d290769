// validation.go - Start-up validation of gateway configuration.
//
// Every problem is collected before returning so an operator sees the
// whole list at once instead of fixing one variable per restart.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates validation errors.
type Validator struct {
	errors []ValidationError
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// AddError records a validation error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors reports whether any error was recorded.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all recorded errors.
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorString formats every recorded error, one per line.
func (v *Validator) ErrorString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Required records an error when value is empty.
func (v *Validator) Required(key, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(key, "required value not set")
	}
}

// Address validates a listen address of the form "host:port" or ":port".
func (v *Validator) Address(key, value string) {
	if value == "" {
		return
	}

	i := strings.LastIndex(value, ":")
	if i < 0 {
		v.AddError(key, "address must be host:port or :port")
		return
	}

	port, err := strconv.Atoi(value[i+1:])
	if err != nil {
		v.AddError(key, "port must be a number")
		return
	}

	if port < 1 || port > 65535 {
		v.AddError(key, "port must be between 1 and 65535")
	}
}

// URL validates that value parses as an http(s) or postgres URL.
func (v *Validator) URL(key, value string, schemes ...string) {
	if value == "" {
		return
	}

	parsed, err := url.Parse(value)
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid URL format: %v", err))
		return
	}

	for _, s := range schemes {
		if parsed.Scheme == s {
			return
		}
	}
	v.AddError(key, fmt.Sprintf("URL scheme must be one of: %s", strings.Join(schemes, ", ")))
}

// Enum validates that value is one of allowed.
func (v *Validator) Enum(key, value string, allowed []string) {
	for _, opt := range allowed {
		if value == opt {
			return
		}
	}

	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// NonNegative validates that n is zero or greater.
func (v *Validator) NonNegative(key string, n int64) {
	if n < 0 {
		v.AddError(key, "must not be negative")
	}
}

// Ratio validates that f lies in [0, 1].
func (v *Validator) Ratio(key string, f float64) {
	if f < 0 || f > 1 {
		v.AddError(key, "must be between 0.0 and 1.0")
	}
}
