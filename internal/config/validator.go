package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config key (e.g., "retry_delay")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found. A nil result means the configuration is usable.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Concurrency < 1 {
		errs = append(errs, ValidationError{
			Field:   "concurrency",
			Value:   c.Concurrency,
			Message: "must be at least 1",
		})
	}

	if c.Retries < 0 {
		errs = append(errs, ValidationError{
			Field:   "retries",
			Value:   c.Retries,
			Message: "must not be negative",
		})
	}

	if c.RetryDelay < 0 {
		errs = append(errs, ValidationError{
			Field:   "retry_delay",
			Value:   c.RetryDelay,
			Message: "must not be negative",
		})
	}

	if c.Rate < 0 {
		errs = append(errs, ValidationError{
			Field:   "rate",
			Value:   c.Rate,
			Message: "must not be negative",
		})
	}

	if c.Rate > 0 && c.Burst < 1 {
		errs = append(errs, ValidationError{
			Field:   "burst",
			Value:   c.Burst,
			Message: "must be at least 1 when rate is set",
		})
	}

	if level := strings.ToLower(c.Logging.Level); !slices.Contains(ValidLogLevels(), level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			errs = append(errs, ValidationError{
				Field:   "metrics_addr",
				Value:   c.MetricsAddr,
				Message: "must be a host:port listen address",
			})
		}
	}

	return errs
}
