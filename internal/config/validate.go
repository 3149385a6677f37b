package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leefowlercu/modorder/internal/logging"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: %s; got %q", strings.Join(logging.LevelNames, ", "), cfg.LogLevel),
		})
	}

	if cfg.Scan.Workers < 1 {
		errs = append(errs, ValidationError{
			Field:   "scan.workers",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Scan.Workers),
		})
	}

	for i, name := range cfg.Scan.SkipFiles {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("scan.skip_files[%d]", i),
				Message: "must not be empty",
			})
		}
	}

	for i, id := range cfg.Resolve.BuiltinModules {
		if _, err := uuid.Parse(id); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("resolve.builtin_modules[%d]", i),
				Message: fmt.Sprintf("must be a UUID, got %q", id),
			})
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "cache.path",
			Message: "must not be empty when the cache is enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
