package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leefowlercu/docexport/internal/logging"
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
			Message: fmt.Sprintf("must be one of: debug, info, warn, error; got %q", cfg.LogLevel),
		})
	}

	if cfg.LogFile == "" {
		errs = append(errs, ValidationError{
			Field:   "log_file",
			Message: "must not be empty",
		})
	}

	if cfg.LogMaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "log_max_size_mb",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.LogMaxSizeMB),
		})
	}

	if cfg.LogMaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "log_max_backups",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.LogMaxBackups),
		})
	}

	if cfg.LogMaxAgeDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "log_max_age_days",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.LogMaxAgeDays),
		})
	}

	// Validate server config
	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.http_port",
			Message: fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Server.HTTPPort),
		})
	}

	if cfg.Server.HTTPBind == "" {
		errs = append(errs, ValidationError{
			Field:   "server.http_bind",
			Message: "must not be empty",
		})
	}

	if cfg.Server.ShutdownTimeout < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.shutdown_timeout",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.Server.ShutdownTimeout),
		})
	}

	if cfg.Server.ReadHeaderTimeout < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.read_header_timeout",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.Server.ReadHeaderTimeout),
		})
	}

	if cfg.Documents.Dir == "" {
		errs = append(errs, ValidationError{
			Field:   "documents.dir",
			Message: "must not be empty",
		})
	}

	// Validate drive config
	if cfg.Drive.SourceMIMEType == "" {
		errs = append(errs, ValidationError{
			Field:   "drive.source_mime_type",
			Message: "must not be empty",
		})
	}

	if cfg.Drive.TargetMIMEType == "" {
		errs = append(errs, ValidationError{
			Field:   "drive.target_mime_type",
			Message: "must not be empty",
		})
	}

	if cfg.Drive.Endpoint != "" &&
		!strings.HasPrefix(cfg.Drive.Endpoint, "http://") &&
		!strings.HasPrefix(cfg.Drive.Endpoint, "https://") {
		errs = append(errs, ValidationError{
			Field:   "drive.endpoint",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", cfg.Drive.Endpoint),
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
