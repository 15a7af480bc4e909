package config

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Iron-Ham/daylog/internal/format"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "remote.timeout")
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
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// serviceRegex restricts service names to a conservative identifier set
var serviceRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateFile()...)
	errors = append(errors, c.validateRemote()...)

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !c.Logging.Level.Valid() {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be a known severity",
		})
	}

	if !slices.Contains(format.ValidColorModes(), c.Logging.Color) {
		errors = append(errors, ValidationError{
			Field:   "logging.color",
			Value:   c.Logging.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(format.ValidColorModes(), ", ")),
		})
	}

	return errors
}

// validateFile validates the FileConfig
func (c *Config) validateFile() []ValidationError {
	var errors []ValidationError

	// The directory only matters when the sink is on
	if c.File.Enabled && strings.TrimSpace(c.File.Dir) == "" {
		errors = append(errors, ValidationError{
			Field:   "file.dir",
			Value:   c.File.Dir,
			Message: "must not be empty when file logging is enabled",
		})
	}

	return errors
}

// validateRemote validates the RemoteConfig
func (c *Config) validateRemote() []ValidationError {
	var errors []ValidationError

	if c.Remote.Service != "" && !serviceRegex.MatchString(c.Remote.Service) {
		errors = append(errors, ValidationError{
			Field:   "remote.service",
			Value:   c.Remote.Service,
			Message: "must start with a letter or digit and contain only letters, digits, '.', '_' or '-'",
		})
	}

	if strings.TrimSpace(c.Remote.Host) == "" {
		errors = append(errors, ValidationError{
			Field:   "remote.host",
			Value:   c.Remote.Host,
			Message: "must not be empty",
		})
	}

	if port, err := strconv.Atoi(c.Remote.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "remote.port",
			Value:   c.Remote.Port,
			Message: "must be a number between 1 and 65535",
		})
	}

	if c.Remote.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.timeout",
			Value:   c.Remote.Timeout,
			Message: "must be positive",
		})
	}

	if c.Remote.MaxPending < 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.max_pending",
			Value:   c.Remote.MaxPending,
			Message: "must be non-negative (0 means unbounded)",
		})
	}

	if c.Remote.DrainTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.drain_timeout",
			Value:   c.Remote.DrainTimeout,
			Message: "must be non-negative",
		})
	}

	return errors
}
