package config

import (
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/daylog/internal/severity"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got errors: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:      "unknown level",
			modify:    func(c *Config) { c.Logging.Level = severity.Level(55) },
			wantField: "logging.level",
		},
		{
			name:      "bad color mode",
			modify:    func(c *Config) { c.Logging.Color = "sometimes" },
			wantField: "logging.color",
		},
		{
			name: "empty dir with file logging on",
			modify: func(c *Config) {
				c.File.Enabled = true
				c.File.Dir = "  "
			},
			wantField: "file.dir",
		},
		{
			name:      "service with spaces",
			modify:    func(c *Config) { c.Remote.Service = "my service" },
			wantField: "remote.service",
		},
		{
			name:      "empty host",
			modify:    func(c *Config) { c.Remote.Host = "" },
			wantField: "remote.host",
		},
		{
			name:      "non-numeric port",
			modify:    func(c *Config) { c.Remote.Port = "http" },
			wantField: "remote.port",
		},
		{
			name:      "port out of range",
			modify:    func(c *Config) { c.Remote.Port = "70000" },
			wantField: "remote.port",
		},
		{
			name:      "zero timeout",
			modify:    func(c *Config) { c.Remote.Timeout = 0 },
			wantField: "remote.timeout",
		},
		{
			name:      "negative max pending",
			modify:    func(c *Config) { c.Remote.MaxPending = -1 },
			wantField: "remote.max_pending",
		},
		{
			name:      "negative drain timeout",
			modify:    func(c *Config) { c.Remote.DrainTimeout = -time.Second },
			wantField: "remote.drain_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}

	t.Run("empty dir is fine while file logging is off", func(t *testing.T) {
		cfg := Default()
		cfg.File.Dir = ""
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("errors accumulate", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Color = "rainbow"
		cfg.Remote.Host = ""
		cfg.Remote.Timeout = -1
		if errs := cfg.Validate(); len(errs) != 3 {
			t.Errorf("Validate() returned %d errors, want 3: %v", len(errs), errs)
		}
	})
}
