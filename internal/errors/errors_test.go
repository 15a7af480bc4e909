package errors

import (
	"fmt"
	"io/fs"
	"testing"
)

func TestConfigError(t *testing.T) {
	t.Run("formats with path", func(t *testing.T) {
		err := NewConfigError("create log directory", "/var/log/app", fs.ErrPermission)
		want := "create log directory /var/log/app: permission denied"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("formats without path", func(t *testing.T) {
		err := NewConfigError("open log file", "", fs.ErrNotExist)
		want := "open log file: file does not exist"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("unwraps to cause", func(t *testing.T) {
		err := NewConfigError("open log file", "x.log", fs.ErrPermission)
		if !Is(err, fs.ErrPermission) {
			t.Error("expected errors.Is to find fs.ErrPermission")
		}
	})
}

func TestIsConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", New("boom"), false},
		{"direct", NewConfigError("op", "p", New("boom")), true},
		{"wrapped", fmt.Errorf("enable file logging: %w", NewConfigError("op", "p", New("boom"))), true},
		{"joined", Join(New("a"), NewConfigError("op", "p", New("b"))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfigError(tt.err); got != tt.want {
				t.Errorf("IsConfigError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrSinkClosed, ErrQueueClosed, ErrInvalidLevel, ErrEmptyPath}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %v should not match %v", a, b)
			}
		}
	}
}
