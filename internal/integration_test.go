// Package internal contains integration tests that verify the daylog packages
// work together: configuration feeds the logger, the logger fans out to the
// console, day files and the remote collector, and the reader parses what the
// file sink wrote.
package internal

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/daylog/internal/config"
	"github.com/Iron-Ham/daylog/internal/filesink"
	"github.com/Iron-Ham/daylog/internal/logging"
	"github.com/Iron-Ham/daylog/internal/remote"
	"github.com/Iron-Ham/daylog/internal/severity"
	"github.com/Iron-Ham/daylog/internal/testutil"
)

func loadConfig(t *testing.T, lines ...string) *config.Config {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	config.BindEnv()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

// TestConfiguredPipeline drives a logger built from a config file through
// every sink and reads the results back.
func TestConfiguredPipeline(t *testing.T) {
	collector := testutil.NewCollector(t, http.StatusNoContent)
	u, err := url.Parse(collector.URL)
	if err != nil {
		t.Fatal(err)
	}
	logDir := filepath.Join(t.TempDir(), "logs")

	cfg := loadConfig(t,
		"logging:",
		"  level: debug",
		"  color: never",
		"file:",
		"  enabled: true",
		"  dir: "+logDir,
		"remote:",
		"  enabled: true",
		"  service: checkout",
		"  host: "+u.Hostname(),
		`  port: "`+u.Port()+`"`,
		"  timeout: 1s",
		"  drain_timeout: 5s",
	)

	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)
	clock := testutil.NewFakeClock(now)

	var console testutil.SafeBuffer
	opts := append(cfg.LoggerOptions(&console), logging.WithClock(clock.Now))
	logger := logging.New(opts...)

	if err := logger.EnableFileLogging(cfg.File.Dir); err != nil {
		t.Fatalf("EnableFileLogging() error = %v", err)
	}
	if err := logger.EnableRemoteLogging(cfg.Remote.Service); err != nil {
		t.Fatalf("EnableRemoteLogging() error = %v", err)
	}

	_ = logger.Info("order placed", "order", 1235)
	_ = logger.Trace("cache probe")
	_ = logger.With("region", "eu").Error("payment declined", "code", "card_expired")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := logger.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	t.Run("console", func(t *testing.T) {
		lines := console.Lines()
		want := []string{
			"2024-03-15 09:30:00 [INFO    ] order placed",
			"2024-03-15 09:30:00 [ERROR   ] payment declined",
		}
		if len(lines) != len(want) {
			t.Fatalf("console has %d lines, want %d:\n%s", len(lines), len(want), console.String())
		}
		for i := range want {
			if lines[i] != want[i] {
				t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
			}
		}
	})

	t.Run("day file", func(t *testing.T) {
		days, err := logging.ListDays(afero.NewOsFs(), logDir)
		if err != nil {
			t.Fatalf("ListDays() error = %v", err)
		}
		if len(days) != 1 || days[0] != "2024-03-15" {
			t.Fatalf("ListDays() = %v, want [2024-03-15]", days)
		}
		if name := filesink.FileName(now); name != "2024-03-15.log" {
			t.Errorf("FileName() = %q", name)
		}

		lines, err := logging.ReadDay(afero.NewOsFs(), logDir, days[0], logging.Filter{MinLevel: severity.Error})
		if err != nil {
			t.Fatalf("ReadDay() error = %v", err)
		}
		if len(lines) != 1 {
			t.Fatalf("ReadDay() returned %d lines, want 1", len(lines))
		}
		if lines[0].Level != severity.Error || lines[0].Message != "payment declined" {
			t.Errorf("unexpected line %+v", lines[0])
		}
		if !lines[0].Time.Equal(now) {
			t.Errorf("line time = %v, want %v", lines[0].Time, now)
		}
	})

	t.Run("remote", func(t *testing.T) {
		bodies := collector.Bodies()
		if len(bodies) != 2 {
			t.Fatalf("collector received %d entries, want 2", len(bodies))
		}

		var entries []remote.Entry
		for _, b := range bodies {
			var e remote.Entry
			if err := json.Unmarshal(b, &e); err != nil {
				t.Fatalf("invalid entry %s: %v", b, err)
			}
			entries = append(entries, e)
		}

		if entries[0].Service != "checkout" || entries[0].Level != "INFO" || entries[0].Data["order"] != "1235" {
			t.Errorf("first entry = %+v", entries[0])
		}
		last := entries[1]
		if last.Level != "ERROR" || last.Data["region"] != "eu" || last.Data["code"] != "card_expired" {
			t.Errorf("second entry = %+v", last)
		}
		if last.ID == "" || last.ID == entries[0].ID {
			t.Errorf("entry ids not unique: %q, %q", entries[0].ID, last.ID)
		}
		if want := now.UTC().Format(remote.DateLayout); last.Date != want {
			t.Errorf("Date = %q, want %q", last.Date, want)
		}
	})
}

// TestSinkFailuresAreIsolated checks that a broken remote collector and a
// read-only file system never stop console output.
func TestSinkFailuresAreIsolated(t *testing.T) {
	cfg := loadConfig(t,
		"logging:",
		"  color: never",
		"remote:",
		"  timeout: 200ms",
		"  drain_timeout: 2s",
	)

	addr := testutil.UnreachableAddr(t)
	var console testutil.SafeBuffer
	opts := append(cfg.LoggerOptions(&console),
		logging.WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())),
		logging.WithRemote(logging.RemoteConfig{
			URL:          "http://" + addr + "/logs",
			Timeout:      cfg.Remote.Timeout,
			DrainTimeout: cfg.Remote.DrainTimeout,
		}),
	)
	logger := logging.New(opts...)

	if err := logger.EnableFileLogging("/var/log/daylog"); err == nil {
		t.Error("EnableFileLogging() on a read-only fs succeeded")
	}
	if err := logger.EnableRemoteLogging(""); err != nil {
		t.Fatalf("EnableRemoteLogging() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := logger.Warning("still here"); err != nil {
			t.Errorf("Warning() error = %v", err)
		}
	}

	testutil.WaitFor(t, 10*time.Second, func() bool {
		stats, _ := logger.RemoteStats()
		return stats.Failed == 5
	})
	if got := len(console.Lines()); got != 5 {
		t.Errorf("console has %d lines, want 5", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := logger.Close(ctx); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
