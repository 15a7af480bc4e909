package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/daylog/internal/config"
	"github.com/Iron-Ham/daylog/internal/filesink"
	"github.com/Iron-Ham/daylog/internal/logging"
	"github.com/Iron-Ham/daylog/internal/severity"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show every level, file logging and daily rotation",
	Long: `Walk through the logger's features:

  1. one record per level at the configured threshold
  2. the same records with the threshold lowered to TRACE
  3. file logging into --dir
  4. daily rotation, using a clock that crosses midnight`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

var demoDir string

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoDir, "dir", "demo_logs", "Directory for the file logging demo")
}

// demoClock is a wall clock that can be shifted forward.
type demoClock struct {
	mu     sync.Mutex
	offset time.Duration
}

func (c *demoClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Add(c.offset)
}

// JumpTo shifts the clock so that it reads t.
func (c *demoClock) JumpTo(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = time.Until(t)
}

func runDemo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	clock := &demoClock{}
	opts := append(cfg.LoggerOptions(out), logging.WithClock(clock.Now))
	logger := logging.New(opts...)
	defer func() { _ = closeLogger(cmd.Context(), logger) }()

	fmt.Fprintln(out, "Demonstrating all log levels:")
	logEveryLevel(logger)

	fmt.Fprintln(out, "\nChanging log level to TRACE to show all messages:")
	logger.MinLevel = severity.Trace
	logEveryLevel(logger)

	fmt.Fprintf(out, "\nDemonstrating file logging to %q:\n", demoDir)
	if err := logger.EnableFileLogging(demoDir); err != nil {
		return err
	}
	_ = logger.Info("This message will be saved to the log folder")
	_ = logger.Error("This error message will also be saved to the log folder")
	fmt.Fprintf(out, "Log file created at: %s\n", logger.FilePath())

	fmt.Fprintln(out, "\nDemonstrating daily log rotation (simulated):")
	now := clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 1, 0, now.Location())
	_ = logger.Info("End of day processing")
	clock.JumpTo(midnight)
	_ = logger.Info("New day started")
	_ = logger.Warning("Low disk space detected")

	if err := logger.DisableFileLogging(); err != nil {
		return err
	}
	return printDayFiles(out, afero.NewOsFs(), demoDir)
}

func logEveryLevel(logger *logging.Logger) {
	for _, level := range severity.All() {
		_ = logger.Log(level, fmt.Sprintf("This is a %s message", level), nil)
	}
}

// printDayFiles lists each day file in dir followed by its contents.
func printDayFiles(out io.Writer, fs afero.Fs, dir string) error {
	days, err := logging.ListDays(fs, dir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nLog files, one per day:")
	for _, day := range days {
		fmt.Fprintf(out, "- %s%s\n", day, filesink.Extension)
	}

	for _, day := range days {
		data, err := afero.ReadFile(fs, filepath.Join(dir, day+filesink.Extension))
		if err != nil {
			return fmt.Errorf("failed to read log file: %w", err)
		}
		fmt.Fprintf(out, "\nContents of %s%s:\n%s", day, filesink.Extension, data)
	}
	return nil
}
