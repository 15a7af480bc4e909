package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/daylog/internal/config"
	"github.com/Iron-Ham/daylog/internal/filesink"
	"github.com/Iron-Ham/daylog/internal/format"
	"github.com/Iron-Ham/daylog/internal/logging"
	"github.com/Iron-Ham/daylog/internal/severity"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View day files",
	Long: `View and filter the day files written by the file sink.

By default, shows the last 50 lines of today's file in the configured
directory.

Examples:
  # Show the last 50 lines from today
  daylog logs

  # Show all of a given day
  daylog logs --date 2026-03-14 -n 0

  # Follow today's file, continuing into tomorrow's after midnight
  daylog logs -f

  # Filter by minimum level
  daylog logs --level warning

  # Show logs from the last hour
  daylog logs --since 1h

  # Search for specific patterns
  daylog logs --grep "timeout|refused"

  # List the available days
  daylog logs --list`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsDir    string
	logsDate   string
	logsTail   int
	logsFollow bool
	logsLevel  string
	logsSince  string
	logsGrep   string
	logsList   bool
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVar(&logsDir, "dir", "", "Log directory (default from config file.dir)")
	logsCmd.Flags().StringVar(&logsDate, "date", "", "Day to show as YYYY-MM-DD (default today)")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of lines to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter logs matching pattern (regex)")
	logsCmd.Flags().BoolVar(&logsList, "list", false, "List the days that have a log file")
}

func runLogs(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dir := logsDir
	if dir == "" {
		dir = cfg.File.Dir
	}
	fs := afero.NewOsFs()

	if logsList {
		days, err := logging.ListDays(fs, dir)
		if err != nil {
			return err
		}
		if len(days) == 0 {
			fmt.Fprintf(out, "No log files in %s\n", dir)
		}
		for _, day := range days {
			fmt.Fprintln(out, day)
		}
		return nil
	}

	date := logsDate
	if date == "" {
		date = time.Now().Format(filesink.DateLayout)
	}

	filter, err := buildFilter(logsLevel, logsSince, logsGrep)
	if err != nil {
		return err
	}

	formatter := format.New(format.ShouldColor(out, cfg.Logging.Color))
	render := func(line logging.Line) string {
		return formatter.RenderConsole(line.Time, line.Level, line.Message)
	}

	if logsFollow {
		return followLogs(cmd.Context(), out, dir, date, logsTail, filter, render)
	}

	path := filepath.Join(dir, date+filesink.Extension)
	if _, err := fs.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(out, "No logs found for %s\n", date)
		fmt.Fprintln(out, "Logs are stored at:", path)
		return nil
	}

	lines, err := logging.ReadDay(fs, dir, date, filter)
	if err != nil {
		return err
	}
	lines = logging.Tail(lines, logsTail)

	for _, line := range lines {
		fmt.Fprintln(out, render(line))
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
	}
	return nil
}

// buildFilter parses the filter flags.
func buildFilter(level, since, grep string) (logging.Filter, error) {
	var filter logging.Filter

	if level != "" {
		l, err := severity.Parse(level)
		if err != nil {
			return filter, err
		}
		filter.MinLevel = l
	}

	if since != "" {
		duration, err := time.ParseDuration(since)
		if err != nil {
			return filter, fmt.Errorf("invalid duration format: %w", err)
		}
		filter.Since = time.Now().Add(-duration)
	}

	if grep != "" {
		re, err := regexp.Compile(grep)
		if err != nil {
			return filter, fmt.Errorf("invalid grep pattern: %w", err)
		}
		filter.Pattern = re
	}

	return filter, nil
}

// follower tails one day file at a time, moving to a newer day's file as
// soon as it appears.
type follower struct {
	out    io.Writer
	dir    string
	date   string
	filter logging.Filter
	render func(logging.Line) string

	offset  int64
	partial string
	// passed reports whether the last parsed line was printed, so that its
	// continuation lines follow the same decision.
	passed bool
}

// followLogs prints the last tail lines of the day file for date and then
// every line appended to it, switching to newer day files as they are
// created. It returns when ctx is done.
func followLogs(ctx context.Context, out io.Writer, dir, date string, tail int, filter logging.Filter, render func(logging.Line) string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	f := &follower{out: out, dir: dir, date: date, filter: filter, render: render}
	if err := f.printTail(tail); err != nil {
		return err
	}
	fmt.Fprintf(out, "Following %s... (Ctrl+C to stop)\n", f.path())

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			date, ok := filesink.DateOf(event.Name)
			if !ok || date < f.date {
				continue
			}
			if date > f.date {
				// Drain whatever the previous day received last.
				if err := f.readNew(); err != nil {
					return err
				}
				f.switchTo(date)
				fmt.Fprintf(out, "Following %s...\n", f.path())
			}
			if err := f.readNew(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

func (f *follower) path() string {
	return filepath.Join(f.dir, f.date+filesink.Extension)
}

func (f *follower) switchTo(date string) {
	f.date = date
	f.offset = 0
	f.partial = ""
	f.passed = false
}

// printTail prints the last n matching lines of the current file and
// positions the follower at its end.
func (f *follower) printTail(n int) error {
	file, err := os.Open(f.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	lines, err := logging.ReadLines(file, f.filter)
	if err != nil {
		return err
	}
	for _, line := range logging.Tail(lines, n) {
		fmt.Fprintln(f.out, f.render(line))
	}

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}
	f.offset = end
	return nil
}

// readNew prints complete lines appended since the last read. A trailing
// line without a newline is held until it is completed.
func (f *follower) readNew() error {
	file, err := os.Open(f.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek log file: %w", err)
	}

	reader := bufio.NewReader(file)
	for {
		chunk, err := reader.ReadString('\n')
		f.offset += int64(len(chunk))
		if err != nil {
			if err == io.EOF {
				f.partial += chunk
				return nil
			}
			return fmt.Errorf("error reading log file: %w", err)
		}

		text := strings.TrimSuffix(f.partial+chunk, "\n")
		f.partial = ""
		f.printLine(text)
	}
}

func (f *follower) printLine(text string) {
	line, ok := logging.ParseLine(text)
	if !ok {
		if f.passed {
			fmt.Fprintln(f.out, text)
		}
		return
	}
	f.passed = f.filter.Match(line)
	if f.passed {
		fmt.Fprintln(f.out, f.render(line))
	}
}
