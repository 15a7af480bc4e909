package logging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/daylog/internal/filesink"
	"github.com/Iron-Ham/daylog/internal/format"
	"github.com/Iron-Ham/daylog/internal/severity"
)

// Line is one parsed line of a day file.
type Line struct {
	Time    time.Time
	Level   severity.Level
	Message string
}

// Filter selects lines when reading day files. The zero Filter matches
// everything.
type Filter struct {
	// MinLevel keeps lines at or above this severity. Zero disables level
	// filtering.
	MinLevel severity.Level

	// Since keeps lines at or after this time.
	Since time.Time

	// Pattern keeps lines whose message, stripped of escape sequences,
	// matches.
	Pattern *regexp.Regexp
}

// Match reports whether line passes the filter.
func (f Filter) Match(line Line) bool {
	if f.MinLevel != 0 && !line.Level.Enabled(f.MinLevel) {
		return false
	}
	if !f.Since.IsZero() && line.Time.Before(f.Since) {
		return false
	}
	if f.Pattern != nil && !f.Pattern.MatchString(ansi.Strip(line.Message)) {
		return false
	}
	return true
}

var lineRE = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) \[([A-Z]+)\s*\] (.*)$`)

// ParseLine parses a single plain log line. ok is false for lines that do
// not start with a timestamp and level, such as the continuation lines of
// a multi-line message.
func ParseLine(s string) (line Line, ok bool) {
	m := lineRE.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	t, err := time.ParseInLocation(format.TimeLayout, m[1], time.Local)
	if err != nil {
		return Line{}, false
	}
	level, err := severity.Parse(m[2])
	if err != nil {
		return Line{}, false
	}
	return Line{Time: t, Level: level, Message: m[3]}, true
}

// ReadLines parses r. Lines that do not parse are appended to the previous
// line's message; leading ones are skipped.
func ReadLines(r io.Reader, filter Filter) ([]Line, error) {
	scanner := bufio.NewScanner(r)

	// Increase buffer size for potentially long log lines
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)

	var all []Line
	for scanner.Scan() {
		text := scanner.Text()
		if line, ok := ParseLine(text); ok {
			all = append(all, line)
			continue
		}
		if n := len(all); n > 0 {
			all[n-1].Message += "\n" + text
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	lines := all[:0]
	for _, line := range all {
		if filter.Match(line) {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// ReadDay reads and filters the day file for date (YYYY-MM-DD) in dir.
func ReadDay(fs afero.Fs, dir, date string, filter Filter) ([]Line, error) {
	if _, err := time.Parse(filesink.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	path := filepath.Join(dir, date+filesink.Extension)
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file for %s: %w", date, err)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadLines(f, filter)
}

// ListDays returns the dates of the day files in dir, oldest first. A
// missing directory yields no dates.
func ListDays(fs afero.Fs, dir string) ([]string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list log directory: %w", err)
	}

	var days []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if date, ok := filesink.DateOf(info.Name()); ok {
			days = append(days, date)
		}
	}
	sort.Strings(days)
	return days, nil
}

// Tail returns the last n lines, or all of them if n <= 0.
func Tail(lines []Line, n int) []Line {
	if n <= 0 || n >= len(lines) {
		return lines
	}
	return lines[len(lines)-n:]
}

// String renders the line in the plain file layout.
func (l Line) String() string {
	return plain.RenderPlain(l.Time, l.Level, l.Message)
}

var plain = format.New(false)
