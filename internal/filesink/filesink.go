// Package filesink writes plain log lines to one file per calendar day.
//
// A Sink owns at most one open file, bound to the date it was opened for.
// Every Write checks the clock; when the local date no longer matches the
// bound date, the old file is synced and closed and <dir>/<YYYY-MM-DD>.log
// is opened in append mode. Rotation is lazy: a sink that is idle across
// midnight rotates on its next write, not at midnight.
//
// If the clock moves backwards the sink reopens the earlier day's file and
// keeps appending to it.
package filesink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/daylog/internal/errors"
)

// DateLayout is the layout of the date part of a day file name.
const DateLayout = "2006-01-02"

// Extension is the suffix of every day file.
const Extension = ".log"

var dayFileGlob = glob.MustCompile("[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]" + Extension)

// Sink appends lines to the file for the current day. It is safe for
// concurrent use.
type Sink struct {
	mu sync.Mutex

	// Configuration
	fs    afero.Fs
	dir   string
	clock func() time.Time

	// State
	file   afero.File
	date   string
	closed bool
}

// Option configures a Sink.
type Option func(*Sink)

// WithFs sets the filesystem the sink writes to. Defaults to the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Sink) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithClock sets the time source used to decide the current day.
func WithClock(clock func() time.Time) Option {
	return func(s *Sink) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a Sink writing into dir, creating the directory and any
// missing parents. A directory that cannot be created is reported as an
// *errors.ConfigError. No file is opened until the first Write.
func New(dir string, opts ...Option) (*Sink, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.NewConfigError("create log directory", dir, errors.ErrEmptyPath)
	}

	s := &Sink{
		fs:    afero.NewOsFs(),
		dir:   dir,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewConfigError("create log directory", dir, err)
	}

	return s, nil
}

// EnsureOpenForToday makes sure the open file, if any, belongs to today.
// It is called by Write and only needs to be called directly to force the
// file to exist before anything is logged.
func (s *Sink) EnsureOpenForToday() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.ErrSinkClosed
	}
	return s.ensureOpen()
}

// ensureOpen performs the rotation check. The caller must hold the mutex.
func (s *Sink) ensureOpen() error {
	today := s.clock().Format(DateLayout)
	if s.file != nil && s.date == today {
		return nil
	}

	if s.file != nil {
		// A failure to close the previous day's file must not prevent
		// today's lines from being written.
		_ = s.closeFile()
	}

	path := filepath.Join(s.dir, today+Extension)
	file, err := s.fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.NewConfigError("open log file", path, err)
	}

	s.file = file
	s.date = today
	return nil
}

// Write appends line and a newline to today's file in a single write.
// On a write error the file is released so the next call starts clean.
func (s *Sink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.ErrSinkClosed
	}
	if err := s.ensureOpen(); err != nil {
		return err
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	if _, err := s.file.Write(buf); err != nil {
		path := s.file.Name()
		_ = s.closeFile()
		return fmt.Errorf("failed to write log file %s: %w", path, err)
	}
	return nil
}

// closeFile syncs and closes the open file and clears the bound date.
// The caller must hold the mutex.
func (s *Sink) closeFile() error {
	file := s.file
	s.file = nil
	s.date = ""

	syncErr := file.Sync()
	closeErr := file.Close()
	if syncErr != nil {
		return fmt.Errorf("failed to sync log file: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close log file: %w", closeErr)
	}
	return nil
}

// Close syncs and closes the open file. Further writes fail with
// errors.ErrSinkClosed. Calling Close more than once is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.file == nil {
		return nil
	}
	return s.closeFile()
}

// Dir returns the directory the sink writes into.
func (s *Sink) Dir() string {
	return s.dir
}

// Date returns the date the open file is bound to, or "" if none is open.
func (s *Sink) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Path returns the path of the open file, or "" if none is open.
func (s *Sink) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ""
	}
	return filepath.Join(s.dir, s.date+Extension)
}

// FileName returns the day file name for t.
func FileName(t time.Time) string {
	return t.Format(DateLayout) + Extension
}

// DateOf returns the date encoded in a day file name.
func DateOf(name string) (string, bool) {
	base := filepath.Base(name)
	if !dayFileGlob.Match(base) {
		return "", false
	}
	date := strings.TrimSuffix(base, Extension)
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", false
	}
	return date, true
}
