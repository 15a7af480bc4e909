package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/daylog/internal/errors"
	"github.com/Iron-Ham/daylog/internal/filesink"
	"github.com/Iron-Ham/daylog/internal/format"
	"github.com/Iron-Ham/daylog/internal/remote"
	"github.com/Iron-Ham/daylog/internal/severity"
)

// DefaultService is the service name used when remote logging is enabled
// with an empty name.
const DefaultService = "daylog"

// Record is one accepted log call. It is never mutated after creation.
type Record struct {
	Time    time.Time
	Level   severity.Level
	Message string
	Attrs   map[string]string
}

// RemoteConfig controls remote delivery.
type RemoteConfig struct {
	// URL is the collector endpoint.
	URL string
	// Timeout bounds each delivery attempt.
	Timeout time.Duration
	// MaxPending caps undelivered entries (oldest dropped first). 0 means
	// unbounded.
	MaxPending int
	// DrainTimeout is how long Close waits for pending entries.
	DrainTimeout time.Duration
	// Transport overrides the HTTP transport built from URL and Timeout.
	Transport remote.Transport
}

// DefaultRemoteConfig returns the collector settings used when none are
// given: http://nexus-api:$NEXUS_PORT/logs with a 2s timeout.
func DefaultRemoteConfig() RemoteConfig {
	port := os.Getenv("NEXUS_PORT")
	if port == "" {
		port = "8080"
	}
	return RemoteConfig{
		URL:          remote.Endpoint("nexus-api", port, "/logs"),
		Timeout:      remote.DefaultTimeout,
		DrainTimeout: time.Second,
	}
}

// Logger fans accepted records out to the console and, when enabled, to a
// daily file sink and a remote delivery queue. It is safe for concurrent
// use, except that MinLevel is a plain field.
type Logger struct {
	// MinLevel is the minimum severity that is logged. Changes take effect
	// on the next call. Writes to this field are not synchronized with
	// concurrent log calls.
	MinLevel severity.Level

	core  *core
	attrs map[string]string
}

// core holds the sinks shared by a logger and its children.
type core struct {
	mu      sync.RWMutex
	console Sink
	file    *fileSink
	remote  *remoteSink
	queue   *remote.Queue
	closed  bool

	formatter *format.Formatter
	clock     func() time.Time
	fs        afero.Fs
	remoteCfg RemoteConfig
}

// options collects constructor settings.
type options struct {
	out      io.Writer
	minLevel severity.Level
	color    *bool
	clock    func() time.Time
	fs       afero.Fs
	remote   RemoteConfig
}

// Option configures a Logger.
type Option func(*options)

// WithOutput sets the console writer. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithMinLevel sets the initial threshold. Defaults to Info.
func WithMinLevel(level severity.Level) Option {
	return func(o *options) { o.minLevel = level }
}

// WithColor forces console color on or off. By default color is used when
// the console writer is a terminal.
func WithColor(color bool) Option {
	return func(o *options) { o.color = &color }
}

// WithClock sets the time source for record timestamps and file rotation.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithFs sets the filesystem used by the file sink.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithRemote sets the remote delivery configuration.
func WithRemote(cfg RemoteConfig) Option {
	return func(o *options) { o.remote = cfg }
}

// New creates a Logger with only the console sink attached.
func New(opts ...Option) *Logger {
	o := options{
		out:      os.Stdout,
		minLevel: severity.Info,
		clock:    time.Now,
		fs:       afero.NewOsFs(),
		remote:   DefaultRemoteConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	color := format.ShouldColor(o.out, format.ColorAuto)
	if o.color != nil {
		color = *o.color
	}
	formatter := format.New(color)

	return &Logger{
		MinLevel: o.minLevel,
		core: &core{
			console:   &consoleSink{w: o.out, formatter: formatter},
			formatter: formatter,
			clock:     o.clock,
			fs:        o.fs,
			remoteCfg: o.remote,
		},
	}
}

// NopLogger returns a Logger that discards all output.
// Useful for testing or when logging is disabled.
func NopLogger() *Logger {
	return New(WithOutput(io.Discard), WithColor(false))
}

// With returns a child Logger that adds key-value attributes to every
// record. Keys and values are provided as alternating arguments; non-string
// keys are skipped. The child shares the parent's sinks and starts with the
// parent's current MinLevel.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}

	attrs := make(map[string]string, len(l.attrs)+len(args)/2)
	for k, v := range l.attrs {
		attrs[k] = v
	}
	addArgs(attrs, args)

	return &Logger{
		MinLevel: l.MinLevel,
		core:     l.core,
		attrs:    attrs,
	}
}

// Log records msg at level with optional structured data. Records below
// MinLevel are dropped before anything else happens. Console and file
// errors are returned joined; remote delivery never produces an error.
func (l *Logger) Log(level severity.Level, msg string, data map[string]string) error {
	if !level.Enabled(l.MinLevel) {
		return nil
	}

	var attrs map[string]string
	if len(l.attrs) > 0 || len(data) > 0 {
		attrs = make(map[string]string, len(l.attrs)+len(data))
		for k, v := range l.attrs {
			attrs[k] = v
		}
		for k, v := range data {
			attrs[k] = v
		}
	}

	return l.core.dispatch(Record{
		Time:    l.core.clock(),
		Level:   level,
		Message: msg,
		Attrs:   attrs,
	})
}

// log is the shared path of the per-level methods.
func (l *Logger) log(level severity.Level, msg string, args []any) error {
	if !level.Enabled(l.MinLevel) {
		return nil
	}
	var data map[string]string
	if len(args) > 0 {
		data = make(map[string]string, len(args)/2)
		addArgs(data, args)
	}
	return l.Log(level, msg, data)
}

// Fatal logs at FATAL. It does not exit the process.
func (l *Logger) Fatal(msg string, args ...any) error {
	return l.log(severity.Fatal, msg, args)
}

// Critical logs at CRITICAL.
func (l *Logger) Critical(msg string, args ...any) error {
	return l.log(severity.Critical, msg, args)
}

// Error logs at ERROR.
func (l *Logger) Error(msg string, args ...any) error {
	return l.log(severity.Error, msg, args)
}

// Warning logs at WARNING.
func (l *Logger) Warning(msg string, args ...any) error {
	return l.log(severity.Warning, msg, args)
}

// Notice logs at NOTICE.
func (l *Logger) Notice(msg string, args ...any) error {
	return l.log(severity.Notice, msg, args)
}

// Info logs at INFO.
func (l *Logger) Info(msg string, args ...any) error {
	return l.log(severity.Info, msg, args)
}

// Debug logs at DEBUG.
func (l *Logger) Debug(msg string, args ...any) error {
	return l.log(severity.Debug, msg, args)
}

// Trace logs at TRACE.
func (l *Logger) Trace(msg string, args ...any) error {
	return l.log(severity.Trace, msg, args)
}

// addArgs copies alternating key-value arguments into m.
func addArgs(m map[string]string, args []any) {
	for i := 0; i < len(args)-1; i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		m[key] = fmt.Sprint(args[i+1])
	}
}

// dispatch writes rec to every attached sink. The read lock is held for
// the whole fan-out so that a concurrent disable waits for in-flight
// records instead of closing a sink under them.
func (c *core) dispatch(rec Record) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	if err := c.console.WriteRecord(rec); err != nil {
		errs = append(errs, err)
	}
	if c.file != nil {
		if err := c.file.WriteRecord(rec); err != nil {
			errs = append(errs, err)
		}
	}
	if c.remote != nil {
		_ = c.remote.WriteRecord(rec)
	}
	return errors.Join(errs...)
}

// EnableFileLogging attaches a daily file sink writing into dir, creating
// the directory if needed. Enabling the directory already in use is a
// no-op; enabling a different one replaces the current sink. A directory
// that cannot be created is returned as an *errors.ConfigError and leaves
// the current state unchanged.
func (l *Logger) EnableFileLogging(dir string) error {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrSinkClosed
	}
	if c.file != nil && c.file.sink.Dir() == dir {
		return nil
	}

	sink, err := filesink.New(dir, filesink.WithFs(c.fs), filesink.WithClock(c.clock))
	if err != nil {
		return fmt.Errorf("failed to enable file logging: %w", err)
	}

	if c.file != nil {
		_ = c.file.Close()
	}
	c.file = &fileSink{sink: sink, formatter: c.formatter}
	return nil
}

// DisableFileLogging detaches and closes the file sink. Disabling when no
// file sink is attached is a no-op.
func (l *Logger) DisableFileLogging() error {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// FileLoggingEnabled reports whether a file sink is attached.
func (l *Logger) FileLoggingEnabled() bool {
	c := l.core
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.file != nil
}

// FilePath returns the path of the file currently being written, or "".
func (l *Logger) FilePath() string {
	c := l.core
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.file == nil {
		return ""
	}
	return c.file.sink.Path()
}

// EnableRemoteLogging attaches the remote sink, tagging entries with
// service. The delivery queue and its worker are created on first use and
// reused afterwards.
func (l *Logger) EnableRemoteLogging(service string) error {
	if service == "" {
		service = DefaultService
	}

	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrSinkClosed
	}

	if c.queue == nil {
		transport := c.remoteCfg.Transport
		if transport == nil {
			transport = remote.NewHTTPTransport(c.remoteCfg.URL, c.remoteCfg.Timeout)
		}
		c.queue = remote.NewQueue(transport,
			remote.WithTimeout(c.remoteCfg.Timeout),
			remote.WithMaxPending(c.remoteCfg.MaxPending),
		)
		c.queue.Start()
	}

	c.queue.Enable()
	c.remote = &remoteSink{queue: c.queue, service: service}
	return nil
}

// DisableRemoteLogging detaches the remote sink so later records are not
// enqueued. Entries already queued are still attempted.
func (l *Logger) DisableRemoteLogging() {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queue != nil {
		c.queue.Disable()
	}
	c.remote = nil
}

// RemoteLoggingEnabled reports whether the remote sink is attached.
func (l *Logger) RemoteLoggingEnabled() bool {
	c := l.core
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remote != nil
}

// RemoteStats returns the delivery queue counters. ok is false if remote
// logging was never enabled.
func (l *Logger) RemoteStats() (stats remote.Stats, ok bool) {
	c := l.core
	c.mu.RLock()
	q := c.queue
	c.mu.RUnlock()

	if q == nil {
		return remote.Stats{}, false
	}
	return q.Stats(), true
}

// Close detaches the file and remote sinks, closing the file and giving
// the delivery queue up to RemoteConfig.DrainTimeout (bounded by ctx) to
// send what is pending. The console sink stays attached. Close is
// idempotent and affects every logger sharing these sinks.
func (l *Logger) Close(ctx context.Context) error {
	c := l.core
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	var errs []error
	if c.file != nil {
		if err := c.file.Close(); err != nil {
			errs = append(errs, err)
		}
		c.file = nil
	}
	c.remote = nil
	queue := c.queue
	drain := c.remoteCfg.DrainTimeout
	c.mu.Unlock()

	if err := c.console.Close(); err != nil {
		errs = append(errs, err)
	}

	if queue != nil {
		drainCtx := ctx
		if drain > 0 {
			var cancel context.CancelFunc
			drainCtx, cancel = context.WithTimeout(ctx, drain)
			defer cancel()
		}
		// Entries still pending after the grace period are dropped; that
		// is not an error for the caller.
		_ = queue.Close(drainCtx)
	}

	return errors.Join(errs...)
}
