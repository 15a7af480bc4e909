package logging

import (
	"fmt"
	"io"
	"sync"

	"github.com/Iron-Ham/daylog/internal/filesink"
	"github.com/Iron-Ham/daylog/internal/format"
	"github.com/Iron-Ham/daylog/internal/remote"
)

// Sink receives accepted records.
type Sink interface {
	WriteRecord(rec Record) error
	Close() error
}

// flusher is implemented by buffered console writers.
type flusher interface {
	Flush() error
}

// consoleSink writes the colored (or plain) line to a writer and flushes
// it when the writer supports flushing.
type consoleSink struct {
	mu        sync.Mutex
	w         io.Writer
	formatter *format.Formatter
}

func (s *consoleSink) WriteRecord(rec Record) error {
	line := s.formatter.RenderConsole(rec.Time, rec.Level, rec.Message) + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, line); err != nil {
		return fmt.Errorf("failed to write console log: %w", err)
	}
	if f, ok := s.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush console log: %w", err)
		}
	}
	return nil
}

// Close flushes the writer; the writer itself is owned by the caller.
func (s *consoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// fileSink writes the uncolored line to the day file.
type fileSink struct {
	sink      *filesink.Sink
	formatter *format.Formatter
}

func (s *fileSink) WriteRecord(rec Record) error {
	return s.sink.Write(s.formatter.RenderPlain(rec.Time, rec.Level, rec.Message))
}

func (s *fileSink) Close() error {
	return s.sink.Close()
}

// remoteSink turns records into entries and hands them to the queue. It
// never blocks on the network and never fails.
type remoteSink struct {
	queue   *remote.Queue
	service string
}

func (s *remoteSink) WriteRecord(rec Record) error {
	s.queue.Enqueue(remote.NewEntryAt(rec.Time, s.service, rec.Level.String(), rec.Message, rec.Attrs))
	return nil
}

func (s *remoteSink) Close() error {
	return nil
}
