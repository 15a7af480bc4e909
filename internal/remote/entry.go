package remote

import (
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
)

// DateLayout is the layout of Entry.Date. Dates are always UTC.
const DateLayout = "2006-01-02 15:04:05"

// Entry is one log record as sent to the collector.
type Entry struct {
	ID      string            `json:"id"`
	Service string            `json:"service"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
	Date    string            `json:"date"`
}

// NewEntry creates an Entry with a fresh random ID, stamped with the
// current UTC time. A nil data map is replaced with an empty one so that it
// serializes as {}.
func NewEntry(service, level, message string, data map[string]string) Entry {
	return NewEntryAt(time.Now(), service, level, message, data)
}

// NewEntryAt is NewEntry with an explicit creation time.
func NewEntryAt(now time.Time, service, level, message string, data map[string]string) Entry {
	copied := make(map[string]string, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return Entry{
		ID:      uuid.NewString(),
		Service: service,
		Level:   level,
		Message: message,
		Data:    copied,
		Date:    now.UTC().Format(DateLayout),
	}
}

// Marshal serializes the entry to its wire form.
func (e Entry) Marshal() ([]byte, error) {
	if e.Data == nil {
		e.Data = map[string]string{}
	}
	return json.Marshal(e)
}
