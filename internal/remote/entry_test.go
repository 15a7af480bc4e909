package remote

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
)

func decodeEntry(payload []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(payload, &e)
	return e, err
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 7, 4, 23, 30, 15, 0, time.FixedZone("UTC-5", -5*3600))
	data := map[string]string{"user": "42"}

	e := NewEntryAt(now, "billing", "ERROR", "charge failed", data)

	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", e.ID, err)
	}
	if e.Date != "2026-07-05 04:30:15" {
		t.Errorf("Date = %q, want UTC %q", e.Date, "2026-07-05 04:30:15")
	}
	if e.Service != "billing" || e.Level != "ERROR" || e.Message != "charge failed" {
		t.Errorf("unexpected entry fields: %+v", e)
	}

	data["user"] = "changed"
	if e.Data["user"] != "42" {
		t.Error("entry data should not alias the caller's map")
	}
}

func TestNewEntryIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewEntry("svc", "INFO", "m", nil).ID
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestEntryMarshal(t *testing.T) {
	t.Run("wire shape", func(t *testing.T) {
		e := Entry{
			ID:      "abc",
			Service: "svc",
			Level:   "WARNING",
			Message: "disk at 91%",
			Data:    map[string]string{"mount": "/"},
			Date:    "2026-01-02 03:04:05",
		}
		payload, err := e.Marshal()
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		var fields map[string]any
		if err := json.Unmarshal(payload, &fields); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		for _, key := range []string{"id", "service", "level", "message", "data", "date"} {
			if _, ok := fields[key]; !ok {
				t.Errorf("payload missing field %q: %s", key, payload)
			}
		}
		if len(fields) != 6 {
			t.Errorf("payload has %d fields, want 6: %s", len(fields), payload)
		}
	})

	t.Run("nil data is an empty object", func(t *testing.T) {
		payload, err := Entry{ID: "x"}.Marshal()
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !regexp.MustCompile(`"data":\{\}`).Match(payload) {
			t.Errorf("expected empty data object in %s", payload)
		}
	})
}
