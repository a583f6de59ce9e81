package readingdb

import (
	"testing"
	"time"
)

func TestDummyConnection(t *testing.T) {
	db := DummyConnection()
	if db.IsConnected() {
		t.Error("DummyConnection reports itself connected")
	}
	// All recording calls are no-ops on a dummy connection.
	db.RecordReading(&ReadingMessage{Channel: 7, Raw: 210, Time: time.Now()})
	db.RecordReading(nil)
	db.Disconnect()

	var nildb *Connection
	if nildb.IsConnected() {
		t.Error("nil Connection reports itself connected")
	}
	nildb.RecordReading(&ReadingMessage{})
}

func TestNewSessionID(t *testing.T) {
	t0 := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewSessionID(t0)
	if len(id) != 26 {
		t.Errorf("session ID %q has length %d, want 26 (ULID)", id, len(id))
	}
	// IDs from increasing timestamps sort lexically.
	later := NewSessionID(t0.Add(time.Second))
	if !(id < later) {
		t.Errorf("session IDs do not sort by time: %q >= %q", id, later)
	}
}
