package readingdb

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// The composite types used for messages to the ClickHouse database.

// SessionMessage is the information for the capturesessions table: one row
// per engine lifetime.
type SessionMessage struct {
	ID             string
	Hostname       string
	Version        string
	Githash        string
	GoVersion      string
	ActiveChannels int
	Window         int
	Combined       bool
	Start          time.Time
	End            time.Time
}

// ReadingMessage is the information for the readings table: one row per
// averaged reading served.
type ReadingMessage struct {
	SessionID string
	Channel   int
	Rank      int
	Raw       uint16
	Scaled    float64
	Time      time.Time
}

// NewSessionID returns a lexically sortable unique session identifier.
func NewSessionID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
