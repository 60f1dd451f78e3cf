package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the on-disk format for due dates and deadlines.
const DateLayout = "2006-01-02"

// Record is implemented by every persisted collection entry.
type Record interface {
	RecordID() string
}

// Deadline is implemented by records that carry a due date and take part in
// reminder classification.
type Deadline interface {
	Record
	// Due returns the record's due date. The second result is false when the
	// record has no parseable due date.
	Due() (time.Time, bool)
	// Terminal reports whether the record is finished and should be ignored
	// by reminders regardless of its date.
	Terminal() bool
}

// NewID returns a fresh record identifier. Identifiers are never reused.
func NewID() string {
	return uuid.NewString()
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
