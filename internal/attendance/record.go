package attendance

import (
	"errors"
	"time"
)

// Status is the per-day attendance marker. StatusNone is the absence of a
// record: upserting it deletes the row, and unrecorded days read back as it.
type Status string

const (
	StatusNone    Status = "none"
	StatusPresent Status = "present"
	StatusExam    Status = "exam"
	StatusLeave   Status = "leave"
)

// Valid reports whether s is one of the wire-format status values.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusPresent, StatusExam, StatusLeave:
		return true
	}
	return false
}

// DateFormat is the key format for records, ISO-8601 calendar date.
const DateFormat = "2006-01-02"

// ErrInvalidDate is returned when a date string is not a YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Entry is the stored value for one date.
type Entry struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// Record is an entry together with its date key and write timestamp.
type Record struct {
	Date      string    `json:"date"`
	Status    Status    `json:"status"`
	Reason    string    `json:"reason"`
	UpdatedAt time.Time `json:"updated_at"`
}
