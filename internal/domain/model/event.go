package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldDelimiter separates the six fields of an upload line.
const FieldDelimiter = "|"

// NullParent is the literal token used for events without a parent.
const NullParent = "NULL"

const eventLineFields = 6

// Event is a named time interval, optionally nested under a parent event.
// DurationMinutes is always derived from StartDate and EndDate.
type Event struct {
	EventID         string    `json:"event_id"`
	EventName       string    `json:"event_name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	DurationMinutes int       `json:"duration_minutes"`
	ParentID        *string   `json:"parent_id"`
	Description     string    `json:"description"`
}

// HasParent reports whether the event is nested under another event.
func (e *Event) HasParent() bool { return e != nil && e.ParentID != nil }

// LineFault classifies why an upload line was rejected.
type LineFault string

const (
	FaultMalformedLine LineFault = "MalformedLine"
	FaultInvalidID     LineFault = "InvalidId"
	FaultInvalidDate   LineFault = "InvalidDate"
	FaultInvalidParent LineFault = "InvalidParent"
	FaultInvalidRange  LineFault = "InvalidRange"
)

// LineError is the expected outcome for a malformed line. Message is what the
// ingestion report shows to the uploader.
type LineError struct {
	Fault   LineFault
	Message string
}

func (e *LineError) Error() string { return e.Message }

func lineErr(f LineFault, msg string) *LineError {
	return &LineError{Fault: f, Message: msg}
}

// ParseEventLine turns one raw line of the form
//
//	EVENT_ID|EVENT_NAME|START_DATE_ISO|END_DATE_ISO|PARENT_ID|DESCRIPTION
//
// into a validated Event. Any validation failure is returned as *LineError.
// EVENT_ID and PARENT_ID are canonicalised to lowercase hyphenated UUIDs, so
// spellings of the same UUID are one event. The function has no side effects.
func ParseEventLine(line string) (*Event, error) {
	parts := strings.Split(strings.TrimSpace(line), FieldDelimiter)
	if len(parts) != eventLineFields {
		return nil, lineErr(FaultMalformedLine, "Incorrect number of fields")
	}
	rawID, name, rawStart, rawEnd, rawParent, description := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, lineErr(FaultInvalidID, "Invalid EVENT_ID (UUID expected)")
	}

	start, err := ParseISOTimestamp(rawStart)
	if err != nil {
		return nil, lineErr(FaultInvalidDate, "Invalid START_DATE_ISO")
	}
	end, err := ParseISOTimestamp(rawEnd)
	if err != nil {
		return nil, lineErr(FaultInvalidDate, "Invalid END_DATE_ISO")
	}

	var parentID *string
	if rawParent != NullParent {
		pid, err := uuid.Parse(rawParent)
		if err != nil {
			return nil, lineErr(FaultInvalidParent, "Invalid PARENT_ID (UUID or 'NULL' expected)")
		}
		s := pid.String()
		parentID = &s
	}

	// Checked on the raw interval: a sub-minute negative span must not
	// truncate to a zero duration.
	if end.Before(start) {
		return nil, lineErr(FaultInvalidRange, "END_DATE_ISO is before START_DATE_ISO")
	}

	return &Event{
		EventID:         id.String(),
		EventName:       name,
		StartDate:       start,
		EndDate:         end,
		DurationMinutes: DurationMinutes(start, end),
		ParentID:        parentID,
		Description:     description,
	}, nil
}

// DurationMinutes returns the whole minutes between start and end, rounded down.
func DurationMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return -int((-d + time.Minute - 1) / time.Minute)
	}
	return int(d / time.Minute)
}

var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04",
	"2006-01-02T15Z07:00",
	"2006-01-02T15-0700",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseISOTimestamp parses an ISO-8601 date or date-time. A trailing "Z" is
// UTC, a space may replace the "T" separator, minutes and seconds may be
// omitted and offsets may be written +HH:MM or +HHMM. Values without an
// offset are taken as UTC. The result is
// always in UTC.
func ParseISOTimestamp(s string) (time.Time, error) {
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	var err error
	for _, layout := range isoLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
