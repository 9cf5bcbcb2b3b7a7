package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	EventNameConstraints  = "Event names should not be blank"
	EventTimeConstraints  = "Event end time should not be before its start time"
	RecurrenceConstraints = "Recurrence should be an RFC 5545 RRULE, e.g. FREQ=WEEKLY;BYDAY=MO"
)

// TimeLayout is the layout used for event times in commands and CSV output.
const TimeLayout = "2006-01-02 15:04"

// Event is a dated entry that persons can be linked to.
//
// End is zero for events without an end. Recurrence, when set, is an RRULE
// value without the "RRULE:" prefix.
type Event struct {
	ID          int
	Name        string
	Start       time.Time
	End         time.Time
	Location    string
	Description string
	Recurrence  string
}

// ParseEventName trims raw and rejects blank names.
func ParseEventName(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalid(EventNameConstraints)
	}
	return s, nil
}

// ParseEventTime parses raw in TimeLayout (or as a bare date) in loc.
func ParseEventTime(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{TimeLayout, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid(fmt.Sprintf("Event times should look like %q", TimeLayout))
}

// ParseRecurrence validates an RRULE value. An empty string means no
// recurrence.
func ParseRecurrence(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "RRULE:")
	if s == "" {
		return "", nil
	}
	if _, err := rrule.StrToRRule(s); err != nil {
		return "", invalid(RecurrenceConstraints)
	}
	return s, nil
}

// Validate checks cross-field constraints.
func (e *Event) Validate() error {
	if e.ID < 0 {
		return invalid(IDConstraints)
	}
	if strings.TrimSpace(e.Name) == "" {
		return invalid(EventNameConstraints)
	}
	if !e.End.IsZero() && e.End.Before(e.Start) {
		return invalid(EventTimeConstraints)
	}
	return nil
}

// Clone returns a copy.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// WithID returns a copy of e carrying id.
func (e *Event) WithID(id int) *Event {
	c := e.Clone()
	c.ID = id
	return c
}

// IsSameEvent reports identity equality: same name ignoring case and the
// same start instant.
func (e *Event) IsSameEvent(other *Event) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	return strings.EqualFold(e.Name, other.Name) && e.Start.Equal(other.Start)
}

// Equal reports full structural equality.
func (e *Event) Equal(other *Event) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	return e.ID == other.ID &&
		e.Name == other.Name &&
		e.Start.Equal(other.Start) &&
		e.End.Equal(other.End) &&
		e.Location == other.Location &&
		e.Description == other.Description &&
		e.Recurrence == other.Recurrence
}

func (e *Event) String() string {
	end := ""
	if !e.End.IsZero() {
		end = e.End.Format(TimeLayout)
	}
	return fmt.Sprintf("Event{id=%d, name=%s, start=%s, end=%s, location=%s, recurrence=%s}",
		e.ID, e.Name, e.Start.Format(TimeLayout), end, e.Location, e.Recurrence)
}
