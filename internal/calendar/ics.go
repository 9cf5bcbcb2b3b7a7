// Package calendar converts events to and from iCalendar files and expands
// recurring events into concrete occurrences.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Napageneral/rolodex/internal/model"
)

var ErrInvalidCalendar = errors.New("invalid calendar")

const productID = "-//Napageneral//rolodex//EN"

// Read parses an iCalendar stream. Every VEVENT must carry a SUMMARY and a
// DTSTART; one bad event fails the whole read. Times are converted to loc.
func Read(r io.Reader, loc *time.Location) ([]*model.Event, error) {
	if loc == nil {
		loc = time.Local
	}
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCalendar, err)
	}

	var events []*model.Event
	for i, ve := range cal.Events() {
		e, err := fromVEvent(ve, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", ErrInvalidCalendar, i+1, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// ReadFile reads the iCalendar file at path.
func ReadFile(path string, loc *time.Location) ([]*model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, loc)
}

func fromVEvent(ve *ical.VEvent, loc *time.Location) (*model.Event, error) {
	summary := ve.GetProperty(ical.ComponentPropertySummary)
	if summary == nil {
		return nil, errors.New("missing SUMMARY")
	}
	name, err := model.ParseEventName(unescape(summary.Value))
	if err != nil {
		return nil, err
	}
	if ve.GetProperty(ical.ComponentPropertyDtStart) == nil {
		return nil, errors.New("missing DTSTART")
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("bad DTSTART: %w", err)
	}

	e := &model.Event{Name: name, Start: start.In(loc)}
	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		end, err := ve.GetEndAt()
		if err != nil {
			return nil, fmt.Errorf("bad DTEND: %w", err)
		}
		e.End = end.In(loc)
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		e.Location = unescape(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Description = unescape(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rec, err := model.ParseRecurrence(unescape(p.Value))
		if err != nil {
			return nil, err
		}
		e.Recurrence = rec
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Write serializes events as a PUBLISH calendar. UIDs are derived from
// event IDs so repeated exports of the same book are stable.
func Write(w io.Writer, events []*model.Event, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(eventUID(e))
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Name)
		ve.SetStartAt(e.Start)
		if !e.End.IsZero() {
			ve.SetEndAt(e.End)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Recurrence != "" {
			ve.AddRrule(e.Recurrence)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// WriteFile writes events to path, replacing any existing file.
func WriteFile(path string, events []*model.Event, stamp time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, events, stamp); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func eventUID(e *model.Event) string {
	if e.ID > 0 {
		return "event-" + strconv.Itoa(e.ID) + "@rolodex"
	}
	return "event-" + e.Start.UTC().Format("20060102T150405Z") + "@rolodex"
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescape(s string) string {
	return textUnescaper.Replace(s)
}
