package calendar

import (
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/Napageneral/rolodex/internal/model"
)

const (
	// maxOccurrencesPerEvent caps expansion of very dense rules.
	maxOccurrencesPerEvent = 1000
	// maxSkippedPerEvent bounds the walk from an old start up to the window.
	maxSkippedPerEvent = 200000
)

// Occurrence is one concrete instance of an event.
type Occurrence struct {
	Event *model.Event
	Start time.Time
	End   time.Time
}

// Expand returns the occurrences of events that start within [from, to],
// sorted by start time and then by event name. Single events occur once;
// recurring events follow their RRULE from their own start. Occurrence
// times are converted to loc.
func Expand(events []*model.Event, from, to time.Time, loc *time.Location) []Occurrence {
	if loc == nil {
		loc = time.Local
	}
	if to.Before(from) {
		return nil
	}

	var out []Occurrence
	for _, e := range events {
		for _, start := range starts(e, from, to) {
			occ := Occurrence{Event: e, Start: start.In(loc)}
			if !e.End.IsZero() {
				occ.End = start.Add(e.End.Sub(e.Start)).In(loc)
			}
			out = append(out, occ)
		}
	}

	slices.SortStableFunc(out, func(a, b Occurrence) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		switch {
		case a.Event.Name < b.Event.Name:
			return -1
		case a.Event.Name > b.Event.Name:
			return 1
		}
		return 0
	})
	return out
}

func starts(e *model.Event, from, to time.Time) []time.Time {
	if e.Recurrence == "" {
		if e.Start.Before(from) || e.Start.After(to) {
			return nil
		}
		return []time.Time{e.Start}
	}

	r, err := rrule.StrToRRule(e.Recurrence)
	if err != nil {
		// Stored recurrences are validated on the way in; fall back to the
		// first occurrence.
		return starts(&model.Event{Start: e.Start}, from, to)
	}
	r.DTStart(e.Start)

	var times []time.Time
	skipped := 0
	next := r.Iterator()
	for len(times) < maxOccurrencesPerEvent {
		t, ok := next()
		if !ok || t.After(to) {
			break
		}
		if t.Before(from) {
			if skipped++; skipped >= maxSkippedPerEvent {
				break
			}
			continue
		}
		times = append(times, t)
	}
	return times
}
