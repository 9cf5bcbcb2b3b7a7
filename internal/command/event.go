package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Napageneral/rolodex/internal/addressbook"
	"github.com/Napageneral/rolodex/internal/calendar"
	"github.com/Napageneral/rolodex/internal/model"
	"github.com/Napageneral/rolodex/internal/predicate"
)

const AddEventUsage = "addevent: Adds an event to the address book.\n" +
	"Parameters: n/NAME from/START [to/END] [l/LOCATION] [d/DESCRIPTION] [rr/RRULE]\n" +
	"START and END look like 2024-03-01 10:00\n" +
	"Example: addevent n/Team Meeting from/2024-03-01 10:00 to/2024-03-01 11:00 l/Room 1 rr/FREQ=WEEKLY"

// AddEvent inserts a new event.
type AddEvent struct {
	Event *model.Event
}

func (c *AddEvent) Execute(m *Model) (Result, error) {
	added, err := m.book.AddEvent(c.Event)
	if errors.Is(err, addressbook.ErrDuplicateEvent) {
		return Result{}, fail(err, MessageDuplicateEvent)
	}
	if err != nil {
		return Result{}, fail(err, "Could not add event: %v", err)
	}
	return Result{Feedback: "New event added: " + FormatEvent(added), Changed: true}, nil
}

const EditEventUsage = "editevent: Edits the event identified by the index number used in the event list.\n" +
	"Parameters: INDEX (must be a positive integer) [n/NAME] [from/START] [to/END] [l/LOCATION] [d/DESCRIPTION] [rr/RRULE]\n" +
	"An empty to/, l/, d/ or rr/ clears that field.\n" +
	"Example: editevent 1 l/Room 2"

// EditEventDescriptor holds the event fields to change; nil fields keep
// their current value. A zero End clears the end time.
type EditEventDescriptor struct {
	Name        *string
	Start       *time.Time
	End         *time.Time
	Location    *string
	Description *string
	Recurrence  *string
}

func (d EditEventDescriptor) AnyFieldEdited() bool {
	return d.Name != nil || d.Start != nil || d.End != nil ||
		d.Location != nil || d.Description != nil || d.Recurrence != nil
}

func (d EditEventDescriptor) apply(e *model.Event) *model.Event {
	out := e.Clone()
	if d.Name != nil {
		out.Name = *d.Name
	}
	if d.Start != nil {
		out.Start = *d.Start
	}
	if d.End != nil {
		out.End = *d.End
	}
	if d.Location != nil {
		out.Location = *d.Location
	}
	if d.Description != nil {
		out.Description = *d.Description
	}
	if d.Recurrence != nil {
		out.Recurrence = *d.Recurrence
	}
	return out
}

// EditEvent changes the event listed at Index.
type EditEvent struct {
	Index      int
	Descriptor EditEventDescriptor
}

func (c *EditEvent) Execute(m *Model) (Result, error) {
	target, err := m.eventAt(c.Index)
	if err != nil {
		return Result{}, err
	}
	edited, err := m.book.SetEvent(target, c.Descriptor.apply(target))
	if errors.Is(err, addressbook.ErrDuplicateEvent) {
		return Result{}, fail(err, MessageDuplicateEvent)
	}
	if err != nil {
		return Result{}, fail(err, "Could not edit event: %v", err)
	}
	return Result{Feedback: "Edited Event: " + FormatEvent(edited), Changed: true}, nil
}

const DeleteEventUsage = "deleteevent: Deletes the event identified by the index number used in the event list " +
	"and removes it from every person.\n" +
	"Parameters: INDEX (must be a positive integer)\n" +
	"Example: deleteevent 1"

// DeleteEvent removes the event listed at Index.
type DeleteEvent struct {
	Index int
}

func (c *DeleteEvent) Execute(m *Model) (Result, error) {
	target, err := m.eventAt(c.Index)
	if err != nil {
		return Result{}, err
	}
	if err := m.book.RemoveEvent(target); err != nil {
		return Result{}, fail(err, "Could not delete event: %v", err)
	}
	return Result{Feedback: "Deleted Event: " + FormatEvent(target), Changed: true}, nil
}

const ListEventsUsage = "listevents: Lists all events with their index numbers.\nExample: listevents"

// ListEvents shows every event.
type ListEvents struct{}

func (ListEvents) Execute(m *Model) (Result, error) {
	events := m.Events()
	var b strings.Builder
	fmt.Fprintf(&b, MessageEventsListed, len(events))
	for i, e := range events {
		fmt.Fprintf(&b, "\n%d. %s", i+1, FormatEvent(e))
	}
	return Result{Feedback: b.String()}, nil
}

const AssignUsage = "assign: Links persons to the event identified by its index in the event list. " +
	"Persons are given by their index in the displayed person list or by their full name.\n" +
	"Parameters: INDEX [pi/PERSON_INDEX]... [n/NAME]...\n" +
	"Example: assign 1 pi/2 n/Alice Pauline"

// Assign links persons to an event.
type Assign struct {
	EventIndex    int
	PersonIndexes []int
	Names         []model.Name
}

func (c *Assign) Execute(m *Model) (Result, error) {
	event, persons, err := resolveLink(m, c.EventIndex, c.PersonIndexes, c.Names)
	if err != nil {
		return Result{}, err
	}
	for _, p := range persons {
		if err := m.book.LinkPersonToEvent(p.ID, event.ID); err != nil {
			return Result{}, fail(err, "Could not assign %s: %v", p.Name, err)
		}
	}
	return Result{
		Feedback: fmt.Sprintf("Assigned %s to %s", joinNames(persons), event.Name),
		Changed:  true,
	}, nil
}

const UnassignUsage = "unassign: Removes persons from the event identified by its index in the event list.\n" +
	"Parameters: INDEX [pi/PERSON_INDEX]... [n/NAME]...\n" +
	"Example: unassign 1 n/Alice Pauline"

// Unassign removes links between persons and an event.
type Unassign struct {
	EventIndex    int
	PersonIndexes []int
	Names         []model.Name
}

func (c *Unassign) Execute(m *Model) (Result, error) {
	event, persons, err := resolveLink(m, c.EventIndex, c.PersonIndexes, c.Names)
	if err != nil {
		return Result{}, err
	}
	for _, p := range persons {
		if !p.HasEvent(event.ID) {
			return Result{}, fail(nil, "%s is not assigned to %s", p.Name, event.Name)
		}
	}
	for _, p := range persons {
		if err := m.book.UnlinkPersonFromEvent(p.ID, event.ID); err != nil {
			return Result{}, fail(err, "Could not unassign %s: %v", p.Name, err)
		}
	}
	return Result{
		Feedback: fmt.Sprintf("Unassigned %s from %s", joinNames(persons), event.Name),
		Changed:  true,
	}, nil
}

func resolveLink(m *Model, eventIndex int, indexes []int, names []model.Name) (*model.Event, []*model.Person, error) {
	event, err := m.eventAt(eventIndex)
	if err != nil {
		return nil, nil, err
	}
	if len(indexes) == 0 && len(names) == 0 {
		return nil, nil, fail(nil, "At least one person must be given")
	}
	var persons []*model.Person
	seen := make(map[int]bool)
	for _, i := range indexes {
		p, err := m.personAt(i)
		if err != nil {
			return nil, nil, err
		}
		if !seen[p.ID] {
			seen[p.ID] = true
			persons = append(persons, p)
		}
	}
	named, err := personsByNames(m, names)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range named {
		if !seen[p.ID] {
			seen[p.ID] = true
			persons = append(persons, p)
		}
	}
	return event, persons, nil
}

func joinNames(persons []*model.Person) string {
	names := make([]string, len(persons))
	for i, p := range persons {
		names[i] = p.Name.String()
	}
	return strings.Join(names, ", ")
}

const ViewEventUsage = "viewevent: Lists the persons assigned to the event identified by its index in the event list.\n" +
	"Parameters: INDEX (must be a positive integer)\n" +
	"Example: viewevent 1"

// ViewEvent filters the displayed persons to those linked to an event.
type ViewEvent struct {
	Index int
}

func (c *ViewEvent) Execute(m *Model) (Result, error) {
	event, err := m.eventAt(c.Index)
	if err != nil {
		return Result{}, err
	}
	m.UpdateFilteredPersons(predicate.EventIDs{event.ID})
	return Result{Feedback: FormatEvent(event) + "\n" +
		fmt.Sprintf(MessagePersonsListed, len(m.FilteredPersons()))}, nil
}

const UpcomingUsage = "upcoming: Lists event occurrences from now on, expanding repeating events.\n" +
	"Parameters: [DAYS] (defaults to the configured horizon)\n" +
	"Example: upcoming 7"

// Upcoming lists occurrences in the next Days days. Days <= 0 uses the
// configured horizon.
type Upcoming struct {
	Days int
}

func (c *Upcoming) Execute(m *Model) (Result, error) {
	days := c.Days
	if days <= 0 {
		days = m.opts.HorizonDays
	}
	now := m.opts.Now().In(m.opts.Location)
	occ := calendar.Expand(m.Events(), now, now.AddDate(0, 0, days), m.opts.Location)

	var b strings.Builder
	fmt.Fprintf(&b, "%d upcoming occurrences in the next %d days", len(occ), days)
	for _, o := range occ {
		fmt.Fprintf(&b, "\n%s  %s", o.Start.Format(model.TimeLayout), o.Event.Name)
		if o.Event.Location != "" {
			fmt.Fprintf(&b, " (%s)", o.Event.Location)
		}
	}
	return Result{Feedback: b.String()}, nil
}
