// Package command holds the executable commands produced by the parser and
// the Model they run against.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Napageneral/rolodex/internal/model"
)

var ErrInvalidIndex = errors.New("invalid index")

const (
	MessagePersonsListed       = "%d persons listed!"
	MessageEventsListed        = "%d events listed!"
	MessageInvalidPersonIndex  = "The person index provided is invalid"
	MessageInvalidEventIndex   = "The event index provided is invalid"
	MessageDuplicatePerson     = "This person already exists in the address book"
	MessageDuplicateEvent      = "This event already exists in the address book"
	MessageUnknownPersonName   = "No person named %s exists in the address book"
	MessageAmbiguousPersonName = "More than one person is named %s; use a person index instead"
)

// Command is one parsed user instruction.
type Command interface {
	Execute(m *Model) (Result, error)
}

// Result is what a command reports back to the caller.
type Result struct {
	Feedback string `json:"feedback"`
	ShowHelp bool   `json:"show_help,omitempty"`
	Exit     bool   `json:"exit,omitempty"`
	// Changed is set when the address book was modified and needs saving.
	Changed bool `json:"changed,omitempty"`
}

// Error is a user-facing command failure. Err, when set, is the underlying
// cause and stays reachable through errors.Is/As.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func fail(cause error, format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...), Err: cause}
}

// FormatPerson renders a person for feedback messages.
func FormatPerson(p *model.Person) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s; Phone: %s; Email: %s; Address: %s; Tags: ", p.Name, p.Phone, p.Email, p.Address)
	for _, t := range p.Tags {
		b.WriteString(t.String())
	}
	return b.String()
}

// FormatEvent renders an event for feedback messages.
func FormatEvent(e *model.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s; Start: %s", e.Name, e.Start.Format(model.TimeLayout))
	if !e.End.IsZero() {
		fmt.Fprintf(&b, "; End: %s", e.End.Format(model.TimeLayout))
	}
	if e.Location != "" {
		fmt.Fprintf(&b, "; Location: %s", e.Location)
	}
	if e.Description != "" {
		fmt.Fprintf(&b, "; Description: %s", e.Description)
	}
	if e.Recurrence != "" {
		fmt.Fprintf(&b, "; Repeats: %s", e.Recurrence)
	}
	return b.String()
}

const HelpUsage = "help: Shows program usage instructions.\nExample: help"

// Help shows the command summary.
type Help struct{}

func (Help) Execute(*Model) (Result, error) {
	return Result{Feedback: Usages(), ShowHelp: true}, nil
}

const ExitUsage = "exit: Exits the program.\nExample: exit"

// Exit asks the caller to stop reading commands.
type Exit struct{}

func (Exit) Execute(*Model) (Result, error) {
	return Result{Feedback: "Exiting as requested ...", Exit: true}, nil
}

// Usages joins the usage text of every command.
func Usages() string {
	return strings.Join([]string{
		AddUsage, EditUsage, DeleteUsage, ListUsage, ClearUsage, FindUsage, SearchUsage,
		ImportUsage, ExportUsage,
		AddEventUsage, EditEventUsage, DeleteEventUsage, ListEventsUsage,
		AssignUsage, UnassignUsage, ViewEventUsage, UpcomingUsage,
		ImportICSUsage, ExportICSUsage,
		HelpUsage, ExitUsage,
	}, "\n\n")
}
