// Package parser turns command lines into executable commands.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Napageneral/rolodex/internal/command"
)

var (
	ErrInvalidCommandFormat = errors.New("invalid command format")
	ErrUnknownCommand       = errors.New("unknown command")
	ErrInvalidIndex         = errors.New("index is not a non-zero unsigned integer")
)

// FormatError reports input that does not fit a command's shape. It
// matches ErrInvalidCommandFormat and carries the command's usage text.
type FormatError struct {
	Usage string
	Err   error
}

func (e *FormatError) Error() string {
	return "Invalid command format! \n" + e.Usage
}

func (e *FormatError) Is(target error) bool { return target == ErrInvalidCommandFormat }

func (e *FormatError) Unwrap() error { return e.Err }

func formatError(usage string, cause error) error {
	return &FormatError{Usage: usage, Err: cause}
}

// DuplicatePrefixError lists single-valued prefixes given more than once.
type DuplicatePrefixError struct {
	Prefixes []Prefix
}

func (e *DuplicatePrefixError) Error() string {
	parts := make([]string, len(e.Prefixes))
	for i, p := range e.Prefixes {
		parts[i] = string(p)
	}
	return "Multiple values specified for the following single-valued field(s): " + strings.Join(parts, " ")
}

// Parser parses full command lines. Loc is used for event times typed
// without a zone.
type Parser struct {
	Loc *time.Location
}

func New(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{Loc: loc}
}

// Parse splits line into a command word and arguments and builds the
// matching command.
func (p *Parser) Parse(line string) (command.Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, formatError(command.HelpUsage, nil)
	}
	word, args := trimmed, ""
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
		word, args = trimmed[:i], strings.TrimLeftFunc(trimmed[i:], unicode.IsSpace)
	}
	args = " " + args

	switch word {
	case "add":
		return parseAdd(args)
	case "edit":
		return parseEdit(args)
	case "delete":
		idx, err := parseIndexArg(args, command.DeleteUsage)
		if err != nil {
			return nil, err
		}
		return &command.Delete{Index: idx}, nil
	case "list":
		return command.List{}, nil
	case "clear":
		return command.Clear{}, nil
	case "find":
		return parseFind(args)
	case "search":
		return ParseSearch(args)
	case "import":
		file, err := parseFileArg(args, command.ImportUsage)
		if err != nil {
			return nil, err
		}
		return &command.Import{File: file}, nil
	case "export":
		file, err := parseFileArg(args, command.ExportUsage)
		if err != nil {
			return nil, err
		}
		return &command.Export{File: file}, nil
	case "importics":
		file, err := parseFileArg(args, command.ImportICSUsage)
		if err != nil {
			return nil, err
		}
		return &command.ImportICS{File: file}, nil
	case "exportics":
		file, err := parseFileArg(args, command.ExportICSUsage)
		if err != nil {
			return nil, err
		}
		return &command.ExportICS{File: file}, nil
	case "addevent":
		return p.parseAddEvent(args)
	case "editevent":
		return p.parseEditEvent(args)
	case "deleteevent":
		idx, err := parseIndexArg(args, command.DeleteEventUsage)
		if err != nil {
			return nil, err
		}
		return &command.DeleteEvent{Index: idx}, nil
	case "listevents":
		return command.ListEvents{}, nil
	case "assign":
		idx, indexes, names, err := parseLink(args, command.AssignUsage)
		if err != nil {
			return nil, err
		}
		return &command.Assign{EventIndex: idx, PersonIndexes: indexes, Names: names}, nil
	case "unassign":
		idx, indexes, names, err := parseLink(args, command.UnassignUsage)
		if err != nil {
			return nil, err
		}
		return &command.Unassign{EventIndex: idx, PersonIndexes: indexes, Names: names}, nil
	case "viewevent":
		idx, err := parseIndexArg(args, command.ViewEventUsage)
		if err != nil {
			return nil, err
		}
		return &command.ViewEvent{Index: idx}, nil
	case "upcoming":
		return parseUpcoming(args)
	case "help":
		return command.Help{}, nil
	case "exit":
		return command.Exit{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, word)
	}
}

// ParseIndex parses a one-based index.
func ParseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, ErrInvalidIndex
	}
	return n, nil
}

func parseIndexArg(args, usage string) (int, error) {
	idx, err := ParseIndex(args)
	if err != nil {
		return 0, formatError(usage, err)
	}
	return idx, nil
}

func parseFileArg(args, usage string) (string, error) {
	file := strings.TrimSpace(args)
	if file == "" {
		return "", formatError(usage, nil)
	}
	return file, nil
}

func parseUpcoming(args string) (command.Command, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return &command.Upcoming{}, nil
	}
	days, err := ParseIndex(s)
	if err != nil {
		return nil, formatError(command.UpcomingUsage, err)
	}
	return &command.Upcoming{Days: days}, nil
}
