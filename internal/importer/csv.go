// Package importer reads and writes person lists in the CSV format used by
// the import and export commands and by the live inbox.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Napageneral/rolodex/internal/model"
)

var (
	ErrFileNotFound        = errors.New("file not found")
	ErrIncorrectFileFormat = errors.New("incorrect file format")
)

// Header is the first row of every CSV file.
var Header = []string{"Name", "Phone Number", "Email Address", "Address", "Tags"}

// Error reports a failed import. Kind is ErrFileNotFound or
// ErrIncorrectFileFormat.
type Error struct {
	Kind   error
	File   string
	Detail string
}

func (e *Error) Error() string {
	if errors.Is(e.Kind, ErrFileNotFound) {
		return fmt.Sprintf("The file %s does not exist.", e.File)
	}
	if e.Detail == "" {
		return fmt.Sprintf("The file %s has an incorrect format.", e.File)
	}
	return fmt.Sprintf("The file %s has an incorrect format: %s", e.File, e.Detail)
}

func (e *Error) Unwrap() error { return e.Kind }

func formatErr(file, format string, args ...any) *Error {
	return &Error{Kind: ErrIncorrectFileFormat, File: file, Detail: fmt.Sprintf(format, args...)}
}

// ReadFile decodes the persons in the CSV file at path.
func ReadFile(path string) ([]*model.Person, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &Error{Kind: ErrFileNotFound, File: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, &Error{Kind: ErrFileNotFound, File: name}
	}
	return Decode(f, name)
}

// Decode reads a header row and then one person per row. Every row must be
// valid and no two rows may describe the same person; otherwise nothing is
// returned. name is only used in error messages.
func Decode(r io.Reader, name string) ([]*model.Person, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, formatErr(name, "the file is empty")
	}
	if err != nil {
		return nil, formatErr(name, "%v", csvDetail(err))
	}
	if !isHeader(header) {
		return nil, formatErr(name, "the first row must be %s", strings.Join(Header, ","))
	}

	var persons []*model.Person
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatErr(name, "%v", csvDetail(err))
		}
		p, err := decodeRow(rec)
		if err != nil {
			return nil, formatErr(name, "row %d: %v", line, err)
		}
		for _, seen := range persons {
			if seen.IsSamePerson(p) {
				return nil, formatErr(name, "row %d repeats %s", line, p.Name)
			}
		}
		persons = append(persons, p)
	}
	if len(persons) == 0 {
		return nil, formatErr(name, "the file has no persons")
	}
	return persons, nil
}

func isHeader(rec []string) bool {
	if len(rec) != len(Header) {
		return false
	}
	for i, h := range Header {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), h) {
			return false
		}
	}
	return true
}

func decodeRow(rec []string) (*model.Person, error) {
	name, err := model.ParseName(rec[0])
	if err != nil {
		return nil, err
	}
	phone, err := model.ParsePhone(rec[1])
	if err != nil {
		return nil, err
	}
	email, err := model.ParseEmail(rec[2])
	if err != nil {
		return nil, err
	}
	address, err := model.ParseAddress(rec[3])
	if err != nil {
		return nil, err
	}
	tags, err := model.ParseTags(splitTags(rec[4]))
	if err != nil {
		return nil, err
	}
	return model.NewPerson(name, phone, email, address, tags), nil
}

func splitTags(cell string) []string {
	return strings.FieldsFunc(cell, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// csvDetail turns csv parse errors into a short message. Wrong field counts
// are the common case and get spelled out.
func csvDetail(err error) string {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		if errors.Is(pe.Err, csv.ErrFieldCount) {
			return fmt.Sprintf("row %d should have %d fields", pe.StartLine, len(Header))
		}
		return fmt.Sprintf("row %d: %v", pe.StartLine, pe.Err)
	}
	return err.Error()
}

// Encode writes the header and one row per person.
func Encode(w io.Writer, persons []*model.Person) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range persons {
		tags := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = string(t)
		}
		row := []string{
			p.Name.String(),
			p.Phone.String(),
			p.Email.String(),
			p.Address.String(),
			strings.Join(tags, ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes persons to path, replacing any existing file.
func WriteFile(path string, persons []*model.Person) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, persons); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
