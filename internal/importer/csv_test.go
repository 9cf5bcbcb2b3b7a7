package importer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Napageneral/rolodex/internal/model"
)

const header = "Name,Phone Number,Email Address,Address,Tags\n"

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.csv")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestReadFile_Valid(t *testing.T) {
	path := writeCSV(t, header+
		`Alice Pauline,94351253,alice@example.com,"123, Jurong West Ave 6, #08-111",friends`+"\n"+
		`Benson Meier,98765432,johnd@example.com,"311, Clementi Ave 2, #02-25",owesMoney;friends`+"\n")

	persons, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(persons) != 2 {
		t.Fatalf("expected 2 persons, got %d", len(persons))
	}
	if persons[0].Name != "Alice Pauline" || persons[0].Address != "123, Jurong West Ave 6, #08-111" {
		t.Fatalf("unexpected first person: %v", persons[0])
	}
	if got := persons[1].Tags; len(got) != 2 || got[0] != "friends" || got[1] != "owesMoney" {
		t.Fatalf("unexpected tags: %v", got)
	}
	if persons[0].ID != 0 {
		t.Fatalf("imported persons should not carry IDs, got %d", persons[0].ID)
	}
}

func TestReadFile_HeaderIgnoresCaseAndSpaces(t *testing.T) {
	path := writeCSV(t, "name, PHONE NUMBER ,email address,Address,TAGS\n"+
		"Carl Kurz,95352563,heinz@example.com,wall street,\n")
	persons, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(persons) != 1 || len(persons[0].Tags) != 0 {
		t.Fatalf("unexpected persons: %v", persons)
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if err.Error() != "The file nope.csv does not exist." {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestReadFile_IncorrectFormat(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"header only":   header,
		"bad header":    "Name,Phone,Email,Address,Tags\nAlice,123,a@example.com,x,\n",
		"two fields":    header + "Alice,123\n",
		"six fields":    header + "Alice,123,a@example.com,x,friends,extra\n",
		"invalid name":  header + ".,123,a@example.com,x,\n",
		"invalid phone": header + "Alice,12,a@example.com,x,\n",
		"invalid tag":   header + "Alice,123,a@example.com,x,best-friend\n",
		"duplicate rows": header +
			"Alice,123,a@example.com,x,\n" +
			"alice,123,a@example.com,somewhere else,\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadFile(writeCSV(t, body))
			if !errors.Is(err, ErrIncorrectFileFormat) {
				t.Fatalf("expected ErrIncorrectFileFormat, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), "The file contacts.csv has an incorrect format") {
				t.Fatalf("unexpected message: %q", err.Error())
			}
		})
	}
}

func TestEncodeThenDecode(t *testing.T) {
	in := []*model.Person{
		model.NewPerson("Alice Pauline", "94351253", "alice@example.com", "123, Jurong West Ave 6", []model.Tag{"friends", "colleagues"}),
		model.NewPerson("Carl Kurz", "95352563", "heinz@example.com", "wall street", nil),
	}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(buf.String(), header) {
		t.Fatalf("missing header: %q", buf.String())
	}
	out, err := Decode(&buf, "roundtrip.csv")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d persons, got %d", len(in), len(out))
	}
	for i := range in {
		if !in[i].Equal(out[i]) {
			t.Fatalf("person %d: expected %v, got %v", i, in[i], out[i])
		}
	}
}

func TestWriteFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "contacts.csv")
	if err := WriteFile(path, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != header {
		t.Fatalf("unexpected content: %q", string(b))
	}
}
