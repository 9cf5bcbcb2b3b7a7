package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidField is wrapped by every field constructor when the raw value
// does not satisfy the field's constraints.
var ErrInvalidField = errors.New("invalid field value")

const (
	NameConstraints    = "Names should only contain alphanumeric characters and spaces, and it should not be blank"
	PhoneConstraints   = "Phone numbers should only contain numbers, and it should be at least 3 digits long"
	AddressConstraints = "Addresses can take any values, and it should not be blank"
	TagConstraints     = "Tags names should be alphanumeric"
	IDConstraints      = "Record ids should not be negative"
	EmailConstraints   = "Emails should be of the format local-part@domain and adhere to the following constraints:\n" +
		"1. The local-part should only contain alphanumeric characters and these special characters, excluding " +
		"the parentheses, (+_.-). The local-part may not start or end with any special characters.\n" +
		"2. This is followed by a '@' and then a domain name made up of domain labels separated by periods.\n" +
		"The domain name must end with a domain label at least 2 characters long, each domain label must " +
		"start and end with alphanumeric characters, and labels may only contain alphanumerics separated " +
		"by hyphens, if any."
)

var (
	nameRe  = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ]*$`)
	phoneRe = regexp.MustCompile(`^\d{3,}$`)
	tagRe   = regexp.MustCompile(`^[\p{L}\p{N}]+$`)

	emailLocalRe = regexp.MustCompile(`^[\p{L}\p{N}]([+_.\-]?[\p{L}\p{N}])*$`)
	emailLabelRe = regexp.MustCompile(`^[\p{L}\p{N}]([\p{L}\p{N}\-]*[\p{L}\p{N}])?$`)
)

func invalid(constraints string) error {
	return fmt.Errorf("%w: %s", ErrInvalidField, constraints)
}

// Name is a person's full name.
type Name string

// ParseName trims raw and validates it as a Name.
func ParseName(raw string) (Name, error) {
	s := strings.TrimSpace(raw)
	if !nameRe.MatchString(s) {
		return "", invalid(NameConstraints)
	}
	return Name(s), nil
}

// EqualFold reports whether two names are equal ignoring case.
func (n Name) EqualFold(other Name) bool {
	return strings.EqualFold(string(n), string(other))
}

func (n Name) String() string { return string(n) }

// Phone is a phone number made of digits only.
type Phone string

func ParsePhone(raw string) (Phone, error) {
	s := strings.TrimSpace(raw)
	if !phoneRe.MatchString(s) {
		return "", invalid(PhoneConstraints)
	}
	return Phone(s), nil
}

func (p Phone) String() string { return string(p) }

// Email is a local-part@domain address.
type Email string

func ParseEmail(raw string) (Email, error) {
	s := strings.TrimSpace(raw)
	local, domain, ok := strings.Cut(s, "@")
	if !ok || !emailLocalRe.MatchString(local) {
		return "", invalid(EmailConstraints)
	}
	labels := strings.Split(domain, ".")
	for _, l := range labels {
		if !emailLabelRe.MatchString(l) {
			return "", invalid(EmailConstraints)
		}
	}
	if len(labels[len(labels)-1]) < 2 {
		return "", invalid(EmailConstraints)
	}
	return Email(s), nil
}

func (e Email) String() string { return string(e) }

// Address is a free-form postal address.
type Address string

func ParseAddress(raw string) (Address, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalid(AddressConstraints)
	}
	return Address(s), nil
}

func (a Address) String() string { return string(a) }

// Tag is a single alphanumeric label.
type Tag string

func ParseTag(raw string) (Tag, error) {
	s := strings.TrimSpace(raw)
	if !tagRe.MatchString(s) {
		return "", invalid(TagConstraints)
	}
	return Tag(s), nil
}

func (t Tag) String() string { return "[" + string(t) + "]" }

// ParseTags validates each raw tag. Duplicates collapse; the result is sorted.
func ParseTags(raw []string) ([]Tag, error) {
	tags := make([]Tag, 0, len(raw))
	for _, r := range raw {
		t, err := ParseTag(r)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return NormalizeTags(tags), nil
}
