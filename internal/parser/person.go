package parser

import (
	"strings"

	"github.com/Napageneral/rolodex/internal/command"
	"github.com/Napageneral/rolodex/internal/model"
	"github.com/Napageneral/rolodex/internal/predicate"
)

func parseAdd(args string) (command.Command, error) {
	am := Tokenize(args, PrefixName, PrefixPhone, PrefixEmail, PrefixAddress, PrefixTag)
	for _, p := range []Prefix{PrefixName, PrefixPhone, PrefixEmail, PrefixAddress} {
		if !am.Has(p) {
			return nil, formatError(command.AddUsage, nil)
		}
	}
	if am.Preamble() != "" {
		return nil, formatError(command.AddUsage, nil)
	}
	if err := am.VerifyNoDuplicatePrefixesFor(PrefixName, PrefixPhone, PrefixEmail, PrefixAddress); err != nil {
		return nil, err
	}

	v, _ := am.Value(PrefixName)
	name, err := model.ParseName(v)
	if err != nil {
		return nil, err
	}
	v, _ = am.Value(PrefixPhone)
	phone, err := model.ParsePhone(v)
	if err != nil {
		return nil, err
	}
	v, _ = am.Value(PrefixEmail)
	email, err := model.ParseEmail(v)
	if err != nil {
		return nil, err
	}
	v, _ = am.Value(PrefixAddress)
	address, err := model.ParseAddress(v)
	if err != nil {
		return nil, err
	}
	tags, err := model.ParseTags(am.AllValues(PrefixTag))
	if err != nil {
		return nil, err
	}
	return &command.Add{Person: model.NewPerson(name, phone, email, address, tags)}, nil
}

func parseEdit(args string) (command.Command, error) {
	am := Tokenize(args, PrefixName, PrefixPhone, PrefixEmail, PrefixAddress, PrefixTag)
	idx, err := ParseIndex(am.Preamble())
	if err != nil {
		return nil, formatError(command.EditUsage, err)
	}
	if err := am.VerifyNoDuplicatePrefixesFor(PrefixName, PrefixPhone, PrefixEmail, PrefixAddress); err != nil {
		return nil, err
	}

	var d command.EditPersonDescriptor
	if v, ok := am.Value(PrefixName); ok {
		name, err := model.ParseName(v)
		if err != nil {
			return nil, err
		}
		d.Name = &name
	}
	if v, ok := am.Value(PrefixPhone); ok {
		phone, err := model.ParsePhone(v)
		if err != nil {
			return nil, err
		}
		d.Phone = &phone
	}
	if v, ok := am.Value(PrefixEmail); ok {
		email, err := model.ParseEmail(v)
		if err != nil {
			return nil, err
		}
		d.Email = &email
	}
	if v, ok := am.Value(PrefixAddress); ok {
		address, err := model.ParseAddress(v)
		if err != nil {
			return nil, err
		}
		d.Address = &address
	}
	if raw := am.AllValues(PrefixTag); len(raw) > 0 {
		// A lone empty t/ clears the tags.
		if len(raw) == 1 && raw[0] == "" {
			raw = nil
		}
		tags, err := model.ParseTags(raw)
		if err != nil {
			return nil, err
		}
		d.Tags = tags
		d.SetTags = true
	}
	if !d.AnyFieldEdited() {
		return nil, &command.Error{Message: command.MessageNotEdited}
	}
	return &command.Edit{Index: idx, Descriptor: d}, nil
}

func parseFind(args string) (command.Command, error) {
	keywords := strings.Fields(args)
	if len(keywords) == 0 {
		return nil, formatError(command.FindUsage, nil)
	}
	return &command.Find{Predicate: predicate.NameContains(keywords)}, nil
}

// ParseSearch parses "f/FIELD KEYWORD..." into a Search command. Every
// failure is a FormatError carrying the search usage.
func ParseSearch(args string) (*command.Search, error) {
	am := Tokenize(args, PrefixField)
	if err := am.VerifyNoDuplicatePrefixesFor(PrefixField); err != nil {
		return nil, formatError(command.SearchUsage, err)
	}
	value, ok := am.Value(PrefixField)
	if !ok {
		return nil, formatError(command.SearchUsage, nil)
	}

	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return nil, formatError(command.SearchUsage, nil)
	}
	field, err := predicate.ParseField(tokens[0])
	if err != nil {
		return nil, formatError(command.SearchUsage, err)
	}
	pred, err := predicate.Resolve(field, tokens[1:])
	if err != nil {
		return nil, formatError(command.SearchUsage, err)
	}
	return &command.Search{Predicate: pred}, nil
}
