package parser

import (
	"time"

	"github.com/Napageneral/rolodex/internal/command"
	"github.com/Napageneral/rolodex/internal/model"
)

var eventPrefixes = []Prefix{PrefixName, PrefixFrom, PrefixTo, PrefixLocation, PrefixDescription, PrefixRecurrence}

func (p *Parser) parseAddEvent(args string) (command.Command, error) {
	am := Tokenize(args, eventPrefixes...)
	if !am.Has(PrefixName) || !am.Has(PrefixFrom) || am.Preamble() != "" {
		return nil, formatError(command.AddEventUsage, nil)
	}
	if err := am.VerifyNoDuplicatePrefixesFor(eventPrefixes...); err != nil {
		return nil, err
	}

	v, _ := am.Value(PrefixName)
	name, err := model.ParseEventName(v)
	if err != nil {
		return nil, err
	}
	v, _ = am.Value(PrefixFrom)
	start, err := model.ParseEventTime(v, p.Loc)
	if err != nil {
		return nil, err
	}
	e := &model.Event{Name: name, Start: start}
	if v, ok := am.Value(PrefixTo); ok && v != "" {
		if e.End, err = model.ParseEventTime(v, p.Loc); err != nil {
			return nil, err
		}
	}
	e.Location, _ = am.Value(PrefixLocation)
	e.Description, _ = am.Value(PrefixDescription)
	if v, ok := am.Value(PrefixRecurrence); ok {
		if e.Recurrence, err = model.ParseRecurrence(v); err != nil {
			return nil, err
		}
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &command.AddEvent{Event: e}, nil
}

func (p *Parser) parseEditEvent(args string) (command.Command, error) {
	am := Tokenize(args, eventPrefixes...)
	idx, err := ParseIndex(am.Preamble())
	if err != nil {
		return nil, formatError(command.EditEventUsage, err)
	}
	if err := am.VerifyNoDuplicatePrefixesFor(eventPrefixes...); err != nil {
		return nil, err
	}

	var d command.EditEventDescriptor
	if v, ok := am.Value(PrefixName); ok {
		name, err := model.ParseEventName(v)
		if err != nil {
			return nil, err
		}
		d.Name = &name
	}
	if v, ok := am.Value(PrefixFrom); ok {
		start, err := model.ParseEventTime(v, p.Loc)
		if err != nil {
			return nil, err
		}
		d.Start = &start
	}
	if v, ok := am.Value(PrefixTo); ok {
		var end time.Time
		if v != "" {
			if end, err = model.ParseEventTime(v, p.Loc); err != nil {
				return nil, err
			}
		}
		d.End = &end
	}
	if v, ok := am.Value(PrefixLocation); ok {
		d.Location = &v
	}
	if v, ok := am.Value(PrefixDescription); ok {
		d.Description = &v
	}
	if v, ok := am.Value(PrefixRecurrence); ok {
		rec, err := model.ParseRecurrence(v)
		if err != nil {
			return nil, err
		}
		d.Recurrence = &rec
	}
	if !d.AnyFieldEdited() {
		return nil, &command.Error{Message: command.MessageNotEdited}
	}
	return &command.EditEvent{Index: idx, Descriptor: d}, nil
}

func parseLink(args, usage string) (int, []int, []model.Name, error) {
	am := Tokenize(args, PrefixPersonIndex, PrefixName)
	idx, err := ParseIndex(am.Preamble())
	if err != nil {
		return 0, nil, nil, formatError(usage, err)
	}
	if !am.Has(PrefixPersonIndex) && !am.Has(PrefixName) {
		return 0, nil, nil, formatError(usage, nil)
	}

	var indexes []int
	for _, v := range am.AllValues(PrefixPersonIndex) {
		i, err := ParseIndex(v)
		if err != nil {
			return 0, nil, nil, formatError(usage, err)
		}
		indexes = append(indexes, i)
	}
	var names []model.Name
	for _, v := range am.AllValues(PrefixName) {
		n, err := model.ParseName(v)
		if err != nil {
			return 0, nil, nil, err
		}
		names = append(names, n)
	}
	return idx, indexes, names, nil
}
