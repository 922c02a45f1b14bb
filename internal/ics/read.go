package ics

import (
	"errors"
	"fmt"
	"io"
	"os"

	ical "github.com/arran4/golang-ical"

	"confcal/internal/model"
)

// ReadEvents parses an iCalendar stream back into events. The pipeline uses
// it to verify the file it just wrote.
func ReadEvents(r io.Reader) ([]model.Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// ReadFile is ReadEvents over the file at path.
func ReadFile(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadEvents(f)
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	uid := ""
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}

	p := ve.GetProperty(ical.ComponentPropertySummary)
	if p == nil {
		return out, fmt.Errorf("ics: event %q has no SUMMARY", uid)
	}
	out.Summary = p.Value

	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, errors.Join(fmt.Errorf("ics: event %q DTSTART", uid), err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, errors.Join(fmt.Errorf("ics: event %q DTEND", uid), err)
	}
	out.Start = start
	out.End = end

	return out, nil
}
