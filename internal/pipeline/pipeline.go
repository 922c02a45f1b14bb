// Package pipeline runs the conversion end to end: fetch both pages, extract
// the schedule, link biographies, consolidate runs and write the calendar.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"confcal/internal/bios"
	"confcal/internal/consolidate"
	"confcal/internal/fetch"
	"confcal/internal/ics"
	appLog "confcal/internal/log"
	"confcal/internal/markup"
	"confcal/internal/model"
	"confcal/internal/schedule"
)

// Source provides raw page bodies.
type Source interface {
	Fetch(ctx context.Context, doc fetch.Document) (fetch.Result, error)
}

// Options configures a conversion run.
type Options struct {
	Schedule fetch.Document
	Speakers fetch.Document

	Days     map[string]time.Time
	Location *time.Location
	Aliases  map[string]string

	LastSlotSpan time.Duration

	// Calendar output settings.
	ProductID string
	Stamp     time.Time
}

// Result summarizes a conversion.
type Result struct {
	Events         []model.Event
	Talks          int
	Linked         int
	MissingDetails []string
}

// Convert turns the two raw documents into consolidated events. Stages run
// strictly in order; any fatal error aborts the whole conversion.
func Convert(scheduleBody, speakersBody []byte, opts Options) (Result, error) {
	var res Result

	schedDoc, err := markup.Parse(scheduleBody)
	if err != nil {
		return res, fmt.Errorf("schedule page: %w", err)
	}
	x := &schedule.Extractor{Days: opts.Days, Location: opts.Location}
	sched, reg, err := x.Extract(schedDoc)
	if err != nil {
		return res, fmt.Errorf("extract schedule: %w", err)
	}
	res.Talks = reg.Len()

	bioDoc, err := markup.Parse(speakersBody)
	if err != nil {
		return res, fmt.Errorf("speakers page: %w", err)
	}
	res.Linked, err = bios.Link(bioDoc, reg, bios.NewAliases(opts.Aliases))
	if err != nil {
		return res, fmt.Errorf("link biographies: %w", err)
	}

	cons := consolidate.Consolidate(sched, consolidate.Options{LastSlotSpan: opts.LastSlotSpan})
	res.Events = cons.Events
	res.MissingDetails = cons.MissingDetails

	for _, day := range sched.Days {
		appLog.Info("day summary", "day", day.Name, "tracks", len(day.Tracks))
	}
	return res, nil
}

// Run fetches both documents from src, converts them and writes the calendar
// to output. The file is only written when every stage succeeded, and it is
// read back to confirm the event count.
func Run(ctx context.Context, src Source, output string, opts Options) (Result, error) {
	schedRes, err := src.Fetch(ctx, opts.Schedule)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", opts.Schedule.ID, err)
	}
	speakersRes, err := src.Fetch(ctx, opts.Speakers)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", opts.Speakers.ID, err)
	}

	res, err := Convert(schedRes.Body, speakersRes.Body, opts)
	if err != nil {
		return res, err
	}

	buildOpts := ics.BuildOptions{ProductID: opts.ProductID, Stamp: opts.Stamp}
	if err := ics.WriteFile(output, res.Events, buildOpts); err != nil {
		return res, fmt.Errorf("write calendar: %w", err)
	}

	written, err := ics.ReadFile(output)
	if err != nil {
		return res, fmt.Errorf("verify calendar: %w", err)
	}
	if len(written) != len(res.Events) {
		return res, fmt.Errorf("verify calendar: wrote %d events, read back %d", len(res.Events), len(written))
	}

	return res, nil
}
