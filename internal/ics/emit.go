package ics

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "confcal/internal/log"
	"confcal/internal/model"
)

const (
	// DefaultProductID is the PRODID used when BuildOptions.ProductID is empty.
	DefaultProductID = "-//confcal//Conference Schedule//EN"
	defaultUIDDomain = "confcal"
)

// BuildOptions controls calendar construction.
type BuildOptions struct {
	// ProductID is written as PRODID. If empty, DefaultProductID is used.
	ProductID string

	// UIDDomain is the right-hand side of generated UIDs.
	UIDDomain string

	// Stamp is written as DTSTAMP on every event. If zero, time.Now is used.
	Stamp time.Time
}

// Build maps consolidated events to VEVENTs in the order given. Each event
// carries UID, LOCATION, SUMMARY, DESCRIPTION (only when non-empty), DTSTART,
// DTEND and DTSTAMP, added in that order.
func Build(events []model.Event, opts BuildOptions) *ical.Calendar {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.UIDDomain == "" {
		opts.UIDDomain = defaultUIDDomain
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetProductId(opts.ProductID)
	cal.SetVersion("2.0")

	for _, ev := range events {
		ve := cal.AddEvent(eventUID(ev, opts.UIDDomain))
		ve.SetLocation(ev.Location)
		ve.SetSummary(ev.Summary)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetDtStampTime(opts.Stamp)
	}

	return cal
}

// Write serializes events as an iCalendar stream to w.
func Write(w io.Writer, events []model.Event, opts BuildOptions) error {
	cal := Build(events, opts)
	return cal.SerializeTo(w)
}

// WriteFile writes the calendar to path atomically via a temp file in the
// same directory, so a failed run never leaves a partial calendar behind.
func WriteFile(path string, events []model.Event, opts BuildOptions) error {
	if path == "" {
		return errors.New("ics: output path is empty")
	}

	var buf bytes.Buffer
	if err := Write(&buf, events, opts); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".confcal-*.ics.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	appLog.Info("calendar written", "path", path, "events", len(events), "bytes", buf.Len())
	return nil
}

// eventUID derives a stable UID from where, when and what, so regenerating
// the calendar keeps event identities for importers that deduplicate.
func eventUID(ev model.Event, domain string) string {
	h := sha256.New()
	h.Write([]byte(ev.Location))
	h.Write([]byte{0})
	h.Write([]byte(ev.Start.UTC().Format(time.RFC3339)))
	h.Write([]byte{0})
	h.Write([]byte(ev.Summary))
	return hex.EncodeToString(h.Sum(nil)[:12]) + "@" + domain
}
