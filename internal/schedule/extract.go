// Package schedule recovers the day → track → slot structure of a conference
// schedule page and builds the registry used to link speaker biographies.
package schedule

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/net/html"

	appLog "confcal/internal/log"
	"confcal/internal/markup"
	"confcal/internal/model"
)

// timeLayout is the format of the schedule page's time headings.
const timeLayout = "15:04"

// Schedule is the extracted programme. Days and tracks keep the order in which
// they first appear in the document.
type Schedule struct {
	Days []*Day

	index map[string]*Day
}

// Day holds the tracks of one conference day.
type Day struct {
	Name   string
	Date   time.Time
	Tracks []*Track

	index map[string]*Track
}

// Track is one room's slots for a day, in source (chronological) order.
type Track struct {
	Name  string
	Slots []model.Slot
}

// Entry is the result of parsing a single block.
type Entry struct {
	Track string
	Slot  model.Slot
}

// Extractor turns a schedule document into a Schedule. Days maps day heading
// labels to their calendar date; only the date part is used. Location is the
// venue time zone.
type Extractor struct {
	Days     map[string]time.Time
	Location *time.Location
}

// Extract partitions the document and parses every block, returning the
// schedule and the registry of talks keyed by normalized title.
func (x *Extractor) Extract(root *html.Node) (*Schedule, *Registry, error) {
	blocks, err := Partition(root)
	if err != nil {
		return nil, nil, err
	}

	sched := &Schedule{index: make(map[string]*Day)}
	reg := NewRegistry()

	for _, b := range blocks {
		entry, ok, err := x.ParseBlock(b)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			appLog.Debug("schedule: skipping block without track heading", "day", b.Day, "time", b.Time, "tag", b.Node.Data)
			continue
		}

		if !entry.Slot.Empty() {
			talk, err := reg.Add(entry.Slot.Talk)
			if err != nil {
				var dup *DuplicateTitleError
				if errors.As(err, &dup) {
					appLog.Error("schedule: title collision", err, "day", b.Day, "time", b.Time, "track", entry.Track)
				}
				return nil, nil, err
			}
			entry.Slot.Talk = talk
		}

		day := sched.day(b.Day, x.Days[b.Day])
		track := day.track(entry.Track)
		track.Slots = append(track.Slots, entry.Slot)
	}

	appLog.Info("schedule extracted", "days", len(sched.Days), "blocks", len(blocks), "talks", reg.Len())
	return sched, reg, nil
}

// ParseBlock parses one track-list child. ok is false when the block carries
// no track-name heading; such blocks are skipped by Extract.
func (x *Extractor) ParseBlock(b Block) (Entry, bool, error) {
	heading := markup.FirstChild(b.Node, trackNameTag)
	if heading == nil {
		return Entry{}, false, nil
	}
	entry := Entry{Track: markup.Text(heading)}

	structural := func(reason string, err error) error {
		return &StructuralError{Day: b.Day, Time: b.Time, Track: entry.Track, Reason: reason, Err: err}
	}

	start, err := x.start(b.Day, b.Time)
	if err != nil {
		return Entry{}, false, structural("invalid day or time heading", err)
	}
	entry.Slot.Start = start

	if markup.HasClass(b.Node, emptyRoomClass) {
		return entry, true, nil
	}

	titleNode := markup.NextSibling(heading, paragraphTag)
	if titleNode == nil {
		return Entry{}, false, structural("talk has no title element", nil)
	}
	talk := &model.Talk{}
	textNode := titleNode
	if link := markup.FirstChild(titleNode, linkTag); link != nil {
		textNode = link
		talk.Href = markup.Attr(link, "href")
	}
	talk.Title = markup.Text(textNode)
	if talk.Title == "" {
		return Entry{}, false, structural("talk title is empty", nil)
	}

	speakerNode := markup.NextSibling(titleNode, paragraphTag)
	if speakerNode == nil {
		return Entry{}, false, structural("talk has no speaker element", nil)
	}
	talk.Speaker = markup.Text(speakerNode)

	entry.Slot.Talk = talk
	return entry, true, nil
}

func (x *Extractor) start(day, at string) (time.Time, error) {
	date, ok := x.Days[day]
	if !ok {
		return time.Time{}, errors.New("unknown day " + day)
	}
	tod, err := time.Parse(timeLayout, strings.TrimSpace(at))
	if err != nil {
		return time.Time{}, err
	}
	loc := x.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

func (s *Schedule) day(name string, date time.Time) *Day {
	if d, ok := s.index[name]; ok {
		return d
	}
	d := &Day{Name: name, Date: date, index: make(map[string]*Track)}
	s.index[name] = d
	s.Days = append(s.Days, d)
	return d
}

func (d *Day) track(name string) *Track {
	if t, ok := d.index[name]; ok {
		return t
	}
	t := &Track{Name: name}
	d.index[name] = t
	d.Tracks = append(d.Tracks, t)
	return t
}

// AddSlot appends a slot to the named day/track, creating either on first
// use. It lets callers assemble a Schedule without a document.
func (s *Schedule) AddSlot(day string, date time.Time, track string, slot model.Slot) {
	if s.index == nil {
		s.index = make(map[string]*Day)
	}
	t := s.day(day, date).track(track)
	t.Slots = append(t.Slots, slot)
}
