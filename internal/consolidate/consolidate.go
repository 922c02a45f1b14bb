// Package consolidate merges consecutive slots of the same talk into single
// calendar events.
package consolidate

import (
	"time"

	appLog "confcal/internal/log"
	"confcal/internal/model"
	"confcal/internal/schedule"
)

// DefaultLastSlotSpan is the length given to a talk that no later slot bounds.
const DefaultLastSlotSpan = time.Hour

// Options tunes consolidation.
type Options struct {
	// LastSlotSpan is used as the duration of a run with no following talk
	// slot. If zero, DefaultLastSlotSpan is used.
	LastSlotSpan time.Duration
}

// Result wraps the consolidated events.
type Result struct {
	// Events in day/track/slot order.
	Events []model.Event
	// MissingDetails lists titles emitted without a description.
	MissingDetails []string
}

// Consolidate emits one event per maximal run of identical-title slots in
// each track. The run starts at its first slot and ends at the start of the
// next talk slot. When the next slot is an empty room or the run ends the
// track, the run lasts LastSlotSpan from its start.
func Consolidate(sched *schedule.Schedule, opts Options) Result {
	if opts.LastSlotSpan <= 0 {
		opts.LastSlotSpan = DefaultLastSlotSpan
	}

	var res Result
	for _, day := range sched.Days {
		for _, track := range day.Tracks {
			before := len(res.Events)
			res.consolidateTrack(track, opts)
			appLog.Debug("consolidate: track done", "day", day.Name, "track", track.Name,
				"slots", len(track.Slots), "events", len(res.Events)-before)
		}
	}

	appLog.Info("consolidation completed", "events", len(res.Events), "missing_details", len(res.MissingDetails))
	return res
}

func (res *Result) consolidateTrack(track *schedule.Track, opts Options) {
	slots := track.Slots
	for i, slot := range slots {
		if slot.Empty() {
			continue
		}

		// Interior members of a run are consumed by the run's last slot.
		if i+1 < len(slots) && slots[i+1].Title() == slot.Title() {
			continue
		}

		first := i
		for first > 0 && slots[first-1].Title() == slot.Title() {
			first--
		}

		ev := model.Event{
			Location:    track.Name,
			Summary:     slot.Talk.Title,
			Description: slot.Talk.Details,
			Start:       slots[first].Start,
		}

		if i+1 < len(slots) && !slots[i+1].Empty() {
			ev.End = slots[i+1].Start
		} else {
			ev.End = ev.Start.Add(opts.LastSlotSpan)
		}

		if ev.Description == "" {
			appLog.Warn("missing description", "title", ev.Summary, "track", track.Name)
			res.MissingDetails = append(res.MissingDetails, ev.Summary)
		}

		res.Events = append(res.Events, ev)
	}
}
