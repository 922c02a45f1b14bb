package model

import "time"

// Talk is one presentation as listed on the schedule page. Slots that repeat
// the same talk across consecutive time units share a single *Talk, so details
// linked from the speaker page are visible from every slot of the run.
type Talk struct {
	Title   string
	Speaker string
	// Href is the schedule page's link target for the title, if any.
	Href string

	// Details is the speaker/abstract text from the biography page. Empty
	// until the linker attaches it.
	Details string
}

// Slot is one row of a track at a given time. A nil Talk marks an empty room.
type Slot struct {
	Start time.Time
	Talk  *Talk
}

// Empty reports whether the slot is an empty room.
func (s Slot) Empty() bool {
	return s.Talk == nil
}

// Title returns the talk title, or "" for an empty room.
func (s Slot) Title() string {
	if s.Talk == nil {
		return ""
	}
	return s.Talk.Title
}

// Event is a consolidated calendar entry: one talk over its full span.
type Event struct {
	Location    string
	Summary     string
	Description string

	Start time.Time
	End   time.Time
}
