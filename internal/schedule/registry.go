package schedule

import (
	appLog "confcal/internal/log"
	"confcal/internal/model"
)

// Registry maps normalized titles to talks. It is filled by Extract and only
// read (apart from Talk.Details) afterwards.
type Registry struct {
	talks map[string]*model.Talk
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{talks: make(map[string]*model.Talk)}
}

// Add registers talk under Normalize(talk.Title) and returns the talk the
// caller should reference from its slot.
//
// A talk repeated over several slots (identical raw title) resolves to the
// already registered entry; a differing speaker line is only logged. A
// different raw title with the same key is reported as a DuplicateTitleError
// and the registry is left unchanged.
func (r *Registry) Add(talk *model.Talk) (*model.Talk, error) {
	key := Normalize(talk.Title)
	existing, ok := r.talks[key]
	if !ok {
		r.talks[key] = talk
		return talk, nil
	}
	if existing.Title == talk.Title {
		if existing.Speaker != talk.Speaker {
			appLog.Warn("schedule: speaker differs for repeated talk", "title", talk.Title,
				"speaker", existing.Speaker, "other_speaker", talk.Speaker)
		}
		return existing, nil
	}
	return nil, &DuplicateTitleError{Key: key, Existing: existing.Title, Incoming: talk.Title}
}

// Lookup returns the talk registered under the normalized key.
func (r *Registry) Lookup(key string) (*model.Talk, bool) {
	t, ok := r.talks[key]
	return t, ok
}

// Len returns the number of distinct talks.
func (r *Registry) Len() int {
	return len(r.talks)
}
