package schedule

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind. The typed errors below match them
// via errors.Is so callers can branch on kind without type assertions.
var (
	// ErrStructure indicates the schedule document broke its nesting contract.
	ErrStructure = errors.New("schedule structure violated")

	// ErrUnlinked indicates a biography article matched no scheduled talk.
	ErrUnlinked = errors.New("biography not linked to any talk")

	// ErrDuplicateTitle indicates two distinct talks share a matching key.
	ErrDuplicateTitle = errors.New("duplicate normalized title")
)

// StructuralError reports where the schedule document deviated from the
// expected day/time/track/slot layout.
type StructuralError struct {
	Day    string
	Time   string
	Track  string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *StructuralError) Error() string {
	where := e.Day
	if e.Time != "" {
		where += " " + e.Time
	}
	if e.Track != "" {
		where += " " + e.Track
	}
	msg := "schedule structure"
	if where != "" {
		msg += fmt.Sprintf(" at %q", where)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *StructuralError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructure
}

// LinkError reports a biography title that could not be found in the
// registry. Usually this means the alias table needs another entry.
type LinkError struct {
	Title string
	Key   string
}

// Error implements the error interface
func (e *LinkError) Error() string {
	return fmt.Sprintf("no scheduled talk for biography %q (key %q)", e.Title, e.Key)
}

// Is implements errors.Is support
func (e *LinkError) Is(target error) bool {
	return target == ErrUnlinked
}

// DuplicateTitleError reports a second, different talk whose title
// normalizes to a key already held by the registry.
type DuplicateTitleError struct {
	Key      string
	Existing string
	Incoming string
}

// Error implements the error interface
func (e *DuplicateTitleError) Error() string {
	return fmt.Sprintf("talks %q and %q share matching key %q", e.Existing, e.Incoming, e.Key)
}

// Is implements errors.Is support
func (e *DuplicateTitleError) Is(target error) bool {
	return target == ErrDuplicateTitle
}

// IsStructural reports whether err is a schedule structure violation.
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructure)
}

// IsUnlinked reports whether err is a biography link miss.
func IsUnlinked(err error) bool {
	return errors.Is(err, ErrUnlinked)
}

// IsDuplicateTitle reports whether err is a matching key collision.
func IsDuplicateTitle(err error) bool {
	return errors.Is(err, ErrDuplicateTitle)
}
