// internal/domain/attendance/status.go
package attendance

import "fmt"

// Status is the attendance state of one athlete for one session.
type Status string

const (
	StatusNotSet    Status = "N" // never persisted, represented by the absence of a row
	StatusPresent   Status = "P"
	StatusJustified Status = "J"
	StatusAbsent    Status = "A"
)

// Next returns the successor in the N -> P -> J -> A -> N cycle.
// Unknown values, including the empty string, behave like StatusNotSet.
func (s Status) Next() Status {
	switch s {
	case StatusPresent:
		return StatusJustified
	case StatusJustified:
		return StatusAbsent
	case StatusAbsent:
		return StatusNotSet
	default:
		return StatusPresent
	}
}

// Normalize maps anything outside the four known values to StatusNotSet.
func (s Status) Normalize() Status {
	switch s {
	case StatusPresent, StatusJustified, StatusAbsent:
		return s
	default:
		return StatusNotSet
	}
}

// IsSet reports whether the status is one that gets persisted.
func (s Status) IsSet() bool {
	return s.Normalize() != StatusNotSet
}

// Label is the human readable name used in bot messages.
func (s Status) Label() string {
	switch s.Normalize() {
	case StatusPresent:
		return "Present"
	case StatusJustified:
		return "Justified"
	case StatusAbsent:
		return "Absent"
	default:
		return "Not set"
	}
}

// ParseStatus parses a persisted status. Only P, J and A are valid in storage.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsSet() {
		return StatusNotSet, fmt.Errorf("invalid persisted attendance status %q", raw)
	}
	return s, nil
}
