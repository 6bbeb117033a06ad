// internal/domain/attendance/sheet.go
package attendance

import "time"

// Sheet is the in-memory attendance of one session while a coach is editing it.
type Sheet struct {
	SessionID   int64         `json:"session_id"`
	SessionDate time.Time     `json:"session_date"`
	Group       string        `json:"group"`
	Season      string        `json:"season"`
	Entries     []RosterEntry `json:"entries"`
	Orphaned    []Record      `json:"orphaned,omitempty"`
	// Stale is set after a failed save. The sheet must be reloaded before saving again.
	Stale bool `json:"stale"`
	// Dirty is set by the first tap after loading.
	Dirty    bool      `json:"dirty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Tap advances the status of one athlete and returns the new status.
// ok is false when the fincode is not on the sheet.
func (s *Sheet) Tap(fincode int64) (status Status, ok bool) {
	for i := range s.Entries {
		if s.Entries[i].Fincode == fincode {
			s.Entries[i].Status = s.Entries[i].Status.Next()
			s.Dirty = true
			return s.Entries[i].Status, true
		}
	}
	return StatusNotSet, false
}

func (s *Sheet) Counts() Counts {
	return Tally(s.Entries)
}

// Clone returns a copy that shares no slices with s.
func (s *Sheet) Clone() *Sheet {
	c := *s
	c.Entries = append([]RosterEntry(nil), s.Entries...)
	c.Orphaned = append([]Record(nil), s.Orphaned...)
	return &c
}
