// internal/domain/attendance/record.go
package attendance

import (
	"fmt"

	"team_attendance_bot/internal/domain/athlete"
)

// Record is one persisted row of the 'attendance' table.
// (SessionID, Fincode) is unique and Status is never StatusNotSet.
type Record struct {
	SessionID int64  `json:"session_id"`
	Fincode   int64  `json:"fincode"`
	Status    Status `json:"status"`
}

// Validate checks the record can be written to storage.
func (r Record) Validate() error {
	if r.SessionID <= 0 {
		return fmt.Errorf("attendance record for fincode %d has no session", r.Fincode)
	}
	if !r.Status.IsSet() {
		return fmt.Errorf("attendance record (session %d, fincode %d) has unset status %q", r.SessionID, r.Fincode, r.Status)
	}
	return nil
}

// RosterEntry is an athlete joined with its current status for one session.
type RosterEntry struct {
	athlete.Athlete
	Status Status `json:"status"`
}
