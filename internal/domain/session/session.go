package session

import (
	"time"
)

// Session types offered by the training planner.
const (
	TypeSwim = "Swim"
	TypeGym  = "Gym"
)

// Session represents one scheduled training.
// Corresponds to the 'sessions' table.
type Session struct {
	ID          int64
	Title       string    `validate:"max=120"`
	Date        time.Time `validate:"required"`
	StartTime   string    `validate:"required,datetime=15:04"`
	EndTime     string    `validate:"required,datetime=15:04"`
	Type        string    `validate:"required,oneof=Swim Gym"`
	Description string    `validate:"max=2000"`
	Volume      int       `validate:"gte=0"`
	Location    string    `validate:"max=120"`
	PoolName    string    `validate:"max=120"`
	PoolLength  int       `validate:"omitempty,oneof=25 50"`
	Groups      string    `validate:"required,max=16"`
}

// DateString returns the session date as YYYY-MM-DD.
func (s *Session) DateString() string {
	return s.Date.Format("2006-01-02")
}
