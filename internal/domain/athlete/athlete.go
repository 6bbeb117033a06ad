package athlete

import (
	"database/sql"
	"strings"
)

// Athlete represents a swimmer registered with the team.
// Groups is the roster group for the season the athlete was fetched for.
type Athlete struct {
	Fincode   int64          `json:"fincode" validate:"required,gt=0"`
	Name      string         `json:"name" validate:"required,notblank,max=120"`
	Groups    string         `json:"groups" validate:"omitempty,max=16"`
	Birthdate sql.NullTime   `json:"-"`
	Gender    sql.NullString `json:"-" validate:"omitempty,max=16"`
	Email     sql.NullString `json:"-" validate:"omitempty,email,max=254"`
	Phone     sql.NullString `json:"-" validate:"omitempty,max=32"`
	Active    bool           `json:"active"`
}

// Season mirrors a row of the _seasons table.
type Season struct {
	ID          int32
	Description string // e.g. 2025-26
	Start       sql.NullTime
	End         sql.NullTime
}

// NormalizeGroup returns the canonical upper-case group tag.
func NormalizeGroup(group string) string {
	return strings.ToUpper(strings.TrimSpace(group))
}
