package meet

import (
	"time"
)

// Courses of a swimming meet.
const (
	CourseShort = "SCM" // 25 m pool
	CourseLong  = "LCM" // 50 m pool
)

// Meet represents a competition on the team calendar.
// Corresponds to the 'meets' table.
type Meet struct {
	ID      int64
	Name    string    `validate:"required,notblank,max=200"`
	Place   string    `validate:"max=120"`
	Course  string    `validate:"omitempty,oneof=SCM LCM"`
	Groups  string    `validate:"max=64"` // comma separated group tags
	MinDate time.Time `validate:"required"`
	MaxDate time.Time `validate:"required,gtefield=MinDate"`
}

// SingleDay reports whether the meet starts and ends on the same day.
func (m *Meet) SingleDay() bool {
	return m.MinDate.Equal(m.MaxDate)
}
