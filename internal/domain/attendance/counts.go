package attendance

import "fmt"

// Counts is the live tally shown above an attendance sheet.
type Counts struct {
	Present   int
	Justified int
	Absent    int
	NotSet    int
}

// Tally counts entries per status. Unknown statuses count as not set.
func Tally(entries []RosterEntry) Counts {
	var c Counts
	for _, e := range entries {
		switch e.Status.Normalize() {
		case StatusPresent:
			c.Present++
		case StatusJustified:
			c.Justified++
		case StatusAbsent:
			c.Absent++
		default:
			c.NotSet++
		}
	}
	return c
}

func (c Counts) String() string {
	return fmt.Sprintf("P:%d J:%d A:%d N:%d", c.Present, c.Justified, c.Absent, c.NotSet)
}
