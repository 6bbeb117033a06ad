// internal/domain/attendance/merge.go
package attendance

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"team_attendance_bot/internal/domain/athlete"
)

// SortRoster orders athletes by name, ignoring case. Equal names keep their fincode order.
func SortRoster(roster []athlete.Athlete) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(roster, func(i, j int) bool {
		if cmp := c.CompareString(roster[i].Name, roster[j].Name); cmp != 0 {
			return cmp < 0
		}
		return roster[i].Fincode < roster[j].Fincode
	})
}

// Merge builds one entry per roster athlete, in roster order, carrying the status
// of the matching record or StatusNotSet. Records for athletes outside the roster
// are returned as orphaned and contribute no entry. A fincode repeated in the
// roster only yields its first occurrence.
func Merge(roster []athlete.Athlete, records []Record) ([]RosterEntry, []Record) {
	byFincode := make(map[int64]Status, len(records))
	for _, r := range records {
		byFincode[r.Fincode] = r.Status.Normalize()
	}

	entries := make([]RosterEntry, 0, len(roster))
	seen := make(map[int64]bool, len(roster))
	for _, a := range roster {
		if seen[a.Fincode] {
			continue
		}
		seen[a.Fincode] = true

		status, ok := byFincode[a.Fincode]
		if !ok {
			status = StatusNotSet
		}
		entries = append(entries, RosterEntry{Athlete: a, Status: status})
	}

	var orphaned []Record
	for _, r := range records {
		if !seen[r.Fincode] {
			orphaned = append(orphaned, r)
		}
	}
	return entries, orphaned
}
