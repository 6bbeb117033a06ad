package attendance

import "sort"

// AthleteStat is one row of the season attendance table.
type AthleteStat struct {
	Fincode       int64
	Name          string
	Present       int
	Justified     int
	Absent        int
	TotalSessions int
	Percent       float64 // Present over TotalSessions, 0..100
}

// MonthlyPercentage is one point of an athlete's attendance trend.
type MonthlyPercentage struct {
	Month   string // YYYY-MM
	Percent float64
}

// Percentage returns part/total as 0..100, or 0 for an empty total.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// SortStats orders stats by percent, highest first, then by name.
func SortStats(stats []AthleteStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Percent != stats[j].Percent {
			return stats[i].Percent > stats[j].Percent
		}
		return stats[i].Name < stats[j].Name
	})
}
