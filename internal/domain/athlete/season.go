package athlete

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// A swimming season runs from September to August.
const seasonStartMonth = time.September

// SeasonFor returns the season label (e.g. "2025-26") a date belongs to.
func SeasonFor(date time.Time) string {
	startYear := date.Year()
	if date.Month() < seasonStartMonth {
		startYear--
	}
	return formatSeason(startYear)
}

func formatSeason(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// ParseSeason returns the start year of a season label such as "2024-25".
func ParseSeason(label string) (int, error) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid season %q, expected YYYY-YY", label)
	}
	startYear, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", label, err)
	}
	if formatSeason(startYear) != strings.TrimSpace(label) {
		return 0, fmt.Errorf("invalid season %q: end year does not follow start year", label)
	}
	return startYear, nil
}

// SeasonBounds returns [from, to) for a season label in the given location.
func SeasonBounds(label string, loc *time.Location) (time.Time, time.Time, error) {
	startYear, err := ParseSeason(label)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := time.Date(startYear, seasonStartMonth, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(1, 0, 0), nil
}

// SeasonMonths lists the twelve months of a season as YYYY-MM, September first.
func SeasonMonths(label string) ([]string, error) {
	from, _, err := SeasonBounds(label, time.UTC)
	if err != nil {
		return nil, err
	}
	months := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		months = append(months, from.AddDate(0, i, 0).Format("2006-01"))
	}
	return months, nil
}
