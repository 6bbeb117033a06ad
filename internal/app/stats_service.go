package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"team_attendance_bot/internal/domain/athlete"
	"team_attendance_bot/internal/domain/attendance"
	"team_attendance_bot/internal/domain/session"

	"github.com/sirupsen/logrus"
)

// FilterAll disables a session type or group filter.
const FilterAll = "all"

type StatsService struct {
	statsRepo attendance.StatsRepository
	logger    *logrus.Entry
	now       func() time.Time
}

func NewStatsService(sr attendance.StatsRepository, logger *logrus.Entry) *StatsService {
	return &StatsService{
		statsRepo: sr,
		logger:    logger,
		now:       time.Now,
	}
}

// SeasonStats returns the attendance table of a season, best attendance first.
// Empty arguments mean the current season and no filter.
func (s *StatsService) SeasonStats(ctx context.Context, season, sessionType, group string) ([]attendance.AthleteStat, error) {
	season, err := s.resolveSeason(season)
	if err != nil {
		return nil, err
	}
	sessionType, err = NormalizeTypeFilter(sessionType)
	if err != nil {
		return nil, err
	}
	group = normalizeGroupFilter(group)

	stats, err := s.statsRepo.SeasonStats(ctx, season, sessionType, group)
	if err != nil {
		return nil, fmt.Errorf("failed to load season stats: %w", err)
	}
	attendance.SortStats(stats)

	s.logger.WithFields(logrus.Fields{"season": season, "type": sessionType, "group": group}).
		Debugf("Season stats for %d athletes", len(stats))
	return stats, nil
}

// MonthlyTrend returns the monthly attendance of an athlete for all twelve
// months of the season. Months without sessions count as 0.
func (s *StatsService) MonthlyTrend(ctx context.Context, fincode int64, season, sessionType string) ([]attendance.MonthlyPercentage, error) {
	season, err := s.resolveSeason(season)
	if err != nil {
		return nil, err
	}
	sessionType, err = NormalizeTypeFilter(sessionType)
	if err != nil {
		return nil, err
	}

	points, err := s.statsRepo.MonthlyPercentages(ctx, fincode, season, sessionType)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly attendance for %d: %w", fincode, err)
	}

	months, err := athlete.SeasonMonths(season)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string]float64, len(points))
	for _, p := range points {
		byMonth[p.Month] = p.Percent
	}
	trend := make([]attendance.MonthlyPercentage, 0, len(months))
	for _, m := range months {
		trend = append(trend, attendance.MonthlyPercentage{Month: m, Percent: byMonth[m]})
	}
	return trend, nil
}

func (s *StatsService) resolveSeason(season string) (string, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return athlete.SeasonFor(s.now()), nil
	}
	if _, err := athlete.ParseSeason(season); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return season, nil
}

// NormalizeTypeFilter maps "", "all", "swim" and "gym" in any case to a filter value.
func NormalizeTypeFilter(sessionType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(sessionType)) {
	case "", FilterAll:
		return FilterAll, nil
	case "swim":
		return session.TypeSwim, nil
	case "gym":
		return session.TypeGym, nil
	default:
		return "", fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, sessionType)
	}
}

func normalizeGroupFilter(group string) string {
	if g := strings.TrimSpace(group); g == "" || strings.EqualFold(g, FilterAll) {
		return FilterAll
	}
	return athlete.NormalizeGroup(group)
}
