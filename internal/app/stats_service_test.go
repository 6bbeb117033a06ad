package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"team_attendance_bot/internal/domain/attendance"
	"team_attendance_bot/internal/domain/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStatsFixture() (*StatsService, *MockStatsRepository) {
	repo := &MockStatsRepository{}
	svc := NewStatsService(repo, discardLogger())
	svc.now = func() time.Time { return time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestStatsService_SeasonStats(t *testing.T) {
	svc, repo := newStatsFixture()
	repo.On("SeasonStats", mock.Anything, "2024-25", session.TypeGym, "A").Return([]attendance.AthleteStat{
		{Fincode: 1, Name: "Bo", Percent: 50},
		{Fincode: 2, Name: "Ann", Percent: 50},
		{Fincode: 3, Name: "Cy", Percent: 75},
	}, nil).Once()

	stats, err := svc.SeasonStats(context.Background(), "", "GYM", "a")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, []int64{stats[0].Fincode, stats[1].Fincode, stats[2].Fincode})
	repo.AssertExpectations(t)
}

func TestStatsService_Filters(t *testing.T) {
	svc, repo := newStatsFixture()
	repo.On("SeasonStats", mock.Anything, "2023-24", FilterAll, FilterAll).Return([]attendance.AthleteStat{}, nil).Once()

	_, err := svc.SeasonStats(context.Background(), "2023-24", "All", "ALL")
	require.NoError(t, err)

	_, err = svc.SeasonStats(context.Background(), "2023-24", "yoga", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SeasonStats(context.Background(), "2023-25", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	repo.AssertExpectations(t)
}

func TestStatsService_MonthlyTrendPadsSeason(t *testing.T) {
	svc, repo := newStatsFixture()
	repo.On("MonthlyPercentages", mock.Anything, int64(7), "2024-25", FilterAll).Return([]attendance.MonthlyPercentage{
		{Month: "2024-10", Percent: 80},
		{Month: "2025-02", Percent: 25},
	}, nil).Once()

	trend, err := svc.MonthlyTrend(context.Background(), 7, "2024-25", "")
	require.NoError(t, err)
	require.Len(t, trend, 12)
	assert.Equal(t, attendance.MonthlyPercentage{Month: "2024-09", Percent: 0}, trend[0])
	assert.Equal(t, attendance.MonthlyPercentage{Month: "2024-10", Percent: 80}, trend[1])
	assert.Equal(t, attendance.MonthlyPercentage{Month: "2025-02", Percent: 25}, trend[5])
	assert.Equal(t, "2025-08", trend[11].Month)
	repo.AssertExpectations(t)
}

func TestStatsService_RepositoryError(t *testing.T) {
	svc, repo := newStatsFixture()
	repo.On("MonthlyPercentages", mock.Anything, int64(7), "2024-25", session.TypeSwim).Return(nil, errors.New("boom"))

	_, err := svc.MonthlyTrend(context.Background(), 7, "", "swim")
	assert.ErrorContains(t, err, "boom")
}
