package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"team_attendance_bot/internal/domain/meet"
	"team_attendance_bot/internal/domain/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDashboardFixture() (*DashboardService, *MockSessionRepository, *MockMeetRepository, time.Time) {
	sessions := &MockSessionRepository{}
	meets := &MockMeetRepository{}
	now := time.Date(2025, 5, 9, 19, 0, 0, 0, time.UTC)
	svc := NewDashboardService(sessions, meets, fakeRoles{coachID: true}, discardLogger())
	svc.now = func() time.Time { return now }
	return svc, sessions, meets, now
}

func TestDashboardService_Next(t *testing.T) {
	svc, sessions, meets, now := newDashboardFixture()
	nextMeets := []*meet.Meet{{ID: 1, Name: "Open"}}
	nextSessions := []*session.Session{{ID: 4}, {ID: 5}}
	meets.On("Upcoming", mock.Anything, now, DashboardSize).Return(nextMeets, nil).Once()
	sessions.On("Upcoming", mock.Anything, now, DashboardSize).Return(nextSessions, nil).Once()

	dashboard, err := svc.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, nextMeets, dashboard.Meets)
	assert.Equal(t, nextSessions, dashboard.Sessions)
	meets.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestDashboardService_NextFailure(t *testing.T) {
	svc, _, meets, _ := newDashboardFixture()
	meets.On("Upcoming", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := svc.Next(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestDashboardService_AddMeet(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	t.Run("normalizes and defaults to one day", func(t *testing.T) {
		svc, _, meets, _ := newDashboardFixture()
		meets.On("Create", mock.Anything, mock.AnythingOfType("*meet.Meet")).Return(nil).Once()

		m := &meet.Meet{Name: " Open ", Course: "lcm", Groups: "a, b,", MinDate: day}
		require.NoError(t, svc.AddMeet(ctx, coachID, m))
		assert.Equal(t, "Open", m.Name)
		assert.Equal(t, meet.CourseLong, m.Course)
		assert.Equal(t, "A,B", m.Groups)
		assert.Equal(t, day, m.MaxDate)
		meets.AssertExpectations(t)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		svc, _, meets, _ := newDashboardFixture()
		err := svc.AddMeet(ctx, coachID, &meet.Meet{Name: "Open", MinDate: day, MaxDate: day.AddDate(0, 0, -1)})
		assert.ErrorIs(t, err, ErrInvalidInput)
		meets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown course", func(t *testing.T) {
		svc, _, _, _ := newDashboardFixture()
		err := svc.AddMeet(ctx, coachID, &meet.Meet{Name: "Open", Course: "yards", MinDate: day})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("coaches only", func(t *testing.T) {
		svc, _, meets, _ := newDashboardFixture()
		err := svc.AddMeet(ctx, 1, &meet.Meet{Name: "Open", MinDate: day})
		assert.ErrorIs(t, err, ErrNotAuthorized)
		assert.ErrorIs(t, svc.DeleteMeet(ctx, 1, 3), ErrNotAuthorized)
		meets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
