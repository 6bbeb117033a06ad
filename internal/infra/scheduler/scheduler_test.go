package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) NotifyUnmarkedSessions(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func testLogger() (*logrus.Entry, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	return logrus.NewEntry(l), &buf
}

func TestReminderScheduler_RunPassesToday(t *testing.T) {
	today := time.Date(2024, 10, 7, 21, 0, 0, 0, time.UTC)
	svc := &MockReminderService{}
	svc.On("NotifyUnmarkedSessions", mock.Anything, today).Return(2, nil).Once()

	logger, buf := testLogger()
	s := NewReminderScheduler(svc, logger, "0 21 * * *")
	s.now = func() time.Time { return today }

	s.runReminders()

	svc.AssertExpectations(t)
	assert.Contains(t, buf.String(), "2 unmarked sessions")
}

func TestReminderScheduler_RunLogsErrors(t *testing.T) {
	svc := &MockReminderService{}
	svc.On("NotifyUnmarkedSessions", mock.Anything, mock.Anything).Return(0, errors.New("db down"))

	logger, buf := testLogger()
	s := NewReminderScheduler(svc, logger, "0 21 * * *")

	s.runReminders()

	assert.Contains(t, buf.String(), "db down")
}

func TestReminderScheduler_InvalidSpec(t *testing.T) {
	logger, _ := testLogger()
	s := NewReminderScheduler(&MockReminderService{}, logger, "every evening")

	require.Error(t, s.Start())
}

func TestReminderScheduler_StartStop(t *testing.T) {
	logger, _ := testLogger()
	s := NewReminderScheduler(&MockReminderService{}, logger, "0 21 * * *")

	require.NoError(t, s.Start())
	s.Stop()
}
