package app

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"team_attendance_bot/internal/domain/athlete"
	"team_attendance_bot/internal/domain/attendance"
	"team_attendance_bot/internal/domain/meet"
	"team_attendance_bot/internal/domain/session"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"gopkg.in/telebot.v3"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fakeBackend is an in-memory attendance.Backend without atomic plans.
type fakeBackend struct {
	mu      sync.Mutex
	rosters map[string][]athlete.Athlete // season|group
	rows    map[int64]map[int64]attendance.Status

	rosterErr error
	fetchErr  error
	deleteErr error
	upsertErr error

	writes []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		rosters: make(map[string][]athlete.Athlete),
		rows:    make(map[int64]map[int64]attendance.Status),
	}
}

func (b *fakeBackend) setRoster(season, group string, roster ...athlete.Athlete) {
	b.rosters[season+"|"+group] = roster
}

func (b *fakeBackend) setRow(sessionID, fincode int64, status attendance.Status) {
	if b.rows[sessionID] == nil {
		b.rows[sessionID] = make(map[int64]attendance.Status)
	}
	b.rows[sessionID][fincode] = status
}

func (b *fakeBackend) FetchRoster(_ context.Context, season, group string) ([]athlete.Athlete, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rosterErr != nil {
		return nil, b.rosterErr
	}
	return append([]athlete.Athlete(nil), b.rosters[season+"|"+group]...), nil
}

func (b *fakeBackend) FetchAttendance(_ context.Context, sessionID int64) ([]attendance.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	var records []attendance.Record
	for fincode, status := range b.rows[sessionID] {
		records = append(records, attendance.Record{SessionID: sessionID, Fincode: fincode, Status: status})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Fincode < records[j].Fincode })
	return records, nil
}

func (b *fakeBackend) DeleteAttendance(_ context.Context, sessionID int64, fincodes []int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	for _, f := range fincodes {
		delete(b.rows[sessionID], f)
	}
	if len(fincodes) > 0 {
		b.writes = append(b.writes, "delete")
	}
	return nil
}

func (b *fakeBackend) UpsertAttendance(_ context.Context, records []attendance.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.upsertErr != nil {
		return b.upsertErr
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		if b.rows[r.SessionID] == nil {
			b.rows[r.SessionID] = make(map[int64]attendance.Status)
		}
		b.rows[r.SessionID][r.Fincode] = r.Status
	}
	if len(records) > 0 {
		b.writes = append(b.writes, "upsert")
	}
	return nil
}

func (b *fakeBackend) stored(sessionID int64) map[int64]attendance.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int64]attendance.Status)
	for f, s := range b.rows[sessionID] {
		out[f] = s
	}
	return out
}

// atomicBackend adds all-or-nothing plans on top of fakeBackend.
type atomicBackend struct {
	*fakeBackend
	applyErr error
	applied  int
}

func (b *atomicBackend) ApplyPlan(ctx context.Context, plan attendance.Plan) error {
	if b.applyErr != nil {
		return b.applyErr
	}
	b.applied++
	if err := b.DeleteAttendance(ctx, plan.SessionID, plan.Deletes); err != nil {
		return err
	}
	return b.UpsertAttendance(ctx, plan.Upserts)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) Update(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id int64) (*session.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionRepository) ListByDate(ctx context.Context, date time.Time) ([]*session.Session, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

func (m *MockSessionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*session.Session, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

func (m *MockSessionRepository) UnmarkedBetween(ctx context.Context, from, to time.Time) ([]*session.Session, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

func (m *MockSessionRepository) Upcoming(ctx context.Context, from time.Time, limit int) ([]*session.Session, error) {
	args := m.Called(ctx, from, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

type MockAthleteRepository struct {
	mock.Mock
}

func (m *MockAthleteRepository) FetchRoster(ctx context.Context, season, group string) ([]athlete.Athlete, error) {
	args := m.Called(ctx, season, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]athlete.Athlete), args.Error(1)
}

func (m *MockAthleteRepository) GetByFincode(ctx context.Context, fincode int64) (*athlete.Athlete, error) {
	args := m.Called(ctx, fincode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*athlete.Athlete), args.Error(1)
}

func (m *MockAthleteRepository) Update(ctx context.Context, a *athlete.Athlete) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAthleteRepository) AssignGroup(ctx context.Context, season string, fincode int64, group string) error {
	args := m.Called(ctx, season, fincode, group)
	return args.Error(0)
}

func (m *MockAthleteRepository) Delete(ctx context.Context, fincode int64) error {
	args := m.Called(ctx, fincode)
	return args.Error(0)
}

func (m *MockAthleteRepository) ListSeasons(ctx context.Context) ([]*athlete.Season, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*athlete.Season), args.Error(1)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) SeasonStats(ctx context.Context, season, sessionType, group string) ([]attendance.AthleteStat, error) {
	args := m.Called(ctx, season, sessionType, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]attendance.AthleteStat), args.Error(1)
}

func (m *MockStatsRepository) MonthlyPercentages(ctx context.Context, fincode int64, season, sessionType string) ([]attendance.MonthlyPercentage, error) {
	args := m.Called(ctx, fincode, season, sessionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]attendance.MonthlyPercentage), args.Error(1)
}

type MockMeetRepository struct {
	mock.Mock
}

func (m *MockMeetRepository) Create(ctx context.Context, mt *meet.Meet) error {
	args := m.Called(ctx, mt)
	return args.Error(0)
}

func (m *MockMeetRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMeetRepository) Upcoming(ctx context.Context, from time.Time, limit int) ([]*meet.Meet, error) {
	args := m.Called(ctx, from, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*meet.Meet), args.Error(1)
}

type MockTelegramClient struct {
	mock.Mock
}

func (m *MockTelegramClient) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	args := m.Called(recipientChatID, text, options)
	return args.Error(0)
}

type fakeRoles map[int64]bool

func (r fakeRoles) IsCoach(telegramID int64) bool {
	return r[telegramID]
}
