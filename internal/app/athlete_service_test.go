package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"team_attendance_bot/internal/domain/athlete"
	idb "team_attendance_bot/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminID = int64(100)

func newAthleteFixture() (*AthleteService, *MockAthleteRepository) {
	repo := &MockAthleteRepository{}
	svc := NewAthleteService(repo, adminID, discardLogger())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestAthleteService_Roster(t *testing.T) {
	svc, repo := newAthleteFixture()
	repo.On("FetchRoster", mock.Anything, "2024-25", "A").
		Return([]athlete.Athlete{{Fincode: 2, Name: "zoe"}, {Fincode: 1, Name: "Adam"}}, nil).Once()

	roster, err := svc.Roster(context.Background(), "", "A")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Adam", roster[0].Name)

	_, err = svc.Roster(context.Background(), "2024/25", "A")
	assert.ErrorIs(t, err, ErrInvalidInput)
	repo.AssertExpectations(t)
}

func TestAthleteService_AssignGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns in current season", func(t *testing.T) {
		svc, repo := newAthleteFixture()
		repo.On("GetByFincode", mock.Anything, int64(9)).Return(&athlete.Athlete{Fincode: 9, Name: "Ann", Groups: "A"}, nil)
		repo.On("AssignGroup", mock.Anything, "2024-25", int64(9), "B").Return(nil).Once()

		got, err := svc.AssignGroup(ctx, adminID, 9, " b ", "")
		require.NoError(t, err)
		assert.Equal(t, "B", got.Groups)
		repo.AssertExpectations(t)
	})

	t.Run("only admin", func(t *testing.T) {
		svc, repo := newAthleteFixture()
		_, err := svc.AssignGroup(ctx, 1, 9, "B", "")
		assert.ErrorIs(t, err, ErrAdminNotAuthorized)
		repo.AssertNotCalled(t, "AssignGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown athlete", func(t *testing.T) {
		svc, repo := newAthleteFixture()
		repo.On("GetByFincode", mock.Anything, int64(9)).Return(nil, idb.ErrAthleteNotFound)

		_, err := svc.AssignGroup(ctx, adminID, 9, "B", "2023-24")
		assert.ErrorIs(t, err, idb.ErrAthleteNotFound)
	})

	t.Run("blank group", func(t *testing.T) {
		svc, _ := newAthleteFixture()
		_, err := svc.AssignGroup(ctx, adminID, 9, "  ", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAthleteService_Rename(t *testing.T) {
	ctx := context.Background()
	svc, repo := newAthleteFixture()
	repo.On("GetByFincode", mock.Anything, int64(9)).Return(&athlete.Athlete{Fincode: 9, Name: "Ann"}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(a *athlete.Athlete) bool { return a.Name == "Ann Rossi" })).Return(nil).Once()

	got, err := svc.Rename(ctx, adminID, 9, "  Ann Rossi ")
	require.NoError(t, err)
	assert.Equal(t, "Ann Rossi", got.Name)

	_, err = svc.Rename(ctx, adminID, 9, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	repo.AssertExpectations(t)
}

func TestAthleteService_Remove(t *testing.T) {
	ctx := context.Background()
	svc, repo := newAthleteFixture()
	repo.On("GetByFincode", mock.Anything, int64(9)).Return(&athlete.Athlete{Fincode: 9, Name: "Ann"}, nil)
	repo.On("Delete", mock.Anything, int64(9)).Return(nil).Once()

	got, err := svc.Remove(ctx, adminID, 9)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	_, err = svc.Remove(ctx, coachID, 9)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	repo.AssertExpectations(t)
}

func TestAthleteService_Get(t *testing.T) {
	svc, repo := newAthleteFixture()
	repo.On("GetByFincode", mock.Anything, int64(9)).Return(&athlete.Athlete{Fincode: 9, Name: "Ann", Groups: "A"}, nil).Once()
	repo.On("GetByFincode", mock.Anything, int64(10)).Return(nil, idb.ErrAthleteNotFound).Once()

	got, err := svc.Get(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Groups)

	_, err = svc.Get(context.Background(), 10)
	assert.ErrorIs(t, err, idb.ErrAthleteNotFound)
	repo.AssertExpectations(t)
}

func TestAthleteService_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	str := func(v string) *string { return &v }
	stored := func() *athlete.Athlete {
		return &athlete.Athlete{
			Fincode: 9, Name: "Ann",
			Phone: sql.NullString{String: "+39 333 1234567", Valid: true},
			Email: sql.NullString{String: "old@example.com", Valid: true},
		}
	}

	t.Run("sets and clears fields", func(t *testing.T) {
		svc, repo := newAthleteFixture()
		repo.On("GetByFincode", mock.Anything, int64(9)).Return(stored(), nil).Once()
		repo.On("Update", mock.Anything, mock.AnythingOfType("*athlete.Athlete")).Return(nil).Once()

		got, err := svc.UpdateDetails(ctx, adminID, 9, AthleteDetails{
			Birthdate: str("2010-04-02"),
			Gender:    str("f"),
			Email:     str(" Ann@Example.com "),
			Phone:     str(""),
		})
		require.NoError(t, err)
		assert.Equal(t, sql.NullTime{Time: time.Date(2010, 4, 2, 0, 0, 0, 0, time.UTC), Valid: true}, got.Birthdate)
		assert.Equal(t, sql.NullString{String: "F", Valid: true}, got.Gender)
		assert.Equal(t, sql.NullString{String: "ann@example.com", Valid: true}, got.Email)
		assert.False(t, got.Phone.Valid, "empty value clears the phone")
		repo.AssertExpectations(t)
	})

	t.Run("untouched fields are kept", func(t *testing.T) {
		svc, repo := newAthleteFixture()
		repo.On("GetByFincode", mock.Anything, int64(9)).Return(stored(), nil).Once()
		repo.On("Update", mock.Anything, mock.AnythingOfType("*athlete.Athlete")).Return(nil).Once()

		got, err := svc.UpdateDetails(ctx, adminID, 9, AthleteDetails{Gender: str("M")})
		require.NoError(t, err)
		assert.Equal(t, "+39 333 1234567", got.Phone.String)
		assert.Equal(t, "old@example.com", got.Email.String)
	})

	testCases := []struct {
		name    string
		details AthleteDetails
	}{
		{name: "invalid email", details: AthleteDetails{Email: str("not-an-email")}},
		{name: "malformed birthdate", details: AthleteDetails{Birthdate: str("02/04/2010")}},
		{name: "future birthdate", details: AthleteDetails{Birthdate: str("2030-01-01")}},
		{name: "nothing to update", details: AthleteDetails{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := newAthleteFixture()
			repo.On("GetByFincode", mock.Anything, int64(9)).Return(stored(), nil).Maybe()

			_, err := svc.UpdateDetails(ctx, adminID, 9, tc.details)
			assert.ErrorIs(t, err, ErrInvalidInput)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}

	t.Run("only admin", func(t *testing.T) {
		svc, repo := newAthleteFixture()
		_, err := svc.UpdateDetails(ctx, coachID, 9, AthleteDetails{Gender: str("M")})
		assert.ErrorIs(t, err, ErrAdminNotAuthorized)
		repo.AssertNotCalled(t, "GetByFincode", mock.Anything, mock.Anything)
	})
}
