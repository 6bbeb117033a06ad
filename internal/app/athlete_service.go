package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"team_attendance_bot/internal/domain/athlete"
	"team_attendance_bot/internal/domain/attendance"
	idb "team_attendance_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for athlete administration
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

// AthleteDetails carries the personal fields an admin edits. A nil field is left
// as it is, an empty string clears it.
type AthleteDetails struct {
	Birthdate *string // YYYY-MM-DD
	Gender    *string
	Email     *string
	Phone     *string
}

// Empty reports whether no field is set.
func (d AthleteDetails) Empty() bool {
	return d.Birthdate == nil && d.Gender == nil && d.Email == nil && d.Phone == nil
}

type AthleteService struct {
	athleteRepo     athlete.Repository
	adminTelegramID int64
	logger          *logrus.Entry
	now             func() time.Time
}

func NewAthleteService(ar athlete.Repository, adminID int64, logger *logrus.Entry) *AthleteService {
	return &AthleteService{
		athleteRepo:     ar,
		adminTelegramID: adminID,
		logger:          logger,
		now:             time.Now,
	}
}

// CurrentSeason is the season label of today.
func (s *AthleteService) CurrentSeason() string {
	return athlete.SeasonFor(s.now())
}

// Roster returns the athletes of group in season ordered by name.
// An empty season means the current one.
func (s *AthleteService) Roster(ctx context.Context, season, group string) ([]athlete.Athlete, error) {
	if season == "" {
		season = s.CurrentSeason()
	}
	if _, err := athlete.ParseSeason(season); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	roster, err := s.athleteRepo.FetchRoster(ctx, season, group)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	attendance.SortRoster(roster)
	return roster, nil
}

func (s *AthleteService) Seasons(ctx context.Context) ([]*athlete.Season, error) {
	seasons, err := s.athleteRepo.ListSeasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasons, nil
}

// AssignGroup moves an athlete to group for season, the current season when empty.
func (s *AthleteService) AssignGroup(ctx context.Context, performingAdminID int64, fincode int64, group, season string) (*athlete.Athlete, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	group = athlete.NormalizeGroup(group)
	if group == "" {
		return nil, fmt.Errorf("%w: group is required", ErrInvalidInput)
	}
	if season == "" {
		season = s.CurrentSeason()
	}
	if _, err := athlete.ParseSeason(season); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	target, err := s.getAthlete(ctx, fincode)
	if err != nil {
		return nil, err
	}
	if err := s.athleteRepo.AssignGroup(ctx, season, fincode, group); err != nil {
		return nil, fmt.Errorf("failed to assign group in repository: %w", err)
	}
	target.Groups = group

	s.logger.WithFields(logrus.Fields{"fincode": fincode, "group": group, "season": season}).Info("Athlete group assigned")
	return target, nil
}

// Rename changes the display name of an athlete.
func (s *AthleteService) Rename(ctx context.Context, performingAdminID int64, fincode int64, name string) (*athlete.Athlete, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.getAthlete(ctx, fincode)
	if err != nil {
		return nil, err
	}
	target.Name = strings.TrimSpace(name)
	if err := validateStruct(target); err != nil {
		return nil, err
	}

	if err := s.athleteRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update athlete in repository: %w", err)
	}
	return target, nil
}

// Get returns one athlete with the group of its latest roster season.
func (s *AthleteService) Get(ctx context.Context, fincode int64) (*athlete.Athlete, error) {
	return s.getAthlete(ctx, fincode)
}

// UpdateDetails changes birthdate, gender, email and phone of an athlete.
func (s *AthleteService) UpdateDetails(ctx context.Context, performingAdminID int64, fincode int64, details AthleteDetails) (*athlete.Athlete, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if details.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	target, err := s.getAthlete(ctx, fincode)
	if err != nil {
		return nil, err
	}

	if details.Birthdate != nil {
		birthdate, err := s.parseBirthdate(*details.Birthdate)
		if err != nil {
			return nil, err
		}
		target.Birthdate = birthdate
	}
	if details.Gender != nil {
		target.Gender = nullString(strings.ToUpper(*details.Gender))
	}
	if details.Email != nil {
		target.Email = nullString(strings.ToLower(*details.Email))
	}
	if details.Phone != nil {
		target.Phone = nullString(*details.Phone)
	}
	if err := validateStruct(target); err != nil {
		return nil, err
	}

	if err := s.athleteRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update athlete in repository: %w", err)
	}
	s.logger.WithField("fincode", fincode).Info("Athlete details updated")
	return target, nil
}

func (s *AthleteService) parseBirthdate(raw string) (sql.NullTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("%w: birthdate must be YYYY-MM-DD", ErrInvalidInput)
	}
	if t.After(s.now()) {
		return sql.NullTime{}, fmt.Errorf("%w: birthdate is in the future", ErrInvalidInput)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}

// Remove deletes an athlete and its roster entries. Attendance rows are kept.
func (s *AthleteService) Remove(ctx context.Context, performingAdminID int64, fincode int64) (*athlete.Athlete, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.getAthlete(ctx, fincode)
	if err != nil {
		return nil, err
	}
	if err := s.athleteRepo.Delete(ctx, fincode); err != nil {
		return nil, fmt.Errorf("failed to delete athlete in repository: %w", err)
	}

	s.logger.WithField("fincode", fincode).Info("Athlete removed")
	return target, nil
}

func (s *AthleteService) getAthlete(ctx context.Context, fincode int64) (*athlete.Athlete, error) {
	a, err := s.athleteRepo.GetByFincode(ctx, fincode)
	if err != nil {
		if errors.Is(err, idb.ErrAthleteNotFound) {
			return nil, idb.ErrAthleteNotFound // Propagate specific error
		}
		return nil, fmt.Errorf("failed to get athlete %d: %w", fincode, err)
	}
	return a, nil
}
