package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"team_attendance_bot/internal/domain/athlete"
	"team_attendance_bot/internal/domain/session"

	"github.com/sirupsen/logrus"
)

var ErrNotAuthorized = fmt.Errorf("performing user is not authorized as a coach")

// Defaults of a new session when the coach leaves a field empty.
const (
	DefaultStartTime  = "18:00"
	DefaultEndTime    = "20:00"
	DefaultLocation   = "Bolzano"
	DefaultPoolLength = 25
)

// Roles tells coaches and the admin apart from other Telegram users.
type Roles interface {
	IsCoach(telegramID int64) bool
}

type SessionService struct {
	sessionRepo session.Repository
	roles       Roles
	logger      *logrus.Entry
}

func NewSessionService(sr session.Repository, roles Roles, logger *logrus.Entry) *SessionService {
	return &SessionService{
		sessionRepo: sr,
		roles:       roles,
		logger:      logger,
	}
}

func (s *SessionService) Get(ctx context.Context, id int64) (*session.Session, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

// ListForDay returns the sessions of the calendar day of date.
func (s *SessionService) ListForDay(ctx context.Context, date time.Time) ([]*session.Session, error) {
	sessions, err := s.sessionRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for %s: %w", date.Format("2006-01-02"), err)
	}
	return sessions, nil
}

// ListWeek returns the Monday of the week containing date and the sessions from Monday to Sunday.
func (s *SessionService) ListWeek(ctx context.Context, date time.Time) (time.Time, []*session.Session, error) {
	monday := WeekStart(date)
	sessions, err := s.sessionRepo.ListBetween(ctx, monday, monday.AddDate(0, 0, 7))
	if err != nil {
		return monday, nil, fmt.Errorf("failed to list sessions for week of %s: %w", monday.Format("2006-01-02"), err)
	}
	return monday, sessions, nil
}

// WeekStart returns midnight UTC of the Monday on or before date.
func WeekStart(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// Save creates the session when its ID is zero and updates it otherwise.
func (s *SessionService) Save(ctx context.Context, performerID int64, sess *session.Session) error {
	if !s.roles.IsCoach(performerID) {
		return ErrNotAuthorized
	}

	PrepareSession(sess)
	if err := validateStruct(sess); err != nil {
		return err
	}

	log := s.logger.WithFields(logrus.Fields{"performer_id": performerID, "date": sess.DateString(), "group": sess.Groups})
	if sess.ID == 0 {
		if err := s.sessionRepo.Create(ctx, sess); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		log.WithField("session_id", sess.ID).Info("Session created")
		return nil
	}

	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return fmt.Errorf("failed to update session %d: %w", sess.ID, err)
	}
	log.WithField("session_id", sess.ID).Info("Session updated")
	return nil
}

func (s *SessionService) Delete(ctx context.Context, performerID int64, id int64) error {
	if !s.roles.IsCoach(performerID) {
		return ErrNotAuthorized
	}
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{"performer_id": performerID, "session_id": id}).Info("Session deleted")
	return nil
}

// PrepareSession fills defaults and normalizes the fields a coach types in.
// Gym sessions carry no pool.
func PrepareSession(sess *session.Session) {
	sess.Title = strings.TrimSpace(sess.Title)
	sess.StartTime = trimClock(sess.StartTime)
	sess.EndTime = trimClock(sess.EndTime)
	if sess.StartTime == "" {
		sess.StartTime = DefaultStartTime
	}
	if sess.EndTime == "" {
		sess.EndTime = DefaultEndTime
	}

	switch strings.ToLower(strings.TrimSpace(sess.Type)) {
	case "", "swim":
		sess.Type = session.TypeSwim
	case "gym":
		sess.Type = session.TypeGym
	}

	sess.Location = strings.TrimSpace(sess.Location)
	if sess.Location == "" {
		sess.Location = DefaultLocation
	}
	sess.Groups = athlete.NormalizeGroup(sess.Groups)

	if sess.Type == session.TypeGym {
		sess.PoolName = ""
		sess.PoolLength = 0
	} else if sess.PoolLength == 0 {
		sess.PoolLength = DefaultPoolLength
	}
}

// trimClock turns "18:00:00" or "9:30" into HH:MM. Anything else is left for validation.
func trimClock(v string) string {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04")
		}
	}
	return v
}
