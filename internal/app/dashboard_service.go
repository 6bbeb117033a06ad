package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"team_attendance_bot/internal/domain/athlete"
	"team_attendance_bot/internal/domain/meet"
	"team_attendance_bot/internal/domain/session"

	"github.com/sirupsen/logrus"
)

// DashboardSize is how many meets and sessions the dashboard shows.
const DashboardSize = 2

// Dashboard is what comes next on the team calendar.
type Dashboard struct {
	Meets    []*meet.Meet
	Sessions []*session.Session
}

type DashboardService struct {
	sessionRepo session.Repository
	meetRepo    meet.Repository
	roles       Roles
	logger      *logrus.Entry
	now         func() time.Time
}

func NewDashboardService(sr session.Repository, mr meet.Repository, roles Roles, logger *logrus.Entry) *DashboardService {
	return &DashboardService{
		sessionRepo: sr,
		meetRepo:    mr,
		roles:       roles,
		logger:      logger,
		now:         time.Now,
	}
}

// Next returns the next meets and sessions from today on.
func (s *DashboardService) Next(ctx context.Context) (*Dashboard, error) {
	today := s.now()

	meets, err := s.meetRepo.Upcoming(ctx, today, DashboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming meets: %w", err)
	}
	sessions, err := s.sessionRepo.Upcoming(ctx, today, DashboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming sessions: %w", err)
	}
	return &Dashboard{Meets: meets, Sessions: sessions}, nil
}

// AddMeet puts a meet on the calendar. A zero MaxDate means a one day meet.
func (s *DashboardService) AddMeet(ctx context.Context, performerID int64, m *meet.Meet) error {
	if !s.roles.IsCoach(performerID) {
		return ErrNotAuthorized
	}

	m.Name = strings.TrimSpace(m.Name)
	m.Place = strings.TrimSpace(m.Place)
	m.Course = strings.ToUpper(strings.TrimSpace(m.Course))
	m.Groups = normalizeGroupList(m.Groups)
	if m.MaxDate.IsZero() {
		m.MaxDate = m.MinDate
	}
	if err := validateStruct(m); err != nil {
		return err
	}

	if err := s.meetRepo.Create(ctx, m); err != nil {
		return fmt.Errorf("failed to create meet: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"performer_id": performerID, "meet_id": m.ID, "meet": m.Name}).Info("Meet created")
	return nil
}

func (s *DashboardService) DeleteMeet(ctx context.Context, performerID int64, id int64) error {
	if !s.roles.IsCoach(performerID) {
		return ErrNotAuthorized
	}
	if err := s.meetRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete meet %d: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{"performer_id": performerID, "meet_id": id}).Info("Meet deleted")
	return nil
}

// normalizeGroupList turns "a, b" into "A,B".
func normalizeGroupList(groups string) string {
	parts := strings.Split(groups, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := athlete.NormalizeGroup(p); g != "" {
			out = append(out, g)
		}
	}
	return strings.Join(out, ",")
}
