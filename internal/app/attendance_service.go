// internal/app/attendance_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"team_attendance_bot/internal/domain/athlete"
	"team_attendance_bot/internal/domain/attendance"
	"team_attendance_bot/internal/domain/session"
	idb "team_attendance_bot/internal/infra/database"
	"team_attendance_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

var ErrFetchFailed = fmt.Errorf("failed to load attendance data")
var ErrSaveFailed = fmt.Errorf("failed to save attendance")
var ErrSheetStale = fmt.Errorf("attendance sheet is stale, reload it before saving")
var ErrSaveInProgress = fmt.Errorf("attendance for this session is already being saved")
var ErrNotOnSheet = fmt.Errorf("athlete is not on the attendance sheet")

// SaveResult reports what a save wrote.
type SaveResult struct {
	Deleted  int
	Upserted int
}

type AttendanceService struct {
	sessionRepo  session.Repository
	backend      attendance.Backend
	logger       *logrus.Entry
	fetchTimeout time.Duration
	saveTimeout  time.Duration
	now          func() time.Time

	mu     sync.Mutex
	saving map[int64]bool // session ids with a save in flight
}

func NewAttendanceService(
	sr session.Repository,
	backend attendance.Backend,
	logger *logrus.Entry,
	fetchTimeout time.Duration,
	saveTimeout time.Duration,
) *AttendanceService {
	return &AttendanceService{
		sessionRepo:  sr,
		backend:      backend,
		logger:       logger,
		fetchTimeout: fetchTimeout,
		saveTimeout:  saveTimeout,
		now:          time.Now,
		saving:       make(map[int64]bool),
	}
}

// LoadSheet builds the attendance sheet of a session from its group roster and stored rows.
// The session lookup and both fetches share one fetch timeout.
func (s *AttendanceService) LoadSheet(ctx context.Context, sessionID int64) (*attendance.Sheet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, idb.ErrSessionNotFound) {
			return nil, idb.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: session %d: %w", ErrFetchFailed, sessionID, err)
	}

	season := athlete.SeasonFor(sess.Date)
	log := s.logger.WithFields(logrus.Fields{"session_id": sessionID, "season": season, "group": sess.Groups})

	start := time.Now()
	roster, err := s.backend.FetchRoster(ctx, season, sess.Groups)
	metrics.ObserveBackend("fetch_roster", start, err)
	if err != nil {
		log.WithError(err).Error("Failed to fetch roster")
		return nil, fmt.Errorf("%w: roster: %w", ErrFetchFailed, err)
	}

	start = time.Now()
	records, err := s.backend.FetchAttendance(ctx, sessionID)
	metrics.ObserveBackend("fetch_attendance", start, err)
	if err != nil {
		log.WithError(err).Error("Failed to fetch attendance")
		return nil, fmt.Errorf("%w: attendance: %w", ErrFetchFailed, err)
	}

	attendance.SortRoster(roster)
	entries, orphaned := attendance.Merge(roster, records)
	if len(orphaned) > 0 {
		metrics.OrphanedRecordsTotal.Add(float64(len(orphaned)))
		for _, r := range orphaned {
			log.WithField("fincode", r.Fincode).Warnf("Attendance row %s has no roster athlete, leaving it untouched", r.Status)
		}
	}
	log.Debugf("Loaded sheet with %d athletes and %d stored rows", len(entries), len(records))

	return &attendance.Sheet{
		SessionID:   sessionID,
		SessionDate: sess.Date,
		Group:       sess.Groups,
		Season:      season,
		Entries:     entries,
		Orphaned:    orphaned,
		LoadedAt:    s.now(),
	}, nil
}

// Tap advances one athlete to the next status.
func (s *AttendanceService) Tap(sheet *attendance.Sheet, fincode int64) (attendance.Status, error) {
	status, ok := sheet.Tap(fincode)
	if !ok {
		return attendance.StatusNotSet, ErrNotOnSheet
	}
	metrics.StatusTapsTotal.Inc()
	return status, nil
}

// SaveSheet makes the stored rows of the session match the sheet. Stored rows are
// re-read first so the plan only deletes rows that exist.
func (s *AttendanceService) SaveSheet(ctx context.Context, sheet *attendance.Sheet) (SaveResult, error) {
	log := s.logger.WithField("session_id", sheet.SessionID)

	if sheet.Stale {
		metrics.SheetSavesTotal.WithLabelValues("stale").Inc()
		return SaveResult{}, ErrSheetStale
	}
	if !s.beginSave(sheet.SessionID) {
		metrics.SheetSavesTotal.WithLabelValues("busy").Inc()
		return SaveResult{}, ErrSaveInProgress
	}
	defer s.endSave(sheet.SessionID)

	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	start := time.Now()
	existing, err := s.backend.FetchAttendance(ctx, sheet.SessionID)
	metrics.ObserveBackend("fetch_attendance", start, err)
	if err != nil {
		metrics.SheetSavesTotal.WithLabelValues("failed").Inc()
		log.WithError(err).Error("Failed to re-read attendance before save")
		return SaveResult{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	plan := attendance.PlanSave(sheet.SessionID, sheet.Entries, existing)
	if plan.Empty() {
		metrics.SheetSavesTotal.WithLabelValues("noop").Inc()
		log.Debug("Nothing to save")
		return SaveResult{}, nil
	}

	if err := s.apply(ctx, sheet, plan); err != nil {
		metrics.SheetSavesTotal.WithLabelValues("failed").Inc()
		log.WithError(err).WithField("stale", sheet.Stale).Error("Failed to save attendance")
		return SaveResult{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	metrics.SheetSavesTotal.WithLabelValues("saved").Inc()
	metrics.RowsChangedTotal.WithLabelValues("delete").Add(float64(len(plan.Deletes)))
	metrics.RowsChangedTotal.WithLabelValues("upsert").Add(float64(len(plan.Upserts)))
	log.Infof("Saved attendance: %d deleted, %d upserted", len(plan.Deletes), len(plan.Upserts))

	return SaveResult{Deleted: len(plan.Deletes), Upserted: len(plan.Upserts)}, nil
}

// apply writes the plan. A failure of the two-step path marks the sheet stale
// since the deletes may already be committed.
func (s *AttendanceService) apply(ctx context.Context, sheet *attendance.Sheet, plan attendance.Plan) error {
	if applier, ok := s.backend.(attendance.PlanApplier); ok {
		start := time.Now()
		err := applier.ApplyPlan(ctx, plan)
		metrics.ObserveBackend("apply_plan", start, err)
		return err
	}

	start := time.Now()
	err := s.backend.DeleteAttendance(ctx, plan.SessionID, plan.Deletes)
	metrics.ObserveBackend("delete_attendance", start, err)
	if err != nil {
		sheet.Stale = true
		return fmt.Errorf("delete step: %w", err)
	}

	start = time.Now()
	err = s.backend.UpsertAttendance(ctx, plan.Upserts)
	metrics.ObserveBackend("upsert_attendance", start, err)
	if err != nil {
		sheet.Stale = true
		return fmt.Errorf("upsert step: %w", err)
	}
	return nil
}

func (s *AttendanceService) beginSave(sessionID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving[sessionID] {
		return false
	}
	s.saving[sessionID] = true
	return true
}

func (s *AttendanceService) endSave(sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saving, sessionID)
}
