// internal/domain/attendance/repository.go
package attendance

import (
	"context"
	"fmt"
	"time"

	"team_attendance_bot/internal/domain/athlete"
)

// Store persists attendance rows.
type Store interface {
	FetchAttendance(ctx context.Context, sessionID int64) ([]Record, error)
	// DeleteAttendance removes the rows of sessionID for any of the given fincodes.
	DeleteAttendance(ctx context.Context, sessionID int64, fincodes []int64) error
	// UpsertAttendance inserts records or overwrites the status on (session_id, fincode) conflict.
	UpsertAttendance(ctx context.Context, records []Record) error
}

// Backend is the data service the attendance sheet is loaded from and saved to.
type Backend interface {
	athlete.RosterSource
	Store
}

// PlanApplier is implemented by backends that can apply a whole plan atomically.
type PlanApplier interface {
	ApplyPlan(ctx context.Context, plan Plan) error
}

// StatsRepository answers the reporting queries.
type StatsRepository interface {
	// SeasonStats returns one row per roster athlete. sessionType and group accept "all".
	SeasonStats(ctx context.Context, season, sessionType, group string) ([]AthleteStat, error)
	// MonthlyPercentages returns only the months that had sessions for the athlete's group.
	MonthlyPercentages(ctx context.Context, fincode int64, season, sessionType string) ([]MonthlyPercentage, error)
}

// ErrDraftNotFound is returned by a DraftStore when the chat has no open sheet.
var ErrDraftNotFound = fmt.Errorf("attendance draft not found")

// DraftStore keeps open sheets between bot interactions, keyed by chat.
type DraftStore interface {
	Get(ctx context.Context, chatID int64) (*Sheet, error)
	Put(ctx context.Context, chatID int64, sheet *Sheet, ttl time.Duration) error
	Delete(ctx context.Context, chatID int64) error
}
