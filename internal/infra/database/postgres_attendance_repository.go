// internal/infra/database/postgres_attendance_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"team_attendance_bot/internal/domain/athlete"
	"team_attendance_bot/internal/domain/attendance"

	"github.com/lib/pq" // For pq.Array
)

const upsertAttendanceQuery = `INSERT INTO attendance (session_id, fincode, status, updated_at)
               VALUES ($1, $2, $3, NOW())
               ON CONFLICT (session_id, fincode) DO UPDATE
               SET status = EXCLUDED.status, updated_at = NOW()`

type PostgresAttendanceRepository struct {
	db *sql.DB
}

func NewPostgresAttendanceRepository(db *sql.DB) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db}
}

func (r *PostgresAttendanceRepository) FetchAttendance(ctx context.Context, sessionID int64) ([]attendance.Record, error) {
	query := `SELECT session_id, fincode, status FROM attendance WHERE session_id = $1 ORDER BY fincode`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error fetching attendance for session %d: %w", sessionID, err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		var rec attendance.Record
		var status string
		if err := rows.Scan(&rec.SessionID, &rec.Fincode, &status); err != nil {
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		if rec.Status, err = attendance.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("attendance row (session %d, fincode %d): %w", rec.SessionID, rec.Fincode, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}
	return records, nil
}

func (r *PostgresAttendanceRepository) DeleteAttendance(ctx context.Context, sessionID int64, fincodes []int64) error {
	return deleteAttendance(ctx, r.db, sessionID, fincodes)
}

// UpsertAttendance writes all records in one transaction.
func (r *PostgresAttendanceRepository) UpsertAttendance(ctx context.Context, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for attendance upsert: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if err := upsertAttendance(ctx, txn, records); err != nil {
		return err
	}
	return txn.Commit()
}

// ApplyPlan runs the deletes and upserts of plan in a single transaction.
func (r *PostgresAttendanceRepository) ApplyPlan(ctx context.Context, plan attendance.Plan) error {
	if plan.Empty() {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for session %d: %w", plan.SessionID, err)
	}
	defer txn.Rollback()

	if err := deleteAttendance(ctx, txn, plan.SessionID, plan.Deletes); err != nil {
		return err
	}
	if err := upsertAttendance(ctx, txn, plan.Upserts); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit attendance for session %d: %w", plan.SessionID, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteAttendance(ctx context.Context, ex execer, sessionID int64, fincodes []int64) error {
	if len(fincodes) == 0 {
		return nil
	}
	query := `DELETE FROM attendance WHERE session_id = $1 AND fincode = ANY($2::bigint[])`
	if _, err := ex.ExecContext(ctx, query, sessionID, pq.Array(fincodes)); err != nil {
		return fmt.Errorf("error deleting attendance for session %d: %w", sessionID, err)
	}
	return nil
}

func upsertAttendance(ctx context.Context, txn *sql.Tx, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}

	stmt, err := txn.PrepareContext(ctx, upsertAttendanceQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare attendance upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.SessionID, rec.Fincode, string(rec.Status)); err != nil {
			return fmt.Errorf("error upserting attendance (session %d, fincode %d): %w", rec.SessionID, rec.Fincode, err)
		}
	}
	return nil
}

// SeasonStats counts, per roster athlete, the statuses over the sessions of the athlete's group.
func (r *PostgresAttendanceRepository) SeasonStats(ctx context.Context, season, sessionType, group string) ([]attendance.AthleteStat, error) {
	from, to, err := athlete.SeasonBounds(season, time.UTC)
	if err != nil {
		return nil, err
	}

	query := `SELECT a.fincode, a.name,
                     COUNT(att.fincode) FILTER (WHERE att.status = 'P') AS present,
                     COUNT(att.fincode) FILTER (WHERE att.status = 'J') AS justified,
                     COUNT(att.fincode) FILTER (WHERE att.status = 'A') AS absent,
                     COUNT(s.session_id) AS total_sessions
               FROM rosters r
               JOIN athletes a ON a.fincode = r.fincode
               LEFT JOIN sessions s
                      ON s.groups = r.groups
                     AND s.date >= $2 AND s.date < $3
                     AND ($4 = 'all' OR s.type = $4)
               LEFT JOIN attendance att ON att.session_id = s.session_id AND att.fincode = r.fincode
               WHERE r.season = $1
                 AND ($5 = 'all' OR r.groups = $5)
               GROUP BY a.fincode, a.name`

	rows, err := r.db.QueryContext(ctx, query, season, from, to, sessionType, group)
	if err != nil {
		return nil, fmt.Errorf("error querying season stats: %w", err)
	}
	defer rows.Close()

	stats := make([]attendance.AthleteStat, 0)
	for rows.Next() {
		var st attendance.AthleteStat
		if err := rows.Scan(&st.Fincode, &st.Name, &st.Present, &st.Justified, &st.Absent, &st.TotalSessions); err != nil {
			return nil, fmt.Errorf("error scanning season stats row: %w", err)
		}
		st.Percent = attendance.Percentage(st.Present, st.TotalSessions)
		stats = append(stats, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating season stats: %w", err)
	}

	attendance.SortStats(stats)
	return stats, nil
}

func (r *PostgresAttendanceRepository) MonthlyPercentages(ctx context.Context, fincode int64, season, sessionType string) ([]attendance.MonthlyPercentage, error) {
	from, to, err := athlete.SeasonBounds(season, time.UTC)
	if err != nil {
		return nil, err
	}

	query := `SELECT to_char(s.date, 'YYYY-MM') AS month,
                     COUNT(att.fincode) FILTER (WHERE att.status = 'P') AS present,
                     COUNT(s.session_id) AS total
               FROM rosters r
               JOIN sessions s
                 ON s.groups = r.groups
                AND s.date >= $3 AND s.date < $4
                AND ($5 = 'all' OR s.type = $5)
               LEFT JOIN attendance att ON att.session_id = s.session_id AND att.fincode = r.fincode
               WHERE r.fincode = $1 AND r.season = $2
               GROUP BY month
               ORDER BY month`

	rows, err := r.db.QueryContext(ctx, query, fincode, season, from, to, sessionType)
	if err != nil {
		return nil, fmt.Errorf("error querying monthly attendance for %d: %w", fincode, err)
	}
	defer rows.Close()

	points := make([]attendance.MonthlyPercentage, 0)
	for rows.Next() {
		var month string
		var present, total int
		if err := rows.Scan(&month, &present, &total); err != nil {
			return nil, fmt.Errorf("error scanning monthly attendance row: %w", err)
		}
		points = append(points, attendance.MonthlyPercentage{Month: month, Percent: attendance.Percentage(present, total)})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly attendance: %w", err)
	}
	return points, nil
}
