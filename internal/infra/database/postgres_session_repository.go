package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"team_attendance_bot/internal/domain/session"
)

var ErrSessionNotFound = fmt.Errorf("session not found")

const sessionColumns = `session_id, title, date, starttime, endtime, type, description, volume, location, poolname, poollength, groups`

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `INSERT INTO sessions (title, date, starttime, endtime, type, description, volume, location, poolname, poollength, groups)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
               RETURNING session_id`

	err := r.db.QueryRowContext(ctx, query,
		s.Title, s.Date, s.StartTime, s.EndTime, s.Type, s.Description,
		s.Volume, s.Location, s.PoolName, s.PoolLength, s.Groups,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) Update(ctx context.Context, s *session.Session) error {
	query := `UPDATE sessions
               SET title = $1, date = $2, starttime = $3, endtime = $4, type = $5, description = $6,
                   volume = $7, location = $8, poolname = $9, poollength = $10, groups = $11
               WHERE session_id = $12`

	res, err := r.db.ExecContext(ctx, query,
		s.Title, s.Date, s.StartTime, s.EndTime, s.Type, s.Description,
		s.Volume, s.Location, s.PoolName, s.PoolLength, s.Groups, s.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating session %d: %w", s.ID, err)
	}
	return expectAffected(res, ErrSessionNotFound)
}

// Delete removes the session; its attendance rows cascade.
func (r *PostgresSessionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting session %d: %w", id, err)
	}
	return expectAffected(res, ErrSessionNotFound)
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id int64) (*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_id = $1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error getting session %d: %w", id, err)
	}
	return s, nil
}

func (r *PostgresSessionRepository) ListByDate(ctx context.Context, date time.Time) ([]*session.Session, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return r.ListBetween(ctx, day, day.AddDate(0, 0, 1))
}

func (r *PostgresSessionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*session.Session, error) {
	query := `SELECT ` + sessionColumns + `
               FROM sessions
               WHERE date >= $1 AND date < $2
               ORDER BY date, starttime, session_id`
	return r.listSessions(ctx, "sessions", query, from, to)
}

// UnmarkedBetween lists sessions in [from, to) that have no attendance rows yet.
func (r *PostgresSessionRepository) UnmarkedBetween(ctx context.Context, from, to time.Time) ([]*session.Session, error) {
	query := `SELECT ` + sessionColumns + `
               FROM sessions s
               WHERE s.date >= $1 AND s.date < $2
                 AND NOT EXISTS (SELECT 1 FROM attendance a WHERE a.session_id = s.session_id)
               ORDER BY s.date, s.starttime, s.session_id`
	return r.listSessions(ctx, "unmarked sessions", query, from, to)
}

// Upcoming returns at most limit sessions on or after the day of from.
func (r *PostgresSessionRepository) Upcoming(ctx context.Context, from time.Time, limit int) ([]*session.Session, error) {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	query := `SELECT ` + sessionColumns + `
               FROM sessions
               WHERE date >= $1
               ORDER BY date, starttime, session_id
               LIMIT $2`
	return r.listSessions(ctx, "upcoming sessions", query, day, limit)
}

func (r *PostgresSessionRepository) listSessions(ctx context.Context, what, query string, args ...any) ([]*session.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", what, err)
	}
	defer rows.Close()

	sessions := make([]*session.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*session.Session, error) {
	s := &session.Session{}
	err := row.Scan(&s.ID, &s.Title, &s.Date, &s.StartTime, &s.EndTime, &s.Type, &s.Description,
		&s.Volume, &s.Location, &s.PoolName, &s.PoolLength, &s.Groups)
	if err != nil {
		return nil, err
	}
	return s, nil
}
