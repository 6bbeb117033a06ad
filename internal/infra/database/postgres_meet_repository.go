package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"team_attendance_bot/internal/domain/meet"
)

var ErrMeetNotFound = fmt.Errorf("meet not found")

type PostgresMeetRepository struct {
	db *sql.DB
}

func NewPostgresMeetRepository(db *sql.DB) *PostgresMeetRepository {
	return &PostgresMeetRepository{db: db}
}

func (r *PostgresMeetRepository) Create(ctx context.Context, m *meet.Meet) error {
	query := `INSERT INTO meets (meetname, place, course, groups, mindate, maxdate)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING meet_id`

	err := r.db.QueryRowContext(ctx, query, m.Name, m.Place, m.Course, m.Groups, m.MinDate, m.MaxDate).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("error creating meet: %w", err)
	}
	return nil
}

func (r *PostgresMeetRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meets WHERE meet_id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting meet: %w", err)
	}
	return expectAffected(res, ErrMeetNotFound)
}

// Upcoming lists meets starting on or after the day of from.
func (r *PostgresMeetRepository) Upcoming(ctx context.Context, from time.Time, limit int) ([]*meet.Meet, error) {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	query := `SELECT meet_id, meetname, place, course, groups, mindate, maxdate
               FROM meets
               WHERE mindate >= $1
               ORDER BY mindate, meet_id
               LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, day, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing upcoming meets: %w", err)
	}
	defer rows.Close()

	meets := make([]*meet.Meet, 0)
	for rows.Next() {
		m := &meet.Meet{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Place, &m.Course, &m.Groups, &m.MinDate, &m.MaxDate); err != nil {
			return nil, fmt.Errorf("error scanning meet: %w", err)
		}
		meets = append(meets, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meets: %w", err)
	}
	return meets, nil
}
