package database

import (
	"context"
	"database/sql"
	"fmt"

	"team_attendance_bot/internal/domain/athlete"
)

// Custom errors
var ErrAthleteNotFound = fmt.Errorf("athlete not found")

type PostgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) *PostgresAthleteRepository {
	return &PostgresAthleteRepository{db: db}
}

// FetchRoster returns the athletes listed in rosters for the season and group.
func (r *PostgresAthleteRepository) FetchRoster(ctx context.Context, season, group string) ([]athlete.Athlete, error) {
	query := `SELECT a.fincode, a.name, r.groups, a.birthdate, a.gender, a.email, a.phone, a.active
               FROM athletes a
               JOIN rosters r ON r.fincode = a.fincode
               WHERE r.season = $1 AND r.groups = $2`

	rows, err := r.db.QueryContext(ctx, query, season, athlete.NormalizeGroup(group))
	if err != nil {
		return nil, fmt.Errorf("error fetching roster for %s/%s: %w", season, group, err)
	}
	defer rows.Close()

	roster := make([]athlete.Athlete, 0)
	for rows.Next() {
		var a athlete.Athlete
		if err := rows.Scan(&a.Fincode, &a.Name, &a.Groups, &a.Birthdate, &a.Gender, &a.Email, &a.Phone, &a.Active); err != nil {
			return nil, fmt.Errorf("error scanning roster athlete: %w", err)
		}
		roster = append(roster, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roster: %w", err)
	}
	return roster, nil
}

// GetByFincode returns the athlete with its most recent roster group, if any.
func (r *PostgresAthleteRepository) GetByFincode(ctx context.Context, fincode int64) (*athlete.Athlete, error) {
	query := `SELECT a.fincode, a.name, COALESCE(r.groups, ''), a.birthdate, a.gender, a.email, a.phone, a.active
               FROM athletes a
               LEFT JOIN LATERAL (
                   SELECT groups FROM rosters WHERE fincode = a.fincode ORDER BY season DESC LIMIT 1
               ) r ON TRUE
               WHERE a.fincode = $1`
	a := &athlete.Athlete{}
	err := r.db.QueryRowContext(ctx, query, fincode).Scan(&a.Fincode, &a.Name, &a.Groups, &a.Birthdate, &a.Gender, &a.Email, &a.Phone, &a.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("error getting athlete by fincode: %w", err)
	}
	return a, nil
}

func (r *PostgresAthleteRepository) Update(ctx context.Context, a *athlete.Athlete) error {
	query := `UPDATE athletes
               SET name = $1, birthdate = $2, gender = $3, email = $4, phone = $5, active = $6, updated_at = NOW()
               WHERE fincode = $7`

	res, err := r.db.ExecContext(ctx, query, a.Name, a.Birthdate, a.Gender, a.Email, a.Phone, a.Active, a.Fincode)
	if err != nil {
		return fmt.Errorf("error updating athlete: %w", err)
	}
	return expectAffected(res, ErrAthleteNotFound)
}

// AssignGroup puts the athlete in group for the season, replacing any previous group.
func (r *PostgresAthleteRepository) AssignGroup(ctx context.Context, season string, fincode int64, group string) error {
	query := `INSERT INTO rosters (season, fincode, groups)
               VALUES ($1, $2, $3)
               ON CONFLICT (season, fincode) DO UPDATE SET groups = EXCLUDED.groups`

	_, err := r.db.ExecContext(ctx, query, season, fincode, athlete.NormalizeGroup(group))
	if err != nil {
		return fmt.Errorf("error assigning athlete %d to group %s for %s: %w", fincode, group, season, err)
	}
	return nil
}

// Delete removes the athlete. Roster rows go with it through the foreign key.
func (r *PostgresAthleteRepository) Delete(ctx context.Context, fincode int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM athletes WHERE fincode = $1`, fincode)
	if err != nil {
		return fmt.Errorf("error deleting athlete: %w", err)
	}
	return expectAffected(res, ErrAthleteNotFound)
}

func (r *PostgresAthleteRepository) ListSeasons(ctx context.Context) ([]*athlete.Season, error) {
	query := `SELECT seasonid, description, seasonstart, seasonend FROM _seasons ORDER BY seasonid DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing seasons: %w", err)
	}
	defer rows.Close()

	seasons := make([]*athlete.Season, 0)
	for rows.Next() {
		s := &athlete.Season{}
		if err := rows.Scan(&s.ID, &s.Description, &s.Start, &s.End); err != nil {
			return nil, fmt.Errorf("error scanning season: %w", err)
		}
		seasons = append(seasons, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seasons: %w", err)
	}
	return seasons, nil
}

// expectAffected maps "no row touched" to notFound.
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
