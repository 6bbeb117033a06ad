package database

import (
	"database/sql"
)

// Backend serves attendance sheets from Postgres: rosters from the athlete
// repository, attendance rows and atomic plans from the attendance repository.
type Backend struct {
	*PostgresAthleteRepository
	*PostgresAttendanceRepository
}

func NewBackend(db *sql.DB) *Backend {
	return &Backend{
		PostgresAthleteRepository:    NewPostgresAthleteRepository(db),
		PostgresAttendanceRepository: NewPostgresAttendanceRepository(db),
	}
}
