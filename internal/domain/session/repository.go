package session

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving sessions.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Session, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Session, error)
	// ListBetween returns sessions with from <= date < to, ordered by date and start time.
	ListBetween(ctx context.Context, from, to time.Time) ([]*Session, error)
	// UnmarkedBetween is ListBetween restricted to sessions without any attendance row.
	UnmarkedBetween(ctx context.Context, from, to time.Time) ([]*Session, error)
	// Upcoming returns at most limit sessions from the day of from on, in ListBetween order.
	Upcoming(ctx context.Context, from time.Time, limit int) ([]*Session, error)
}
