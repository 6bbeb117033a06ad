package meet

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving meets.
type Repository interface {
	Create(ctx context.Context, m *Meet) error
	Delete(ctx context.Context, id int64) error
	// Upcoming returns at most limit meets starting on or after the day of from, earliest first.
	Upcoming(ctx context.Context, from time.Time, limit int) ([]*Meet, error)
}
