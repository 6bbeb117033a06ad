package athlete

import (
	"context"
)

// RosterSource returns the athletes of a group within a season. Order is not guaranteed.
type RosterSource interface {
	FetchRoster(ctx context.Context, season, group string) ([]Athlete, error)
}

// Repository defines the operations for persisting and retrieving athletes.
type Repository interface {
	RosterSource
	GetByFincode(ctx context.Context, fincode int64) (*Athlete, error)
	Update(ctx context.Context, a *Athlete) error
	AssignGroup(ctx context.Context, season string, fincode int64, group string) error
	Delete(ctx context.Context, fincode int64) error
	ListSeasons(ctx context.Context) ([]*Season, error) // newest first
}
