package domain

import (
	"context"

	"github.com/google/uuid"
)

type RunStore interface {
	Create(ctx context.Context, r *Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)
	ListByScenario(ctx context.Context, scenario string, limit int) ([]Run, error)
	// FindSimilar returns the k runs of the same scenario whose belief vectors
	// are closest to the given run's, nearest first.
	FindSimilar(ctx context.Context, id uuid.UUID, k int) ([]RunWithDistance, error)
}
