package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

// TallyRepository reads everything one tally needs from a single snapshot.
type TallyRepository interface {
	Snapshot(ctx context.Context, electionID uuid.UUID) (*domain.TallySnapshot, error)
}

type TallyService interface {
	ComputeResults(ctx context.Context, electionID uuid.UUID) (*domain.ElectionResults, error)
	LiveResults(ctx context.Context, electionID uuid.UUID) (*domain.LiveResults, error)
}
