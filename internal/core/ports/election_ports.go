package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

// CatalogRepository is the read side of elections, positions and candidates,
// plus the administrative Save used to seed them.
type CatalogRepository interface {
	SaveElection(ctx context.Context, election *domain.Election) error
	GetElection(ctx context.Context, id uuid.UUID) (*domain.Election, error)
	ListElections(ctx context.Context, activeOnly bool) ([]*domain.Election, error)
	ListPositions(ctx context.Context, electionID uuid.UUID) ([]domain.Position, error)
	ListCandidates(ctx context.Context, positionID uuid.UUID, activeOnly bool) ([]domain.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*domain.Candidate, error)
}

type CreateCandidateInput struct {
	Name      string
	Party     string
	Manifesto string
	PhotoURL  *string
}

type CreatePositionInput struct {
	Title       string
	Description string
	MaxVotes    int
	Candidates  []CreateCandidateInput
}

type CreateElectionInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Active      bool
	CreatedBy   uuid.UUID
	Positions   []CreatePositionInput
}

type ElectionService interface {
	Create(ctx context.Context, input CreateElectionInput) (*domain.Election, error)
	GetElection(ctx context.Context, id string) (*domain.Election, error)
	ListActive(ctx context.Context) ([]*domain.Election, error)
	ListAll(ctx context.Context) ([]*domain.Election, error)
}
