package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

// BallotRepository is the ledger. Insert must be atomic with respect to the
// (voter, position, election) uniqueness key and return
// domain.ErrDuplicateVote when the key is taken.
type BallotRepository interface {
	Insert(ctx context.Context, ballot *domain.Ballot) error
	HasVoted(ctx context.Context, voterID, electionID uuid.UUID) (bool, error)
	ListByVoter(ctx context.Context, voterID, electionID uuid.UUID) ([]domain.Ballot, error)
	ListUnaudited(ctx context.Context, electionID uuid.UUID) ([]domain.Ballot, error)
}

type CastInput struct {
	VoterID       uuid.UUID
	ElectionID    uuid.UUID
	Selections    map[uuid.UUID]uuid.UUID
	OriginAddress string
}

type VoteService interface {
	CastBallots(ctx context.Context, input CastInput) (*domain.CastResult, error)
	MyBallots(ctx context.Context, voterID, electionID uuid.UUID) ([]domain.Ballot, error)
}

type EligibilityService interface {
	CanVote(ctx context.Context, voterID, electionID uuid.UUID, now time.Time) (*domain.Eligibility, error)
}
