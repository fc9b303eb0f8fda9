package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type eligibilityService struct {
	catalog ports.CatalogRepository
	ballots ports.BallotRepository
}

func NewEligibilityService(catalog ports.CatalogRepository, ballots ports.BallotRepository) ports.EligibilityService {
	return &eligibilityService{
		catalog: catalog,
		ballots: ballots,
	}
}

// CanVote is advisory. The ledger re-checks uniqueness on every insert.
// Rule violations are reported through Eligibility.Reason; only storage
// failures return an error.
func (s *eligibilityService) CanVote(ctx context.Context, voterID, electionID uuid.UUID, now time.Time) (*domain.Eligibility, error) {
	election, err := openElection(ctx, s.catalog, electionID, now)
	if err != nil {
		return denied(err, election)
	}

	voted, err := s.ballots.HasVoted(ctx, voterID, electionID)
	if err != nil {
		return nil, err
	}
	if voted {
		return denied(domain.ErrAlreadyVoted, election)
	}

	return &domain.Eligibility{
		Allowed:  true,
		StartsAt: election.StartsAt,
		EndsAt:   election.EndsAt,
	}, nil
}

func denied(err error, election *domain.Election) (*domain.Eligibility, error) {
	reason := domain.ReasonFor(err)
	if reason == domain.ReasonStorageUnavailable || reason == domain.ReasonInternal {
		return nil, err
	}

	e := &domain.Eligibility{Allowed: false, Reason: reason}
	if election != nil {
		e.StartsAt = election.StartsAt
		e.EndsAt = election.EndsAt
	}
	return e, nil
}

// openElection runs the request-level gate checks shared by the eligibility
// query and the ledger: the election exists and is active, and now is inside
// the window. The election is returned alongside window errors.
func openElection(ctx context.Context, catalog ports.CatalogRepository, electionID uuid.UUID, now time.Time) (*domain.Election, error) {
	election, err := catalog.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if !election.Active {
		return nil, domain.ErrElectionNotFound
	}
	if election.IsOpenAt(now) {
		return election, nil
	}
	cause := domain.ErrClosed
	if now.Before(election.StartsAt) {
		cause = domain.ErrNotYetOpen
	}
	return election, &domain.WindowError{Err: cause, StartsAt: election.StartsAt, EndsAt: election.EndsAt}
}
