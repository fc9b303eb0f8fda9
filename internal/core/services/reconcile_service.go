package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type reconcileService struct {
	catalog ports.CatalogRepository
	ballots ports.BallotRepository
	audit   ports.AuditService
	log     logrus.FieldLogger
}

// NewReconcileService builds the job that closes audit gaps left when a VOTE
// append failed after its ballot committed.
func NewReconcileService(catalog ports.CatalogRepository, ballots ports.BallotRepository, audit ports.AuditService, log logrus.FieldLogger) ports.ReconcileService {
	return &reconcileService{
		catalog: catalog,
		ballots: ballots,
		audit:   audit,
		log:     log.WithField("component", "reconcile"),
	}
}

func (s *reconcileService) Reconcile(ctx context.Context) (*ports.ReconcileReport, error) {
	elections, err := s.catalog.ListElections(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all elections: %w", err)
	}

	var wg sync.WaitGroup
	var backfilled atomic.Int64
	errChan := make(chan error, len(elections))

	for _, election := range elections {
		wg.Add(1)
		go func(electionID uuid.UUID) {
			defer wg.Done()
			n, err := s.reconcileElection(ctx, electionID)
			backfilled.Add(int64(n))
			if err != nil {
				errChan <- fmt.Errorf("failed to reconcile election %s: %w", electionID, err)
			}
		}(election.ID)
	}

	wg.Wait()
	close(errChan)

	report := &ports.ReconcileReport{
		Elections:  len(elections),
		Backfilled: int(backfilled.Load()),
	}

	for err := range errChan {
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *reconcileService) reconcileElection(ctx context.Context, electionID uuid.UUID) (int, error) {
	missing, err := s.ballots.ListUnaudited(ctx, electionID)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, b := range missing {
		voterID, ballotID := b.VoterID, b.ID
		_, err := s.audit.Record(ctx, ports.RecordInput{
			ActorID:  &voterID,
			Action:   domain.AuditVote,
			Details:  fmt.Sprintf("Reconciled vote for candidate %s in position %s", b.CandidateID, b.PositionID),
			BallotID: &ballotID,
		})
		if err != nil {
			return n, err
		}
		n++
	}

	if n > 0 {
		s.log.WithFields(logrus.Fields{
			"election_id": electionID,
			"backfilled":  n,
		}).Warn("backfilled missing vote audit entries")
	}
	return n, nil
}
