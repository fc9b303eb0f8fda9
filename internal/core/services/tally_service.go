package services

import (
	"bytes"
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type tallyService struct {
	repo ports.TallyRepository
	log  logrus.FieldLogger
}

func NewTallyService(repo ports.TallyRepository, log logrus.FieldLogger) ports.TallyService {
	return &tallyService{
		repo: repo,
		log:  log.WithField("component", "tally"),
	}
}

// ComputeResults ranks every position of the election from one ledger
// snapshot. It never writes.
func (s *tallyService) ComputeResults(ctx context.Context, electionID uuid.UUID) (*domain.ElectionResults, error) {
	snap, err := s.repo.Snapshot(ctx, electionID)
	if err != nil {
		return nil, err
	}

	results := &domain.ElectionResults{
		Election:  snap.Election,
		Positions: make([]domain.PositionResult, 0, len(snap.Positions)),
	}
	for _, p := range snap.Positions {
		results.Positions = append(results.Positions, tallyPosition(p, snap.VoteCounts))
	}

	s.log.WithFields(logrus.Fields{
		"election_id": electionID,
		"positions":   len(results.Positions),
	}).Debug("results computed")

	return results, nil
}

func (s *tallyService) LiveResults(ctx context.Context, electionID uuid.UUID) (*domain.LiveResults, error) {
	results, err := s.ComputeResults(ctx, electionID)
	if err != nil {
		return nil, err
	}

	live := &domain.LiveResults{
		Election:  results.Election.Title,
		Positions: make([]domain.LivePosition, 0, len(results.Positions)),
	}
	for _, p := range results.Positions {
		lp := domain.LivePosition{
			Position:   p.PositionTitle,
			Candidates: make([]domain.LiveCandidate, 0, len(p.Candidates)),
		}
		for _, c := range p.Candidates {
			lp.Candidates = append(lp.Candidates, domain.LiveCandidate{
				Name:  c.Name,
				Party: c.Party,
				Votes: c.VoteCount,
			})
		}
		live.Positions = append(live.Positions, lp)
	}
	return live, nil
}

// tallyPosition counts only the position's active candidates, so the total
// is their sum by construction. Ties on vote count are broken by ascending
// candidate id.
func tallyPosition(position domain.Position, counts map[uuid.UUID]int64) domain.PositionResult {
	result := domain.PositionResult{
		PositionID:    position.ID,
		PositionTitle: position.Title,
		Candidates:    make([]domain.CandidateResult, 0, len(position.Candidates)),
	}

	for _, c := range position.Candidates {
		if !c.Active {
			continue
		}
		n := counts[c.ID]
		result.TotalVotes += n
		result.Candidates = append(result.Candidates, domain.CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Party:       c.Party,
			PhotoURL:    c.Photo(),
			VoteCount:   n,
		})
	}

	for i := range result.Candidates {
		result.Candidates[i].Percentage = percentage(result.Candidates[i].VoteCount, result.TotalVotes)
	}

	sort.SliceStable(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return bytes.Compare(a.CandidateID[:], b.CandidateID[:]) < 0
	})

	if len(result.Candidates) > 0 && result.Candidates[0].VoteCount > 0 {
		winner := result.Candidates[0].CandidateID
		result.WinnerID = &winner
	}

	return result
}

func percentage(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
