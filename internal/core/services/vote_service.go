package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type voteService struct {
	catalog ports.CatalogRepository
	ballots ports.BallotRepository
	audit   ports.AuditService
	log     logrus.FieldLogger
	opts    options
}

func NewVoteService(catalog ports.CatalogRepository, ballots ports.BallotRepository, audit ports.AuditService, log logrus.FieldLogger, opts ...Option) ports.VoteService {
	return &voteService{
		catalog: catalog,
		ballots: ballots,
		audit:   audit,
		log:     log.WithField("component", "ledger"),
		opts:    buildOptions(opts),
	}
}

// CastBallots records one ballot per selected position. Positions are
// independent: a rejected selection never rolls back ballots already
// committed for its siblings, and a partially cast request is a valid
// terminal state. The returned error is non-nil only when the whole request
// is refused (unknown or inactive election, outside the voting window).
func (s *voteService) CastBallots(ctx context.Context, input ports.CastInput) (*domain.CastResult, error) {
	election, err := openElection(ctx, s.catalog, input.ElectionID, s.opts.now())
	if err != nil {
		return nil, err
	}

	positions, err := s.catalog.ListPositions(ctx, election.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}

	result := &domain.CastResult{ElectionID: election.ID}
	for _, sel := range sortedSelections(input.Selections) {
		outcome := s.castOne(ctx, input, election, byID, sel)
		if outcome.Status == domain.OutcomeAccepted {
			result.CastCount++
			if outcome.AuditPending {
				result.AuditPending++
			}
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	s.log.WithFields(logrus.Fields{
		"election_id":   election.ID,
		"voter_id":      input.VoterID,
		"cast":          result.CastCount,
		"rejected":      len(result.Outcomes) - result.CastCount,
		"audit_pending": result.AuditPending,
	}).Info("ballots cast")

	return result, nil
}

func (s *voteService) castOne(ctx context.Context, input ports.CastInput, election *domain.Election, positions map[uuid.UUID]domain.Position, sel selection) domain.PositionOutcome {
	outcome := domain.PositionOutcome{
		PositionID:  sel.positionID,
		CandidateID: sel.candidateID,
		Status:      domain.OutcomeRejected,
	}

	if err := ctx.Err(); err != nil {
		outcome.Reason = domain.ReasonStorageUnavailable
		return outcome
	}

	position, ok := positions[sel.positionID]
	if !ok || position.MaxVotes < 1 {
		outcome.Reason = domain.ReasonInvalidCandidateForPosition
		return outcome
	}

	candidate, err := s.catalog.GetCandidate(ctx, sel.candidateID)
	if err != nil {
		if errors.Is(err, domain.ErrCandidateNotFound) {
			outcome.Reason = domain.ReasonInvalidCandidateForPosition
		} else {
			s.log.WithError(err).WithField("candidate_id", sel.candidateID).Error("failed to load candidate")
			outcome.Reason = domain.ReasonFor(err)
		}
		return outcome
	}
	if !candidate.Active || candidate.PositionID != position.ID {
		outcome.Reason = domain.ReasonInvalidCandidateForPosition
		return outcome
	}

	fingerprint, err := ballotFingerprint(input.VoterID, candidate.ID, position.ID)
	if err != nil {
		s.log.WithError(err).Error("failed to generate ballot fingerprint")
		outcome.Reason = domain.ReasonInternal
		return outcome
	}

	ballot := &domain.Ballot{
		ID:          uuid.New(),
		VoterID:     input.VoterID,
		CandidateID: candidate.ID,
		PositionID:  position.ID,
		ElectionID:  election.ID,
		CreatedAt:   s.opts.now().UTC(),
		Fingerprint: fingerprint,
	}

	if err := s.ballots.Insert(ctx, ballot); err != nil {
		if !errors.Is(err, domain.ErrDuplicateVote) {
			s.log.WithError(err).WithField("position_id", position.ID).Error("failed to insert ballot")
		}
		outcome.Reason = domain.ReasonFor(err)
		return outcome
	}

	outcome.Status = domain.OutcomeAccepted
	outcome.BallotID = &ballot.ID
	outcome.Fingerprint = ballot.Fingerprint

	// The ballot is committed at this point; the audit append follows it.
	voterID := input.VoterID
	_, err = s.audit.Record(ctx, ports.RecordInput{
		ActorID:       &voterID,
		Action:        domain.AuditVote,
		Details:       fmt.Sprintf("Voted for %s in %s", candidate.Name, position.Title),
		OriginAddress: input.OriginAddress,
		BallotID:      &ballot.ID,
	})
	if err != nil {
		s.log.WithError(err).WithField("ballot_id", ballot.ID).Error("ballot committed without audit entry, pending reconciliation")
		outcome.AuditPending = true
	}

	return outcome
}

func (s *voteService) MyBallots(ctx context.Context, voterID, electionID uuid.UUID) ([]domain.Ballot, error) {
	if _, err := s.catalog.GetElection(ctx, electionID); err != nil {
		return nil, err
	}
	return s.ballots.ListByVoter(ctx, voterID, electionID)
}

type selection struct {
	positionID  uuid.UUID
	candidateID uuid.UUID
}

// sortedSelections drops empty choices and orders the rest by position id so
// outcomes are reported deterministically.
func sortedSelections(selections map[uuid.UUID]uuid.UUID) []selection {
	out := make([]selection, 0, len(selections))
	for positionID, candidateID := range selections {
		if candidateID == uuid.Nil {
			continue
		}
		out = append(out, selection{positionID: positionID, candidateID: candidateID})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].positionID[:], out[j].positionID[:]) < 0
	})
	return out
}

// ballotFingerprint hashes the ballot identity with a fresh random nonce. It
// is a reference token, not a uniqueness key.
func ballotFingerprint(voterID, candidateID, positionID uuid.UUID) (string, error) {
	nonce, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(voterID.String()))
	h.Write([]byte(candidateID.String()))
	h.Write([]byte(positionID.String()))
	h.Write([]byte(nonce.String()))
	return hex.EncodeToString(h.Sum(nil)), nil
}
