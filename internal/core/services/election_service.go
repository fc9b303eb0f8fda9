package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type electionService struct {
	repo ports.CatalogRepository
	log  logrus.FieldLogger
	opts options
}

func NewElectionService(repo ports.CatalogRepository, log logrus.FieldLogger, opts ...Option) ports.ElectionService {
	return &electionService{
		repo: repo,
		log:  log.WithField("component", "catalog"),
		opts: buildOptions(opts),
	}
}

func (s *electionService) Create(ctx context.Context, input ports.CreateElectionInput) (*domain.Election, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidElection)
	}
	if !input.StartsAt.Before(input.EndsAt) {
		return nil, fmt.Errorf("%w: start must be before end", domain.ErrInvalidElection)
	}

	electionID := uuid.New()
	election := &domain.Election{
		ID:          electionID,
		Title:       title,
		Description: input.Description,
		StartsAt:    input.StartsAt.UTC(),
		EndsAt:      input.EndsAt.UTC(),
		Active:      input.Active,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   s.opts.now().UTC(),
	}

	for _, p := range input.Positions {
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("%w: position title is required", domain.ErrInvalidElection)
		}
		maxVotes := p.MaxVotes
		if maxVotes == 0 {
			maxVotes = 1
		}
		if maxVotes < 0 {
			return nil, fmt.Errorf("%w: max votes must be positive", domain.ErrInvalidElection)
		}

		position := domain.Position{
			ID:          uuid.New(),
			ElectionID:  electionID,
			Title:       strings.TrimSpace(p.Title),
			Description: p.Description,
			MaxVotes:    maxVotes,
		}
		for _, c := range p.Candidates {
			if strings.TrimSpace(c.Name) == "" {
				continue
			}
			position.Candidates = append(position.Candidates, domain.Candidate{
				ID:         uuid.New(),
				PositionID: position.ID,
				Name:       strings.TrimSpace(c.Name),
				Party:      c.Party,
				Manifesto:  c.Manifesto,
				PhotoURL:   c.PhotoURL,
				Active:     true,
			})
		}
		election.Positions = append(election.Positions, position)
	}

	if err := s.repo.SaveElection(ctx, election); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"election_id": election.ID,
		"positions":   len(election.Positions),
	}).Info("election created")

	return election, nil
}

// GetElection returns the election with its positions and active candidates.
func (s *electionService) GetElection(ctx context.Context, id string) (*domain.Election, error) {
	electionID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidElectionID
	}

	election, err := s.repo.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	positions, err := s.repo.ListPositions(ctx, electionID)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		candidates, err := s.repo.ListCandidates(ctx, positions[i].ID, true)
		if err != nil {
			return nil, err
		}
		positions[i].Candidates = candidates
	}
	election.Positions = positions

	return election, nil
}

func (s *electionService) ListActive(ctx context.Context) ([]*domain.Election, error) {
	return s.repo.ListElections(ctx, true)
}

// ListAll includes inactive and ended elections, newest start first.
func (s *electionService) ListAll(ctx context.Context) ([]*domain.Election, error) {
	return s.repo.ListElections(ctx, false)
}
