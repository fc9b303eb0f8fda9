package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

const (
	defaultAuditPageSize = 100
	maxAuditPageSize     = 1000
)

type auditService struct {
	repo ports.AuditRepository
	log  logrus.FieldLogger
	opts options
}

func NewAuditService(repo ports.AuditRepository, log logrus.FieldLogger, opts ...Option) ports.AuditService {
	return &auditService{
		repo: repo,
		log:  log.WithField("component", "audit"),
		opts: buildOptions(opts),
	}
}

// Record appends one entry. Storage failures are returned to the caller and
// never retried here.
func (s *auditService) Record(ctx context.Context, input ports.RecordInput) (*domain.AuditEntry, error) {
	if !input.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAuditAction, input.Action)
	}

	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		ActorID:   input.ActorID,
		Action:    input.Action,
		Details:   input.Details,
		CreatedAt: s.opts.now().UTC(),
		BallotID:  input.BallotID,
	}
	if input.OriginAddress != "" {
		addr := input.OriginAddress
		entry.OriginAddress = &addr
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action":   input.Action,
			"actor_id": input.ActorID,
		}).Error("failed to append audit entry")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"audit_id": entry.ID,
		"action":   entry.Action,
	}).Debug("audit entry recorded")

	return entry, nil
}

func (s *auditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	if filter.Action != "" && !filter.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAuditAction, filter.Action)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditPageSize
	}
	if filter.Limit > maxAuditPageSize {
		filter.Limit = maxAuditPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.repo.List(ctx, filter)
}
