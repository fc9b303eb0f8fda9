package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

type RecordInput struct {
	ActorID       *uuid.UUID
	Action        domain.AuditAction
	Details       string
	OriginAddress string
	BallotID      *uuid.UUID
}

type AuditService interface {
	Record(ctx context.Context, input RecordInput) (*domain.AuditEntry, error)
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

type ReconcileReport struct {
	Elections  int
	Backfilled int
}

type ReconcileService interface {
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}
