package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) ports.AuditRepository {
	return &auditRepository{
		db: db,
	}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (id, actor_id, action, details, created_at, origin_address, ballot_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.ActorID, string(entry.Action), entry.Details,
		entry.CreatedAt, entry.OriginAddress, entry.BallotID,
	)
	if err != nil {
		return storageErr("failed to append audit entry", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ActorID != nil {
		where = append(where, "actor_id = "+arg(*filter.ActorID))
	}
	if filter.Action != "" {
		where = append(where, "action = "+arg(string(filter.Action)))
	}
	if filter.From != nil {
		where = append(where, "created_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "created_at <= "+arg(*filter.To))
	}

	query := `SELECT id, actor_id, action, details, created_at, host(origin_address), ballot_id FROM audit_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to list audit entries", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e        domain.AuditEntry
			actorID  uuid.NullUUID
			ballotID uuid.NullUUID
			origin   sql.NullString
			action   string
		)
		if err := rows.Scan(&e.ID, &actorID, &action, &e.Details, &e.CreatedAt, &origin, &ballotID); err != nil {
			return nil, storageErr("failed to scan audit entry", err)
		}
		e.Action = domain.AuditAction(action)
		e.CreatedAt = e.CreatedAt.UTC()
		if actorID.Valid {
			e.ActorID = &actorID.UUID
		}
		if ballotID.Valid {
			e.BallotID = &ballotID.UUID
		}
		if origin.Valid {
			e.OriginAddress = &origin.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("error iterating audit entries", err)
	}
	return entries, nil
}
