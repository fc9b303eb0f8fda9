package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type catalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) ports.CatalogRepository {
	return &catalogRepository{
		db: db,
	}
}

func (r *catalogRepository) SaveElection(ctx context.Context, election *domain.Election) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	queryElection := `
		INSERT INTO elections (id, title, description, starts_at, ends_at, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, queryElection,
		election.ID, election.Title, election.Description, election.StartsAt, election.EndsAt,
		election.Active, election.CreatedBy, election.CreatedAt,
	)
	if err != nil {
		return storageErr("failed to insert election", err)
	}

	queryPosition := `
		INSERT INTO positions (id, election_id, title, description, max_votes)
		VALUES ($1, $2, $3, $4, $5)
	`
	queryCandidate := `
		INSERT INTO candidates (id, position_id, name, party, manifesto, photo_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	candStmt, err := tx.PrepareContext(ctx, queryCandidate)
	if err != nil {
		return storageErr("failed to prepare candidate statement", err)
	}
	defer candStmt.Close()

	for _, p := range election.Positions {
		_, err = tx.ExecContext(ctx, queryPosition, p.ID, p.ElectionID, p.Title, p.Description, p.MaxVotes)
		if err != nil {
			return storageErr("failed to insert position", err)
		}
		for _, c := range p.Candidates {
			_, err = candStmt.ExecContext(ctx, c.ID, c.PositionID, c.Name, c.Party, c.Manifesto, c.PhotoURL, c.Active)
			if err != nil {
				return storageErr("failed to insert candidate", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("failed to commit transaction", err)
	}

	return nil
}

func (r *catalogRepository) GetElection(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	query := `
		SELECT id, title, description, starts_at, ends_at, is_active, created_by, created_at
		FROM elections
		WHERE id = $1
	`
	election, err := scanElection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrElectionNotFound
		}
		return nil, storageErr("failed to get election", err)
	}
	return election, nil
}

func (r *catalogRepository) ListElections(ctx context.Context, activeOnly bool) ([]*domain.Election, error) {
	query := `
		SELECT id, title, description, starts_at, ends_at, is_active, created_by, created_at
		FROM elections
		WHERE ($1 = FALSE OR is_active)
		ORDER BY starts_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, storageErr("failed to list elections", err)
	}
	defer rows.Close()

	var elections []*domain.Election
	for rows.Next() {
		election, err := scanElection(rows)
		if err != nil {
			return nil, storageErr("failed to scan election", err)
		}
		elections = append(elections, election)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("error iterating elections", err)
	}
	return elections, nil
}

func (r *catalogRepository) ListPositions(ctx context.Context, electionID uuid.UUID) ([]domain.Position, error) {
	return listPositions(ctx, r.db, electionID)
}

func (r *catalogRepository) ListCandidates(ctx context.Context, positionID uuid.UUID, activeOnly bool) ([]domain.Candidate, error) {
	query := `
		SELECT id, position_id, name, party, manifesto, photo_url, is_active
		FROM candidates
		WHERE position_id = $1 AND ($2 = FALSE OR is_active)
		ORDER BY name, id
	`
	rows, err := r.db.QueryContext(ctx, query, positionID, activeOnly)
	if err != nil {
		return nil, storageErr("failed to list candidates", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, storageErr("failed to scan candidate", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("error iterating candidates", err)
	}
	return candidates, nil
}

func (r *catalogRepository) GetCandidate(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `
		SELECT id, position_id, name, party, manifesto, photo_url, is_active
		FROM candidates
		WHERE id = $1
	`
	c, err := scanCandidate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, storageErr("failed to get candidate", err)
	}
	return c, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func listPositions(ctx context.Context, q queryer, electionID uuid.UUID) ([]domain.Position, error) {
	query := `
		SELECT id, election_id, title, description, max_votes
		FROM positions
		WHERE election_id = $1
		ORDER BY title, id
	`
	rows, err := q.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, storageErr("failed to list positions", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(&p.ID, &p.ElectionID, &p.Title, &p.Description, &p.MaxVotes); err != nil {
			return nil, storageErr("failed to scan position", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("error iterating positions", err)
	}
	return positions, nil
}

func scanElection(row scanner) (*domain.Election, error) {
	var e domain.Election
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.Active, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.StartsAt = e.StartsAt.UTC()
	e.EndsAt = e.EndsAt.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func scanCandidate(row scanner) (*domain.Candidate, error) {
	var c domain.Candidate
	var photo sql.NullString
	if err := row.Scan(&c.ID, &c.PositionID, &c.Name, &c.Party, &c.Manifesto, &photo, &c.Active); err != nil {
		return nil, err
	}
	if photo.Valid {
		c.PhotoURL = &photo.String
	}
	return &c, nil
}
