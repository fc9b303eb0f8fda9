package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type ballotRepository struct {
	db *sql.DB
}

func NewBallotRepository(db *sql.DB) ports.BallotRepository {
	return &ballotRepository{
		db: db,
	}
}

// Insert relies on the (voter_id, position_id, election_id) unique constraint.
// ON CONFLICT DO NOTHING makes the check and the write one statement, so
// concurrent inserts for the same key yield exactly one returned row.
func (r *ballotRepository) Insert(ctx context.Context, ballot *domain.Ballot) error {
	query := `
		INSERT INTO ballots (id, voter_id, candidate_id, position_id, election_id, created_at, fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT ballots_voter_position_election_key DO NOTHING
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query,
		ballot.ID, ballot.VoterID, ballot.CandidateID, ballot.PositionID,
		ballot.ElectionID, ballot.CreatedAt, ballot.Fingerprint,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrDuplicateVote
		}
		return storageErr("failed to save ballot", err)
	}
	return nil
}

func (r *ballotRepository) HasVoted(ctx context.Context, voterID, electionID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM ballots WHERE voter_id = $1 AND election_id = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, voterID, electionID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storageErr("failed to check existing ballot", err)
	}
	return true, nil
}

func (r *ballotRepository) ListByVoter(ctx context.Context, voterID, electionID uuid.UUID) ([]domain.Ballot, error) {
	query := `
		SELECT id, voter_id, candidate_id, position_id, election_id, created_at, fingerprint
		FROM ballots
		WHERE voter_id = $1 AND election_id = $2
		ORDER BY created_at, id
	`
	return r.list(ctx, query, voterID, electionID)
}

func (r *ballotRepository) ListUnaudited(ctx context.Context, electionID uuid.UUID) ([]domain.Ballot, error) {
	query := `
		SELECT b.id, b.voter_id, b.candidate_id, b.position_id, b.election_id, b.created_at, b.fingerprint
		FROM ballots b
		WHERE b.election_id = $1
		  AND NOT EXISTS (
		      SELECT 1 FROM audit_entries a
		      WHERE a.ballot_id = b.id AND a.action = 'VOTE'
		  )
		ORDER BY b.created_at, b.id
	`
	return r.list(ctx, query, electionID)
}

func (r *ballotRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ballot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to list ballots", err)
	}
	defer rows.Close()

	var ballots []domain.Ballot
	for rows.Next() {
		var b domain.Ballot
		if err := rows.Scan(&b.ID, &b.VoterID, &b.CandidateID, &b.PositionID, &b.ElectionID, &b.CreatedAt, &b.Fingerprint); err != nil {
			return nil, storageErr("failed to scan ballot", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		ballots = append(ballots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("error iterating ballots", err)
	}
	return ballots, nil
}
