package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type tallyRepository struct {
	db *sql.DB
}

func NewTallyRepository(db *sql.DB) ports.TallyRepository {
	return &tallyRepository{
		db: db,
	}
}

// Snapshot reads the election, its positions, their candidates and the
// ballot counts inside one REPEATABLE READ transaction, so counts and the
// candidate list agree even while ballots are being cast.
func (r *tallyRepository) Snapshot(ctx context.Context, electionID uuid.UUID) (*domain.TallySnapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, storageErr("failed to begin snapshot", err)
	}
	defer tx.Rollback()

	queryElection := `
		SELECT id, title, description, starts_at, ends_at, is_active, created_by, created_at
		FROM elections
		WHERE id = $1
	`
	election, err := scanElection(tx.QueryRowContext(ctx, queryElection, electionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrElectionNotFound
		}
		return nil, storageErr("failed to get election", err)
	}

	positions, err := listPositions(ctx, tx, electionID)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]int, len(positions))
	for i, p := range positions {
		index[p.ID] = i
	}

	queryCandidates := `
		SELECT c.id, c.position_id, c.name, c.party, c.manifesto, c.photo_url, c.is_active
		FROM candidates c
		JOIN positions p ON p.id = c.position_id
		WHERE p.election_id = $1 AND c.is_active
		ORDER BY c.position_id, c.id
	`
	rows, err := tx.QueryContext(ctx, queryCandidates, electionID)
	if err != nil {
		return nil, storageErr("failed to list candidates", err)
	}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			rows.Close()
			return nil, storageErr("failed to scan candidate", err)
		}
		if i, ok := index[c.PositionID]; ok {
			positions[i].Candidates = append(positions[i].Candidates, *c)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storageErr("error iterating candidates", err)
	}
	rows.Close()

	queryCounts := `
		SELECT candidate_id, COUNT(*)
		FROM ballots
		WHERE election_id = $1
		GROUP BY candidate_id, position_id
	`
	countRows, err := tx.QueryContext(ctx, queryCounts, electionID)
	if err != nil {
		return nil, storageErr("failed to count ballots", err)
	}
	defer countRows.Close()

	counts := make(map[uuid.UUID]int64)
	for countRows.Next() {
		var candidateID uuid.UUID
		var n int64
		if err := countRows.Scan(&candidateID, &n); err != nil {
			return nil, storageErr("failed to scan ballot count", err)
		}
		counts[candidateID] += n
	}
	if err := countRows.Err(); err != nil {
		return nil, storageErr("error iterating ballot counts", err)
	}

	return &domain.TallySnapshot{
		Election:   *election,
		Positions:  positions,
		VoteCounts: counts,
	}, nil
}
