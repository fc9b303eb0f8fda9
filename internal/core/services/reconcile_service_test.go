package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

func TestReconcile_BackfillsMissingVoteEntries(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)
	other := e.seed(t)
	voter := uuid.New()

	// 1. One ballot is audited normally
	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Bob")})

	// 2. Two ballots in different elections lose their audit entries
	e.auditRepo.setFail(true)
	pending := e.cast(t, voter, f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Alice")})
	require.Equal(t, 1, pending.AuditPending)
	pendingOther := e.cast(t, voter, other, map[uuid.UUID]uuid.UUID{other.pos("Secretary"): other.cand("Dan")})
	require.Equal(t, 1, pendingOther.AuditPending)
	e.auditRepo.setFail(false)

	// 3. Reconcile
	e.clock.Advance(time.Minute)
	report, err := e.reconcile.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Elections)
	assert.Equal(t, 2, report.Backfilled)

	entries, err := e.audit.List(context.Background(), domain.AuditFilter{ActorID: &voter, Action: domain.AuditVote})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	ballots, err := e.votes.MyBallots(context.Background(), voter, f.electionID())
	require.NoError(t, err)
	require.Len(t, ballots, 1)

	var linked *domain.AuditEntry
	for i := range entries {
		if *entries[i].BallotID == ballots[0].ID {
			linked = &entries[i]
		}
	}
	require.NotNil(t, linked)
	assert.Contains(t, linked.Details, "Reconciled vote")
	assert.True(t, linked.CreatedAt.After(ballots[0].CreatedAt))

	// 4. A second run finds nothing
	report, err = e.reconcile.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Backfilled)
}

func TestReconcile_StorageFailure(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)

	e.auditRepo.setFail(true)
	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Alice")})

	report, err := e.reconcile.Reconcile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	require.NotNil(t, report)
	assert.Zero(t, report.Backfilled)
}
