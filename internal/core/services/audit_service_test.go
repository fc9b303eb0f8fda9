package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

func TestAuditRecord(t *testing.T) {
	e := newEnv(t)
	actor := uuid.New()

	entry, err := e.audit.Record(context.Background(), ports.RecordInput{
		ActorID:       &actor,
		Action:        domain.AuditLogin,
		Details:       "User logged in",
		OriginAddress: "198.51.100.4",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.True(t, entry.CreatedAt.Equal(e.clock.Now()))
	assert.Equal(t, time.UTC, entry.CreatedAt.Location())
	require.NotNil(t, entry.OriginAddress)
	assert.Equal(t, "198.51.100.4", *entry.OriginAddress)
	assert.Nil(t, entry.BallotID)
}

func TestAuditRecord_WithoutOrigin(t *testing.T) {
	e := newEnv(t)

	entry, err := e.audit.Record(context.Background(), ports.RecordInput{Action: domain.AuditLogout})
	require.NoError(t, err)
	assert.Nil(t, entry.OriginAddress)
	assert.Nil(t, entry.ActorID)
}

func TestAuditRecord_InvalidAction(t *testing.T) {
	e := newEnv(t)

	_, err := e.audit.Record(context.Background(), ports.RecordInput{Action: "DELETE"})
	assert.ErrorIs(t, err, domain.ErrInvalidAuditAction)

	entries, err := e.audit.List(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAuditRecord_StorageFailure(t *testing.T) {
	e := newEnv(t)
	e.auditRepo.setFail(true)

	_, err := e.audit.Record(context.Background(), ports.RecordInput{Action: domain.AuditLogin})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestAuditList_Filters(t *testing.T) {
	e := newEnv(t)
	alice, bob := uuid.New(), uuid.New()

	record := func(actor uuid.UUID, action domain.AuditAction) {
		_, err := e.audit.Record(context.Background(), ports.RecordInput{ActorID: &actor, Action: action})
		require.NoError(t, err)
		e.clock.Advance(time.Minute)
	}

	start := e.clock.Now()
	record(alice, domain.AuditLogin)
	record(bob, domain.AuditLogin)
	record(alice, domain.AuditVote)
	record(alice, domain.AuditLogout)

	all, err := e.audit.List(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CreatedAt.Before(all[i].CreatedAt))
	}

	byActor, err := e.audit.List(context.Background(), domain.AuditFilter{ActorID: &alice})
	require.NoError(t, err)
	assert.Len(t, byActor, 3)

	byAction, err := e.audit.List(context.Background(), domain.AuditFilter{Action: domain.AuditLogin})
	require.NoError(t, err)
	assert.Len(t, byAction, 2)

	from := start.Add(time.Minute)
	to := start.Add(2 * time.Minute)
	byRange, err := e.audit.List(context.Background(), domain.AuditFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, byRange, 2)
	assert.Equal(t, bob, *byRange[0].ActorID)
	assert.Equal(t, domain.AuditVote, byRange[1].Action)

	page, err := e.audit.List(context.Background(), domain.AuditFilter{Limit: 2, Offset: 3})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, domain.AuditLogout, page[0].Action)

	_, err = e.audit.List(context.Background(), domain.AuditFilter{Action: "EXPORT"})
	assert.ErrorIs(t, err, domain.ErrInvalidAuditAction)
}

func TestAuditList_DefaultLimit(t *testing.T) {
	e := newEnv(t)

	for i := 0; i < 120; i++ {
		_, err := e.audit.Record(context.Background(), ports.RecordInput{Action: domain.AuditLogin})
		require.NoError(t, err)
	}

	entries, err := e.audit.List(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 100)

	entries, err = e.audit.List(context.Background(), domain.AuditFilter{Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, entries, 120)
}
