package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
	"github.com/vncsmyrnk/election/internal/core/services"
	"github.com/vncsmyrnk/election/internal/logging"
)

var (
	t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	t1 = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// failingAudit wraps an audit repository and fails appends while fail is set.
type failingAudit struct {
	ports.AuditRepository
	mu   sync.Mutex
	fail bool
}

func (f *failingAudit) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *failingAudit) Append(ctx context.Context, entry *domain.AuditEntry) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.Join(domain.ErrStorageUnavailable, errors.New("connection refused"))
	}
	return f.AuditRepository.Append(ctx, entry)
}

type env struct {
	store       *memory.Store
	clock       *fakeClock
	auditRepo   *failingAudit
	audit       ports.AuditService
	elections   ports.ElectionService
	votes       ports.VoteService
	eligibility ports.EligibilityService
	tally       ports.TallyService
	reconcile   ports.ReconcileService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log := logging.Discard()
	store := memory.NewStore()
	clock := newClock(t0.Add(time.Hour))
	auditRepo := &failingAudit{AuditRepository: store.Audit()}

	auditSvc := services.NewAuditService(auditRepo, log, services.WithClock(clock.Now))
	return &env{
		store:       store,
		clock:       clock,
		auditRepo:   auditRepo,
		audit:       auditSvc,
		elections:   services.NewElectionService(store.Catalog(), log, services.WithClock(clock.Now)),
		votes:       services.NewVoteService(store.Catalog(), store.Ballots(), auditSvc, log, services.WithClock(clock.Now)),
		eligibility: services.NewEligibilityService(store.Catalog(), store.Ballots()),
		tally:       services.NewTallyService(store.Tally(), log),
		reconcile:   services.NewReconcileService(store.Catalog(), store.Ballots(), auditSvc, log),
	}
}

type fixture struct {
	election *domain.Election
	// positions by title; candidates by name.
	positions  map[string]domain.Position
	candidates map[string]domain.Candidate
}

func (f *fixture) pos(title string) uuid.UUID { return f.positions[title].ID }
func (f *fixture) cand(name string) uuid.UUID { return f.candidates[name].ID }
func (f *fixture) electionID() uuid.UUID      { return f.election.ID }

// seed creates an active election open over [t0, t1] with three positions:
// President (Alice, Bob), Secretary (Carol, Dan), Treasurer (Erin, Frank).
func (e *env) seed(t *testing.T) *fixture {
	t.Helper()
	return e.seedElection(t, true, t0, t1)
}

func (e *env) seedElection(t *testing.T, active bool, start, end time.Time) *fixture {
	t.Helper()

	election, err := e.elections.Create(context.Background(), ports.CreateElectionInput{
		Title:     "Student Council",
		StartsAt:  start,
		EndsAt:    end,
		Active:    active,
		CreatedBy: uuid.New(),
		Positions: []ports.CreatePositionInput{
			{Title: "President", Candidates: []ports.CreateCandidateInput{{Name: "Alice", Party: "Blue"}, {Name: "Bob", Party: "Red"}}},
			{Title: "Secretary", Candidates: []ports.CreateCandidateInput{{Name: "Carol", Party: "Blue"}, {Name: "Dan", Party: "Red"}}},
			{Title: "Treasurer", Candidates: []ports.CreateCandidateInput{{Name: "Erin", Party: "Green"}, {Name: "Frank", Party: "Red"}}},
		},
	})
	require.NoError(t, err)

	f := &fixture{
		election:   election,
		positions:  make(map[string]domain.Position),
		candidates: make(map[string]domain.Candidate),
	}
	for _, p := range election.Positions {
		f.positions[p.Title] = p
		for _, c := range p.Candidates {
			f.candidates[c.Name] = c
		}
	}
	return f
}

func (e *env) cast(t *testing.T, voter uuid.UUID, f *fixture, selections map[uuid.UUID]uuid.UUID) *domain.CastResult {
	t.Helper()
	result, err := e.votes.CastBallots(context.Background(), ports.CastInput{
		VoterID:       voter,
		ElectionID:    f.electionID(),
		Selections:    selections,
		OriginAddress: "203.0.113.7",
	})
	require.NoError(t, err)
	return result
}
