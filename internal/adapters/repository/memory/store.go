// Package memory keeps every repository in process memory behind one lock.
// It backs unit tests and single-node demos; the lock stands in for the
// database's unique constraint and snapshot isolation.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type ballotKey struct {
	voter    uuid.UUID
	position uuid.UUID
	election uuid.UUID
}

type Store struct {
	mu            sync.RWMutex
	elections     map[uuid.UUID]domain.Election
	positions     map[uuid.UUID]domain.Position
	candidates    map[uuid.UUID]domain.Candidate
	ballots       []domain.Ballot
	ballotKeys    map[ballotKey]struct{}
	audit         []domain.AuditEntry
	users         map[uuid.UUID]domain.User
	refreshTokens map[string]domain.RefreshToken
}

func NewStore() *Store {
	return &Store{
		elections:     make(map[uuid.UUID]domain.Election),
		positions:     make(map[uuid.UUID]domain.Position),
		candidates:    make(map[uuid.UUID]domain.Candidate),
		ballotKeys:    make(map[ballotKey]struct{}),
		users:         make(map[uuid.UUID]domain.User),
		refreshTokens: make(map[string]domain.RefreshToken),
	}
}

func (s *Store) Catalog() ports.CatalogRepository { return (*catalogRepository)(s) }
func (s *Store) Ballots() ports.BallotRepository  { return (*ballotRepository)(s) }
func (s *Store) Audit() ports.AuditRepository     { return (*auditRepository)(s) }
func (s *Store) Tally() ports.TallyRepository     { return (*tallyRepository)(s) }
func (s *Store) Users() ports.UserRepository      { return (*userRepository)(s) }
func (s *Store) Auth() ports.AuthRepository       { return (*authRepository)(s) }

// SetCandidateActive flips a candidate's active flag, as an administrator
// would outside the core.
func (s *Store) SetCandidateActive(id uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.candidates[id]; ok {
		c.Active = active
		s.candidates[id] = c
	}
}

// BallotCount returns the number of stored ballots.
func (s *Store) BallotCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ballots)
}

type catalogRepository Store

func (r *catalogRepository) SaveElection(ctx context.Context, election *domain.Election) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *election
	e.Positions = nil
	s.elections[e.ID] = e
	for _, p := range election.Positions {
		candidates := p.Candidates
		p.Candidates = nil
		s.positions[p.ID] = p
		for _, c := range candidates {
			s.candidates[c.ID] = c
		}
	}
	return nil
}

func (r *catalogRepository) GetElection(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.elections[id]
	if !ok {
		return nil, domain.ErrElectionNotFound
	}
	return &e, nil
}

func (r *catalogRepository) ListElections(ctx context.Context, activeOnly bool) ([]*domain.Election, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Election
	for _, e := range s.elections {
		if activeOnly && !e.Active {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.After(out[j].StartsAt)
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *catalogRepository) ListPositions(ctx context.Context, electionID uuid.UUID) ([]domain.Position, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positionsOf(electionID), nil
}

func (r *catalogRepository) ListCandidates(ctx context.Context, positionID uuid.UUID, activeOnly bool) ([]domain.Candidate, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Candidate
	for _, c := range s.candidates {
		if c.PositionID != positionID || (activeOnly && !c.Active) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *catalogRepository) GetCandidate(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	return &c, nil
}

type ballotRepository Store

// Insert checks and writes under the same write lock.
func (r *ballotRepository) Insert(ctx context.Context, ballot *domain.Ballot) error {
	s := (*Store)(r)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ballotKey{voter: ballot.VoterID, position: ballot.PositionID, election: ballot.ElectionID}
	if _, taken := s.ballotKeys[key]; taken {
		return domain.ErrDuplicateVote
	}
	s.ballotKeys[key] = struct{}{}
	s.ballots = append(s.ballots, *ballot)
	return nil
}

func (r *ballotRepository) HasVoted(ctx context.Context, voterID, electionID uuid.UUID) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.ballots {
		if b.VoterID == voterID && b.ElectionID == electionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ballotRepository) ListByVoter(ctx context.Context, voterID, electionID uuid.UUID) ([]domain.Ballot, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Ballot
	for _, b := range s.ballots {
		if b.VoterID == voterID && b.ElectionID == electionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *ballotRepository) ListUnaudited(ctx context.Context, electionID uuid.UUID) ([]domain.Ballot, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	audited := make(map[uuid.UUID]struct{})
	for _, e := range s.audit {
		if e.Action == domain.AuditVote && e.BallotID != nil {
			audited[*e.BallotID] = struct{}{}
		}
	}

	var out []domain.Ballot
	for _, b := range s.ballots {
		if b.ElectionID != electionID {
			continue
		}
		if _, ok := audited[b.ID]; !ok {
			out = append(out, b)
		}
	}
	return out, nil
}

type auditRepository Store

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, *entry)
	return nil
}

func (r *auditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.AuditEntry
	for _, e := range s.audit {
		if filter.ActorID != nil && (e.ActorID == nil || *e.ActorID != *filter.ActorID) {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.From != nil && e.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return lessID(out[i].ID, out[j].ID)
	})

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

type tallyRepository Store

// Snapshot holds the read lock for the whole read, so no ballot lands
// between listing candidates and counting.
func (r *tallyRepository) Snapshot(ctx context.Context, electionID uuid.UUID) (*domain.TallySnapshot, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	election, ok := s.elections[electionID]
	if !ok {
		return nil, domain.ErrElectionNotFound
	}

	positions := s.positionsOf(electionID)
	for i := range positions {
		for _, c := range s.candidates {
			if c.PositionID == positions[i].ID && c.Active {
				positions[i].Candidates = append(positions[i].Candidates, c)
			}
		}
		sort.Slice(positions[i].Candidates, func(a, b int) bool {
			return lessID(positions[i].Candidates[a].ID, positions[i].Candidates[b].ID)
		})
	}

	counts := make(map[uuid.UUID]int64)
	for _, b := range s.ballots {
		if b.ElectionID == electionID {
			counts[b.CandidateID]++
		}
	}

	return &domain.TallySnapshot{
		Election:   election,
		Positions:  positions,
		VoteCounts: counts,
	}, nil
}

type userRepository Store

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.DeletedAt == nil {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = domain.RoleVoter
	}
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

type authRepository Store

func (r *authRepository) StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	token.ID = uuid.New()
	token.CreatedAt = time.Now().UTC()
	s.refreshTokens[token.TokenHash] = *token
	return nil
}

func (r *authRepository) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.refreshTokens[tokenHash]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *authRepository) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, t := range s.refreshTokens {
		if t.ID == id {
			t.Revoked = true
			s.refreshTokens[hash] = t
		}
	}
	return nil
}

func (r *authRepository) CountActiveSessions(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.refreshTokens {
		if t.UserID == userID && t.ActiveAt(at) {
			n++
		}
	}
	return n, nil
}

// positionsOf must be called with the lock held.
func (s *Store) positionsOf(electionID uuid.UUID) []domain.Position {
	var out []domain.Position
	for _, p := range s.positions {
		if p.ElectionID == electionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
