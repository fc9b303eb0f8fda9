package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

func TestBallotFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, adminToken := app.createUserAndToken(t, domain.RoleAdmin)
	voterID, voterToken := app.createUserAndToken(t, domain.RoleVoter)

	// 1. Create the election
	election := app.createElection(t, adminToken, map[string][]string{
		"President": {"Alice", "Bob"},
	})
	president := findPosition(election, "President")
	alice, bob := findCandidate(president, "Alice"), findCandidate(president, "Bob")
	base := fmt.Sprintf("/api/elections/%s", election.ID)

	// 2. Cast a ballot for Alice
	resp := app.request(t, http.MethodPost, base+"/ballots", voterToken, map[string]any{
		"selections": map[string]string{president.ID.String(): alice.ID.String()},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result domain.CastResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	require.Equal(t, 1, result.CastCount)
	ballotID := *result.Outcomes[0].BallotID

	// 3. The ballot row and its audit entry are linked
	var fingerprint string
	err := app.DB.QueryRow("SELECT fingerprint FROM ballots WHERE id = $1", ballotID).Scan(&fingerprint)
	require.NoError(t, err)
	assert.Equal(t, result.Outcomes[0].Fingerprint, fingerprint)

	var actor, action, origin string
	err = app.DB.QueryRow("SELECT actor_id, action, host(origin_address) FROM audit_entries WHERE ballot_id = $1", ballotID).
		Scan(&actor, &action, &origin)
	require.NoError(t, err)
	assert.Equal(t, voterID.String(), actor)
	assert.Equal(t, string(domain.AuditVote), action)
	assert.Equal(t, "127.0.0.1", origin)

	// 4. Recasting the position is rejected
	resp = app.request(t, http.MethodPost, base+"/ballots", voterToken, map[string]any{
		"selections": map[string]string{president.ID.String(): bob.ID.String()},
	})
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.Equal(t, 0, result.CastCount)
	assert.Equal(t, domain.ReasonDuplicateVote, result.Outcomes[0].Reason)

	// 5. Results
	resp = app.request(t, http.MethodGet, base+"/results", voterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results domain.ElectionResults
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	resp.Body.Close()

	require.Len(t, results.Positions, 1)
	p := results.Positions[0]
	assert.Equal(t, int64(1), p.TotalVotes)
	require.Len(t, p.Candidates, 2)
	assert.Equal(t, "Alice", p.Candidates[0].Name)
	assert.Equal(t, 100.0, p.Candidates[0].Percentage)
	assert.Equal(t, "Bob", p.Candidates[1].Name)
	assert.Equal(t, 0.0, p.Candidates[1].Percentage)
	require.NotNil(t, p.WinnerID)
	assert.Equal(t, alice.ID, *p.WinnerID)
}

func TestPartialBallot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, adminToken := app.createUserAndToken(t, domain.RoleAdmin)
	_, voterToken := app.createUserAndToken(t, domain.RoleVoter)

	election := app.createElection(t, adminToken, map[string][]string{
		"President": {"Alice", "Bob"},
		"Secretary": {"Carol", "Dan"},
		"Treasurer": {"Erin", "Frank"},
	})
	president := findPosition(election, "President")
	secretary := findPosition(election, "Secretary")
	treasurer := findPosition(election, "Treasurer")

	// Dan runs for Secretary, not Treasurer.
	resp := app.request(t, http.MethodPost, fmt.Sprintf("/api/elections/%s/ballots", election.ID), voterToken, map[string]any{
		"selections": map[string]string{
			president.ID.String(): findCandidate(president, "Alice").ID.String(),
			secretary.ID.String(): findCandidate(secretary, "Carol").ID.String(),
			treasurer.ID.String(): findCandidate(secretary, "Dan").ID.String(),
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)

	var result domain.CastResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.CastCount)
	require.Len(t, result.Rejected(), 1)
	assert.Equal(t, treasurer.ID, result.Rejected()[0].PositionID)
	assert.Equal(t, domain.ReasonInvalidCandidateForPosition, result.Rejected()[0].Reason)

	var count int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM ballots WHERE election_id = $1", election.ID).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestConcurrentDuplicateBallots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, adminToken := app.createUserAndToken(t, domain.RoleAdmin)
	voterID, _ := app.createUserAndToken(t, domain.RoleVoter)

	election := app.createElection(t, adminToken, map[string][]string{
		"President": {"Alice", "Bob"},
	})
	president := findPosition(election, "President")

	const n = 20
	var wg sync.WaitGroup
	outcomes := make([]domain.PositionOutcome, n)
	errs := make([]error, n)
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res, err := app.Votes.CastBallots(context.Background(), ports.CastInput{
				VoterID:    voterID,
				ElectionID: election.ID,
				Selections: map[uuid.UUID]uuid.UUID{president.ID: president.Candidates[i%2].ID},
			})
			if err != nil {
				errs[i] = err
				return
			}
			outcomes[i] = res.Outcomes[0]
		}(i)
	}
	close(start)
	wg.Wait()

	accepted := 0
	for i := range outcomes {
		require.NoError(t, errs[i])
		if outcomes[i].Status == domain.OutcomeAccepted {
			accepted++
			continue
		}
		assert.Equal(t, domain.ReasonDuplicateVote, outcomes[i].Reason)
	}
	assert.Equal(t, 1, accepted)

	var ballots, audits int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM ballots WHERE voter_id = $1", voterID).Scan(&ballots))
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM audit_entries WHERE actor_id = $1 AND action = 'VOTE'", voterID).Scan(&audits))
	assert.Equal(t, 1, ballots)
	assert.Equal(t, 1, audits)
}

func TestExportRequiresRole(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, adminToken := app.createUserAndToken(t, domain.RoleAdmin)
	_, voterToken := app.createUserAndToken(t, domain.RoleVoter)
	_, officerToken := app.createUserAndToken(t, domain.RoleTallyOfficer)

	election := app.createElection(t, adminToken, map[string][]string{"President": {"Alice"}})
	path := fmt.Sprintf("/api/elections/%s/results.pdf", election.ID)

	resp := app.request(t, http.MethodGet, path, voterToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = app.request(t, http.MethodGet, path, officerToken, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}
