package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

func TestComputeResults_NoBallots(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)

	results, err := e.tally.ComputeResults(context.Background(), f.electionID())
	require.NoError(t, err)
	require.Len(t, results.Positions, 3)

	// Positions come back ordered by title.
	assert.Equal(t, "President", results.Positions[0].PositionTitle)
	assert.Equal(t, "Secretary", results.Positions[1].PositionTitle)
	assert.Equal(t, "Treasurer", results.Positions[2].PositionTitle)

	for _, p := range results.Positions {
		assert.Zero(t, p.TotalVotes)
		assert.Nil(t, p.WinnerID)
		assert.Nil(t, p.Winner())
		require.Len(t, p.Candidates, 2)
		for _, c := range p.Candidates {
			assert.Zero(t, c.Percentage)
			assert.Equal(t, domain.DefaultPhotoURL, c.PhotoURL)
		}
		// Ties, including all-zero, order by candidate id.
		assert.Negative(t, compareIDs(p.Candidates[0].CandidateID, p.Candidates[1].CandidateID))
	}
}

func TestComputeResults_RankingAndPercentages(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)

	for i := 0; i < 2; i++ {
		e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Bob")})
	}
	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Alice")})

	results, err := e.tally.ComputeResults(context.Background(), f.electionID())
	require.NoError(t, err)

	president := findPosition(t, results, "President")
	assert.Equal(t, int64(3), president.TotalVotes)
	require.Len(t, president.Candidates, 2)

	assert.Equal(t, "Bob", president.Candidates[0].Name)
	assert.Equal(t, int64(2), president.Candidates[0].VoteCount)
	assert.Equal(t, 66.67, president.Candidates[0].Percentage)

	assert.Equal(t, "Alice", president.Candidates[1].Name)
	assert.Equal(t, int64(1), president.Candidates[1].VoteCount)
	assert.Equal(t, 33.33, president.Candidates[1].Percentage)

	require.NotNil(t, president.Winner())
	assert.Equal(t, "Bob", president.Winner().Name)
	assert.Equal(t, "Red", president.Winner().Party)

	secretary := findPosition(t, results, "Secretary")
	assert.Zero(t, secretary.TotalVotes)
	assert.Nil(t, secretary.WinnerID)
}

func TestComputeResults_TieBrokenByCandidateID(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)

	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Alice")})
	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Bob")})

	results, err := e.tally.ComputeResults(context.Background(), f.electionID())
	require.NoError(t, err)

	president := findPosition(t, results, "President")
	require.Len(t, president.Candidates, 2)
	first, second := president.Candidates[0], president.Candidates[1]
	assert.Equal(t, first.VoteCount, second.VoteCount)
	assert.Equal(t, 50.0, first.Percentage)
	assert.Negative(t, compareIDs(first.CandidateID, second.CandidateID))
	require.NotNil(t, president.WinnerID)
	assert.Equal(t, first.CandidateID, *president.WinnerID)
}

func TestComputeResults_Deterministic(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)

	for i := 0; i < 5; i++ {
		e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{
			f.pos("President"): f.cand("Alice"),
			f.pos("Secretary"): f.cand("Dan"),
		})
	}

	first, err := e.tally.ComputeResults(context.Background(), f.electionID())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := e.tally.ComputeResults(context.Background(), f.electionID())
		require.NoError(t, err)
		assert.Equal(t, first.Positions, again.Positions)
	}
}

func TestComputeResults_InactiveCandidateExcluded(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)

	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Alice")})
	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Bob")})
	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{f.pos("President"): f.cand("Bob")})

	e.store.SetCandidateActive(f.cand("Bob"), false)

	results, err := e.tally.ComputeResults(context.Background(), f.electionID())
	require.NoError(t, err)

	president := findPosition(t, results, "President")
	require.Len(t, president.Candidates, 1)
	assert.Equal(t, "Alice", president.Candidates[0].Name)
	assert.Equal(t, int64(1), president.TotalVotes)
	assert.Equal(t, 100.0, president.Candidates[0].Percentage)
}

func TestComputeResults_ConsistentUnderConcurrentCasts(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)

	const voters = 50
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidate := f.cand("Alice")
			if i%3 == 0 {
				candidate = f.cand("Bob")
			}
			_, _ = e.votes.CastBallots(context.Background(), ports.CastInput{
				VoterID:    uuid.New(),
				ElectionID: f.electionID(),
				Selections: map[uuid.UUID]uuid.UUID{f.pos("President"): candidate},
			})
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var last int64
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}

		results, err := e.tally.ComputeResults(context.Background(), f.electionID())
		require.NoError(t, err)
		for _, p := range results.Positions {
			var sum int64
			for _, c := range p.Candidates {
				sum += c.VoteCount
			}
			require.Equal(t, p.TotalVotes, sum)
		}
		total := findPosition(t, results, "President").TotalVotes
		require.GreaterOrEqual(t, total, last)
		last = total
	}

	assert.Equal(t, int64(voters), last)
}

func TestComputeResults_UnknownElection(t *testing.T) {
	e := newEnv(t)

	_, err := e.tally.ComputeResults(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrElectionNotFound)
}

func TestLiveResults(t *testing.T) {
	e := newEnv(t)
	f := e.seed(t)

	e.cast(t, uuid.New(), f, map[uuid.UUID]uuid.UUID{
		f.pos("President"): f.cand("Alice"),
		f.pos("Treasurer"): f.cand("Frank"),
	})

	live, err := e.tally.LiveResults(context.Background(), f.electionID())
	require.NoError(t, err)

	assert.Equal(t, "Student Council", live.Election)
	require.Len(t, live.Positions, 3)
	assert.Equal(t, "President", live.Positions[0].Position)
	require.Len(t, live.Positions[0].Candidates, 2)
	assert.Equal(t, domain.LiveCandidate{Name: "Alice", Party: "Blue", Votes: 1}, live.Positions[0].Candidates[0])
	assert.Equal(t, int64(0), live.Positions[0].Candidates[1].Votes)

	assert.Equal(t, "Treasurer", live.Positions[2].Position)
	assert.Equal(t, "Frank", live.Positions[2].Candidates[0].Name)
}
