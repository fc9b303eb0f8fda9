package domain

import "github.com/google/uuid"

type CandidateResult struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	Party       string    `json:"party"`
	PhotoURL    string    `json:"photo_url"`
	VoteCount   int64     `json:"vote_count"`
	Percentage  float64   `json:"percentage"`
}

// PositionResult is the tally for one position. TotalVotes always equals the
// sum of Candidates[i].VoteCount. WinnerID is nil when nobody received a vote.
type PositionResult struct {
	PositionID    uuid.UUID         `json:"position_id"`
	PositionTitle string            `json:"position_title"`
	Candidates    []CandidateResult `json:"candidates"`
	TotalVotes    int64             `json:"total_votes"`
	WinnerID      *uuid.UUID        `json:"winner_id"`
}

// Winner returns the winning candidate result, if any.
func (p *PositionResult) Winner() *CandidateResult {
	if p.WinnerID == nil || len(p.Candidates) == 0 {
		return nil
	}
	return &p.Candidates[0]
}

type ElectionResults struct {
	Election  Election         `json:"election"`
	Positions []PositionResult `json:"positions"`
}

// TallySnapshot is the raw read the tally engine ranks: positions with their
// active candidates and the per-candidate ballot counts, read atomically.
type TallySnapshot struct {
	Election   Election
	Positions  []Position
	VoteCounts map[uuid.UUID]int64
}

type LiveCandidate struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Votes int64  `json:"votes"`
}

type LivePosition struct {
	Position   string          `json:"position"`
	Candidates []LiveCandidate `json:"candidates"`
}

type LiveResults struct {
	Election  string         `json:"election"`
	Positions []LivePosition `json:"positions"`
}
