package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ballot is one voter's choice for one position. Rows are append-only.
type Ballot struct {
	ID          uuid.UUID `json:"id"`
	VoterID     uuid.UUID `json:"voter_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	PositionID  uuid.UUID `json:"position_id"`
	ElectionID  uuid.UUID `json:"election_id"`
	CreatedAt   time.Time `json:"created_at"`
	Fingerprint string    `json:"fingerprint"`
}

type OutcomeStatus string

const (
	OutcomeAccepted OutcomeStatus = "ACCEPTED"
	OutcomeRejected OutcomeStatus = "REJECTED"
)

// PositionOutcome is the result of one selection inside a cast request.
type PositionOutcome struct {
	PositionID   uuid.UUID     `json:"position_id"`
	CandidateID  uuid.UUID     `json:"candidate_id"`
	Status       OutcomeStatus `json:"status"`
	Reason       string        `json:"reason,omitempty"`
	BallotID     *uuid.UUID    `json:"ballot_id,omitempty"`
	Fingerprint  string        `json:"fingerprint,omitempty"`
	AuditPending bool          `json:"audit_pending,omitempty"`
}

type CastResult struct {
	ElectionID   uuid.UUID         `json:"election_id"`
	CastCount    int               `json:"cast_count"`
	AuditPending int               `json:"audit_pending"`
	Outcomes     []PositionOutcome `json:"outcomes"`
}

// Rejected lists the outcomes that did not produce a ballot.
func (r *CastResult) Rejected() []PositionOutcome {
	var rejected []PositionOutcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeRejected {
			rejected = append(rejected, o)
		}
	}
	return rejected
}

// Empty is true when the submission named no candidate at all.
func (r *CastResult) Empty() bool {
	return len(r.Outcomes) == 0
}

// Complete is true when at least one position was submitted and every one
// of them was accepted and audited.
func (r *CastResult) Complete() bool {
	return !r.Empty() && r.CastCount == len(r.Outcomes) && r.AuditPending == 0
}

type Eligibility struct {
	Allowed  bool      `json:"allowed"`
	Reason   string    `json:"reason,omitempty"`
	StartsAt time.Time `json:"starts_at,omitempty"`
	EndsAt   time.Time `json:"ends_at,omitempty"`
}
