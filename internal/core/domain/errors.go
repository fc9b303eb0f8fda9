package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrElectionNotFound            = errors.New("election not found")
	ErrInvalidElectionID           = errors.New("invalid election id")
	ErrInvalidElection             = errors.New("invalid election")
	ErrNotYetOpen                  = errors.New("election has not started yet")
	ErrClosed                      = errors.New("election has ended")
	ErrAlreadyVoted                = errors.New("voter has already voted in this election")
	ErrDuplicateVote               = errors.New("a ballot for this position was already cast")
	ErrInvalidCandidateForPosition = errors.New("invalid candidate for position")
	ErrCandidateNotFound           = errors.New("candidate not found")
	ErrInvalidAuditAction          = errors.New("invalid audit action")
	ErrStorageUnavailable          = errors.New("storage unavailable")
	ErrUserNotFound                = errors.New("user not found")
	ErrForbidden                   = errors.New("forbidden")
	ErrInternal                    = errors.New("internal server error")
)

// Reason codes reported to callers. Every rejection carries one of these so
// "already voted", "closed" and "invalid selection" stay distinguishable.
const (
	ReasonElectionNotFound            = "ELECTION_NOT_FOUND"
	ReasonNotYetOpen                  = "NOT_YET_OPEN"
	ReasonClosed                      = "CLOSED"
	ReasonAlreadyVoted                = "ALREADY_VOTED"
	ReasonDuplicateVote               = "DUPLICATE_VOTE"
	ReasonInvalidCandidateForPosition = "INVALID_CANDIDATE_FOR_POSITION"
	ReasonNoSelections                = "NO_SELECTIONS"
	ReasonStorageUnavailable          = "STORAGE_UNAVAILABLE"
	ReasonInternal                    = "INTERNAL"
)

// WindowError reports a cast or eligibility check outside the voting window.
// It unwraps to ErrNotYetOpen or ErrClosed.
type WindowError struct {
	Err      error
	StartsAt time.Time
	EndsAt   time.Time
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("%s (window %s to %s)", e.Err, e.StartsAt.Format(time.RFC3339), e.EndsAt.Format(time.RFC3339))
}

func (e *WindowError) Unwrap() error {
	return e.Err
}

// ReasonFor maps an error to its reason code.
func ReasonFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrElectionNotFound):
		return ReasonElectionNotFound
	case errors.Is(err, ErrNotYetOpen):
		return ReasonNotYetOpen
	case errors.Is(err, ErrClosed):
		return ReasonClosed
	case errors.Is(err, ErrAlreadyVoted):
		return ReasonAlreadyVoted
	case errors.Is(err, ErrDuplicateVote):
		return ReasonDuplicateVote
	case errors.Is(err, ErrInvalidCandidateForPosition):
		return ReasonInvalidCandidateForPosition
	case errors.Is(err, ErrStorageUnavailable):
		return ReasonStorageUnavailable
	default:
		return ReasonInternal
	}
}
