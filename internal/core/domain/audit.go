package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditLogin  AuditAction = "LOGIN"
	AuditLogout AuditAction = "LOGOUT"
	AuditVote   AuditAction = "VOTE"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditLogin, AuditLogout, AuditVote:
		return true
	}
	return false
}

// AuditEntry is an immutable record of a security-relevant event. ActorID is
// nil when the user was removed after the event.
type AuditEntry struct {
	ID            uuid.UUID   `json:"id"`
	ActorID       *uuid.UUID  `json:"actor_id,omitempty"`
	Action        AuditAction `json:"action"`
	Details       string      `json:"details"`
	CreatedAt     time.Time   `json:"created_at"`
	OriginAddress *string     `json:"origin_address,omitempty"`
	BallotID      *uuid.UUID  `json:"ballot_id,omitempty"`
}

type AuditFilter struct {
	ActorID *uuid.UUID
	Action  AuditAction
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}
