package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Permissions lists what the holder of a role set may do beyond voting.
type Permissions struct {
	ManageElections bool `json:"manage_elections"`
	ExportResults   bool `json:"export_results"`
	ReadAudit       bool `json:"read_audit"`
	ListAll         bool `json:"list_all_elections"`
}

func PermissionsFor(roles []Role) Permissions {
	return Permissions{
		ManageElections: HasAnyRole(roles, ElectionManagers...),
		ExportResults:   HasAnyRole(roles, ResultsOfficials...),
		ReadAudit:       HasAnyRole(roles, ResultsOfficials...),
		ListAll:         HasAnyRole(roles, ResultsOfficials...),
	}
}

// Profile is the caller's view of their own account.
type Profile struct {
	User
	Roles          []Role      `json:"roles"`
	Permissions    Permissions `json:"permissions"`
	ActiveSessions int         `json:"active_sessions"`
}

type RefreshToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// ActiveAt reports whether the token can still be exchanged at t.
func (t *RefreshToken) ActiveAt(at time.Time) bool {
	return !t.Revoked && !t.ExpiresAt.Before(at)
}
