package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPhotoURL is reported for candidates without an uploaded photo.
const DefaultPhotoURL = "/static/images/default_profile.jpg"

type Election struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	Active      bool       `json:"active"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Positions   []Position `json:"positions,omitempty"`
}

// IsOpenAt reports whether now falls inside the inclusive voting window.
func (e *Election) IsOpenAt(now time.Time) bool {
	return !now.Before(e.StartsAt) && !now.After(e.EndsAt)
}

type Position struct {
	ID          uuid.UUID   `json:"id"`
	ElectionID  uuid.UUID   `json:"election_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	MaxVotes    int         `json:"max_votes"`
	Candidates  []Candidate `json:"candidates,omitempty"`
}

type Candidate struct {
	ID         uuid.UUID `json:"id"`
	PositionID uuid.UUID `json:"position_id"`
	Name       string    `json:"name"`
	Party      string    `json:"party"`
	Manifesto  string    `json:"manifesto,omitempty"`
	PhotoURL   *string   `json:"photo_url,omitempty"`
	Active     bool      `json:"active"`
}

// Photo returns the candidate photo reference, falling back to the default.
func (c *Candidate) Photo() string {
	if c.PhotoURL != nil && *c.PhotoURL != "" {
		return *c.PhotoURL
	}
	return DefaultPhotoURL
}
