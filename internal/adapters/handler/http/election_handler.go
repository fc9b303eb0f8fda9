package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

const timeFormat = time.RFC3339

type ElectionHandler struct {
	service     ports.ElectionService
	eligibility ports.EligibilityService
	now         func() time.Time
	log         logrus.FieldLogger
}

func NewElectionHandler(service ports.ElectionService, eligibility ports.EligibilityService, log logrus.FieldLogger) *ElectionHandler {
	return &ElectionHandler{
		service:     service,
		eligibility: eligibility,
		now:         time.Now,
		log:         log,
	}
}

type createCandidateRequest struct {
	Name      string  `json:"name"`
	Party     string  `json:"party"`
	Manifesto string  `json:"manifesto"`
	PhotoURL  *string `json:"photo_url"`
}

type createPositionRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	MaxVotes    int                      `json:"max_votes"`
	Candidates  []createCandidateRequest `json:"candidates"`
}

type createElectionRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	StartsAt    time.Time               `json:"starts_at"`
	EndsAt      time.Time               `json:"ends_at"`
	Active      bool                    `json:"active"`
	Positions   []createPositionRequest `json:"positions"`
}

// CreateElection godoc
// @Summary      Creates an election with its positions and candidates
// @Tags         elections
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Failure      403
// @Router       /api/elections [post]
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req createElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	userID, _ := userFromContext(r)
	input := ports.CreateElectionInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Active:      req.Active,
		CreatedBy:   userID,
	}
	for _, p := range req.Positions {
		pos := ports.CreatePositionInput{
			Title:       p.Title,
			Description: p.Description,
			MaxVotes:    p.MaxVotes,
		}
		for _, c := range p.Candidates {
			pos.Candidates = append(pos.Candidates, ports.CreateCandidateInput(c))
		}
		input.Positions = append(input.Positions, pos)
	}

	election, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, election)
}

func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	h.writeElections(w, r, h.service.ListActive)
}

// ListAllElections godoc
// @Summary      Lists every election
// @Description  Includes inactive and ended elections, ordered by start time descending. Used to reach results of past elections.
// @Tags         elections
// @Produce      json
// @Success      200
// @Failure      403
// @Router       /api/elections/all [get]
func (h *ElectionHandler) ListAllElections(w http.ResponseWriter, r *http.Request) {
	h.writeElections(w, r, h.service.ListAll)
}

func (h *ElectionHandler) writeElections(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]*domain.Election, error)) {
	elections, err := list(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if elections == nil {
		elections = []*domain.Election{}
	}
	writeJSON(w, http.StatusOK, elections)
}

func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	election, err := h.service.GetElection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, election)
}

// Eligibility godoc
// @Summary      Reports whether the caller may vote in the election now
// @Tags         elections
// @Produce      json
// @Success      200
// @Router       /api/elections/{id}/eligibility [get]
func (h *ElectionHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, domain.ErrInvalidElectionID)
		return
	}
	userID, ok := userFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	result, err := h.eligibility.CanVote(r.Context(), userID, electionID, h.now())
	if err != nil {
		h.log.WithError(err).WithField("election_id", electionID).Error("eligibility check failed")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
