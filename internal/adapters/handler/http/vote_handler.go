package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

// castRequest maps position ids to the chosen candidate id. An empty
// candidate id leaves the position blank.
type castRequest struct {
	Selections map[string]string `json:"selections"`
}

// CastBallots godoc
// @Summary      Casts the caller's ballots for an election
// @Description  Each position is handled independently. 201 means every submitted position was recorded and audited, 207 means at least one position was rejected or is awaiting its audit entry.
// @Tags         ballots
// @Accept       json
// @Produce      json
// @Success      201
// @Success      207
// @Failure      404
// @Failure      422
// @Router       /api/elections/{id}/ballots [post]
func (h *VoteHandler) CastBallots(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, domain.ErrInvalidElectionID)
		return
	}

	var req castRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	userID, ok := userFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	selections := make(map[uuid.UUID]uuid.UUID, len(req.Selections))
	for positionStr, candidateStr := range req.Selections {
		positionID, err := uuid.Parse(positionStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid position id "+positionStr)
			return
		}
		if candidateStr == "" {
			continue
		}
		candidateID, err := uuid.Parse(candidateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid candidate id "+candidateStr)
			return
		}
		selections[positionID] = candidateID
	}

	result, err := h.service.CastBallots(r.Context(), ports.CastInput{
		VoterID:       userID,
		ElectionID:    electionID,
		Selections:    selections,
		OriginAddress: clientIP(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if result.Empty() {
		writeError(w, http.StatusUnprocessableEntity, domain.ReasonNoSelections, "no votes were cast")
		return
	}

	status := http.StatusCreated
	if !result.Complete() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

func (h *VoteHandler) MyBallots(w http.ResponseWriter, r *http.Request) {
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

	ballots, err := h.service.MyBallots(r.Context(), userID, electionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if ballots == nil {
		ballots = []domain.Ballot{}
	}
	writeJSON(w, http.StatusOK, ballots)
}
