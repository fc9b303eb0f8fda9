package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/election/internal/core/domain"
)

type errorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	StartsAt string `json:"starts_at,omitempty"`
	EndsAt   string `json:"ends_at,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeDomainError maps core errors to a status and a stable reason code.
func writeDomainError(w http.ResponseWriter, err error) {
	resp := errorResponse{Code: domain.ReasonFor(err), Message: err.Error()}
	status := http.StatusInternalServerError

	var we *domain.WindowError
	switch {
	case errors.As(err, &we):
		status = http.StatusUnprocessableEntity
		resp.Message = we.Err.Error()
		resp.StartsAt = we.StartsAt.Format(timeFormat)
		resp.EndsAt = we.EndsAt.Format(timeFormat)
	case errors.Is(err, domain.ErrElectionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
		resp.Code = "USER_NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidElectionID), errors.Is(err, domain.ErrInvalidElection),
		errors.Is(err, domain.ErrInvalidAuditAction):
		status = http.StatusBadRequest
		resp.Code = "BAD_REQUEST"
	case errors.Is(err, domain.ErrAlreadyVoted), errors.Is(err, domain.ErrDuplicateVote):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
		resp.Message = domain.ErrStorageUnavailable.Error()
	default:
		resp.Message = domain.ErrInternal.Error()
	}

	writeJSON(w, status, resp)
}
