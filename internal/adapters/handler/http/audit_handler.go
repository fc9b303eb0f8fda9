package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

const auditPageSize = 100

type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

// ListAudit godoc
// @Summary      Lists audit entries
// @Description  Filters by actor, action and an inclusive RFC 3339 time range. Pages hold 100 entries.
// @Tags         audit
// @Produce      json
// @Param        actor   query  string  false  "actor user id"
// @Param        action  query  string  false  "LOGIN, LOGOUT or VOTE"
// @Param        from    query  string  false  "RFC 3339 lower bound"
// @Param        to      query  string  false  "RFC 3339 upper bound"
// @Param        page    query  int     false  "page number, starting at 1"
// @Success      200
// @Failure      400
// @Failure      403
// @Router       /api/audit [get]
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		Action: domain.AuditAction(q.Get("action")),
		Limit:  auditPageSize,
	}

	if v := q.Get("actor"); v != "" {
		actorID, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid actor id")
			return
		}
		filter.ActorID = &actorID
	}
	for param, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid "+param+" timestamp")
			return
		}
		*dst = &t
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid page")
			return
		}
		filter.Offset = (page - 1) * auditPageSize
	}

	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
