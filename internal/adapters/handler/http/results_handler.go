package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/adapters/export"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
)

type ResultsHandler struct {
	service ports.TallyService
	now     func() time.Time
	log     logrus.FieldLogger
}

func NewResultsHandler(service ports.TallyService, log logrus.FieldLogger) *ResultsHandler {
	return &ResultsHandler{
		service: service,
		now:     time.Now,
		log:     log,
	}
}

func (h *ResultsHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, ok := h.compute(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Live godoc
// @Summary      Compact per-position vote counts for dashboard polling
// @Tags         results
// @Produce      json
// @Success      200
// @Router       /api/elections/{id}/results/live [get]
func (h *ResultsHandler) Live(w http.ResponseWriter, r *http.Request) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, domain.ErrInvalidElectionID)
		return
	}
	live, err := h.service.LiveResults(r.Context(), electionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, live)
}

func (h *ResultsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv", export.WriteCSV)
}

func (h *ResultsHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "pdf", "application/pdf", export.WritePDF)
}

type renderFunc func(w io.Writer, results *domain.ElectionResults, generatedAt time.Time) error

// export renders into memory first so a formatter failure still yields a
// clean error response.
func (h *ResultsHandler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, render renderFunc) {
	results, ok := h.compute(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, results, h.now()); err != nil {
		h.log.WithError(err).WithField("format", ext).Error("failed to export results")
		writeError(w, http.StatusInternalServerError, domain.ReasonInternal, "failed to export results")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(results, ext)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *ResultsHandler) compute(w http.ResponseWriter, r *http.Request) (*domain.ElectionResults, bool) {
	electionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, domain.ErrInvalidElectionID)
		return nil, false
	}
	results, err := h.service.ComputeResults(r.Context(), electionID)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return results, true
}
