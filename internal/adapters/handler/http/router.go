package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/core/domain"
)

// Handlers groups the HTTP handlers mounted by NewHandler. AuthHandler and
// UserHandler may be nil when the identity routes are served elsewhere.
type Handlers struct {
	Election *ElectionHandler
	Vote     *VoteHandler
	Results  *ResultsHandler
	Audit    *AuditHandler
	Auth     *AuthHandler
	User     *UserHandler
}

func NewHandler(h Handlers, jwtSecret []byte, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	if h.Auth != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/google/callback", h.Auth.GoogleCallback)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(jwtSecret))

			if h.User != nil {
				r.Get("/me", h.User.GetMe)
			}

			r.Route("/elections", func(r chi.Router) {
				r.Get("/", h.Election.ListElections)
				r.With(RequireRole(domain.ElectionManagers...)).Post("/", h.Election.CreateElection)
				r.With(RequireRole(domain.ResultsOfficials...)).Get("/all", h.Election.ListAllElections)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Election.GetElection)
					r.Get("/eligibility", h.Election.Eligibility)
					r.Post("/ballots", h.Vote.CastBallots)
					r.Get("/ballots/mine", h.Vote.MyBallots)
					r.Get("/results", h.Results.Results)
					r.Get("/results/live", h.Results.Live)

					r.Group(func(r chi.Router) {
						r.Use(RequireRole(domain.ResultsOfficials...))
						r.Get("/results.csv", h.Results.ExportCSV)
						r.Get("/results.pdf", h.Results.ExportPDF)
					})
				})
			})

			r.With(RequireRole(domain.ResultsOfficials...)).Get("/audit", h.Audit.ListAudit)
		})
	})

	return r
}
