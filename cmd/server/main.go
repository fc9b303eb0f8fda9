package main

import (
	"context"
	"database/sql"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/adapters/handler/http"
	"github.com/vncsmyrnk/election/internal/adapters/oauth/google"
	"github.com/vncsmyrnk/election/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/election/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/election/internal/config"
	"github.com/vncsmyrnk/election/internal/core/ports"
	"github.com/vncsmyrnk/election/internal/core/services"
	"github.com/vncsmyrnk/election/internal/logging"
)

type repositories struct {
	catalog ports.CatalogRepository
	ballots ports.BallotRepository
	audit   ports.AuditRepository
	tally   ports.TallyRepository
	users   ports.UserRepository
	auth    ports.AuthRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, db, err := openRepositories(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	if db != nil {
		defer db.Close()
	}

	auditSvc := services.NewAuditService(repos.audit, log)
	electionSvc := services.NewElectionService(repos.catalog, log)
	eligibilitySvc := services.NewEligibilityService(repos.catalog, repos.ballots)
	voteSvc := services.NewVoteService(repos.catalog, repos.ballots, auditSvc, log)
	tallySvc := services.NewTallyService(repos.tally, log)
	userSvc := services.NewUserService(repos.users, repos.auth)
	authSvc := services.NewAuthService(repos.users, repos.auth, auditSvc, google.NewVerifier(), cfg.JWTSecret, cfg.GoogleClientID, log)

	handler := http.NewHandler(http.Handlers{
		Election: http.NewElectionHandler(electionSvc, eligibilitySvc, log),
		Vote:     http.NewVoteHandler(voteSvc),
		Results:  http.NewResultsHandler(tallySvc, log),
		Audit:    http.NewAuditHandler(auditSvc),
		Auth:     http.NewAuthHandler(authSvc, cfg.RedirectURL, cfg.CookieDomain, cfg.SameSite()),
		User:     http.NewUserHandler(userSvc),
	}, []byte(cfg.JWTSecret), log)

	server := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("shutdown failed")
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, *sql.DB, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		store := memory.NewStore()
		return &repositories{
			catalog: store.Catalog(),
			ballots: store.Ballots(),
			audit:   store.Audit(),
			tally:   store.Tally(),
			users:   store.Users(),
			auth:    store.Auth(),
		}, nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Postgres.ConnString(), cfg.Postgres.MaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	return &repositories{
		catalog: postgres.NewCatalogRepository(db),
		ballots: postgres.NewBallotRepository(db),
		audit:   postgres.NewAuditRepository(db),
		tally:   postgres.NewTallyRepository(db),
		users:   postgres.NewUserRepository(db),
		auth:    postgres.NewAuthRepository(db),
	}, db, nil
}
