package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/election/internal/config"
	"github.com/vncsmyrnk/election/internal/core/services"
	"github.com/vncsmyrnk/election/internal/logging"
)

func main() {
	pg, err := config.LoadPostgres()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	var logLevel string
	var timeout time.Duration
	flag.StringVar(&pg.Host, "db-host", pg.Host, "Database host")
	flag.StringVar(&pg.Port, "db-port", pg.Port, "Database port")
	flag.StringVar(&pg.User, "db-user", pg.User, "Database user")
	flag.StringVar(&pg.Password, "db-pass", pg.Password, "Database password")
	flag.StringVar(&pg.DB, "db-name", pg.DB, "Database name")
	flag.StringVar(&logLevel, "log-level", "info", "Log level")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Job timeout")
	flag.Parse()

	log, err := logging.New(logLevel, "json", os.Stdout)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := postgres.Open(ctx, pg.ConnString(), pg.MaxOpenConns)
	if err != nil {
		log.WithError(err).Fatal("failed to connect")
	}
	defer db.Close()

	catalogRepo := postgres.NewCatalogRepository(db)
	ballotRepo := postgres.NewBallotRepository(db)
	auditSvc := services.NewAuditService(postgres.NewAuditRepository(db), log)
	reconcileSvc := services.NewReconcileService(catalogRepo, ballotRepo, auditSvc, log)

	log.Info("starting audit reconciliation")

	report, err := reconcileSvc.Reconcile(ctx)
	if err != nil {
		log.WithError(err).Fatal("audit reconciliation failed")
	}

	log.WithFields(logrus.Fields{
		"elections":  report.Elections,
		"backfilled": report.Backfilled,
	}).Info("audit reconciliation completed")
}
