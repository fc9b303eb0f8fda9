package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/adapters/export"
	"github.com/vncsmyrnk/election/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/election/internal/config"
	"github.com/vncsmyrnk/election/internal/core/services"
	"github.com/vncsmyrnk/election/internal/logging"
)

// Writes an election's results as CSV or PDF, for offline publication.
func main() {
	pg, err := config.LoadPostgres()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	var electionStr, format, outPath string
	flag.StringVar(&pg.Host, "db-host", pg.Host, "Database host")
	flag.StringVar(&pg.Port, "db-port", pg.Port, "Database port")
	flag.StringVar(&pg.User, "db-user", pg.User, "Database user")
	flag.StringVar(&pg.Password, "db-pass", pg.Password, "Database password")
	flag.StringVar(&pg.DB, "db-name", pg.DB, "Database name")
	flag.StringVar(&electionStr, "election", "", "Election id")
	flag.StringVar(&format, "format", "csv", "Output format: csv or pdf")
	flag.StringVar(&outPath, "out", "", "Output file (defaults to <title>_results.<format>)")
	flag.Parse()

	log, err := logging.New("info", "text", os.Stderr)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build logger")
	}

	electionID, err := uuid.Parse(electionStr)
	if err != nil {
		log.WithError(err).Fatal("invalid -election")
	}

	render := export.WriteCSV
	switch format {
	case "csv":
	case "pdf":
		render = export.WritePDF
	default:
		log.Fatalf("unsupported format %q", format)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, pg.ConnString(), 2)
	if err != nil {
		log.WithError(err).Fatal("failed to connect")
	}
	defer db.Close()

	tallySvc := services.NewTallyService(postgres.NewTallyRepository(db), log)
	results, err := tallySvc.ComputeResults(ctx, electionID)
	if err != nil {
		log.WithError(err).Fatal("failed to compute results")
	}

	if outPath == "" {
		outPath = export.Filename(results, format)
	}
	f, err := os.Create(outPath)
	if err != nil {
		log.WithError(err).Fatal("failed to create output file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := render(w, results, time.Now()); err != nil {
		log.WithError(err).Fatal("failed to render results")
	}
	if err := w.Flush(); err != nil {
		log.WithError(err).Fatal("failed to write output file")
	}

	log.WithFields(logrus.Fields{
		"election_id": electionID,
		"positions":   len(results.Positions),
		"file":        outPath,
	}).Info("results exported")
}
