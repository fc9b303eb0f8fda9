package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/election/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/election/internal/config"
)

// Applies every embedded migration, or only those whose file name contains
// the given argument.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found")
	}

	var pg config.Postgres
	flag.StringVar(&pg.Host, "db-host", envOr("POSTGRES_HOST", "localhost"), "Database host")
	flag.StringVar(&pg.Port, "db-port", envOr("POSTGRES_PORT", "5432"), "Database port")
	flag.StringVar(&pg.User, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	flag.StringVar(&pg.Password, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	flag.StringVar(&pg.DB, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	flag.StringVar(&pg.SSLMode, "db-sslmode", envOr("POSTGRES_SSLMODE", "disable"), "Database SSL mode")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, pg.ConnString(), 1)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect")
	}
	defer db.Close()

	names, err := postgres.MigrationNames()
	if err != nil {
		logrus.WithError(err).Fatal("failed to list migrations")
	}

	filter := flag.Arg(0)
	applied := 0
	for _, name := range names {
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		if err := postgres.ApplyMigration(ctx, db, name); err != nil {
			logrus.WithError(err).Fatal("migration failed")
		}
		logrus.WithField("migration", name).Info("migration applied")
		applied++
	}

	if applied == 0 {
		logrus.Fatalf("no migration matches %q", filter)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
