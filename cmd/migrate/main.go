package main

import (
	"database/sql"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

// migrationDir holds the notifier schema: twitch_tokens, chat_settings and
// chat_live_messages.
const migrationDir = "./db/migrations"

func main() {
	// .env is optional here, DB_CONN may come from the environment directly
	_ = godotenv.Load()

	var (
		downFlag = flag.Bool("down", false, "Roll the notifier schema back instead of migrating up")
		dbConn   = os.Getenv("DB_CONN")
	)
	flag.Parse()

	if dbConn == "" {
		logrus.Fatal("DB_CONN environment variable is required")
	}

	if err := runMigrations("postgres", dbConn, *downFlag); err != nil {
		logrus.Fatalf("could not migrate the notifier schema: %+v", err)
	}
}

func runMigrations(dialect, creds string, migrateDown bool) error {
	db, err := sql.Open(dialect, creds)
	if err != nil {
		return errors.Errorf("cannot open %s db connection: %v", dialect, err)
	}
	defer db.Close()

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Errorf("cannot set %s dialect: %v", dialect, err)
	}

	if migrateDown {
		if err := goose.Down(db, migrationDir); err != nil {
			return errors.Errorf("cannot down %s migrations: %v", dialect, err)
		}
		logrus.Info("notifier schema rolled back")
		return nil
	}

	if err := goose.Up(db, migrationDir, goose.WithAllowMissing()); err != nil {
		return errors.Errorf("cannot up %s migrations: %v", dialect, err)
	}
	logrus.Info("notifier schema is up to date")
	return nil
}
