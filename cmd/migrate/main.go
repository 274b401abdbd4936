// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate up        применить все новые миграции
//	migrate down [n]  откатить n миграций (по умолчанию 1)
//	migrate version   показать текущую версию схемы
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Dosada05/mytournaments/config"
	"github.com/Dosada05/mytournaments/db"
	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up | down [n] | version")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	conn, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBConnTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	m, err := db.NewMigrator(conn, cfg.DatabaseDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrator")
	}

	if err := runCommand(m, os.Args[1], os.Args[2:]); err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("migration failed")
		conn.Close()
		os.Exit(1)
	}
}

func runCommand(m *migrate.Migrate, cmd string, args []string) error {
	switch cmd {
	case "up":
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info().Msg("schema is up to date")
				return nil
			}
			return err
		}
		log.Info().Msg("migrations applied")
	case "down":
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil {
			return err
		}
		log.Info().Int("steps", steps).Msg("migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
