package main

import (
	"errors"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/dhaba-pos/api/internal/config"
)

// Usage: migrate [up|down]. Down rolls back a single migration.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	m, err := migrate.New("file://migrations", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open migrations")
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	default:
		log.Fatal().Str("direction", direction).Msg("unknown direction, want up or down")
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("no migrations to apply")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}
	log.Info().Str("direction", direction).Msg("migrations applied")
}
