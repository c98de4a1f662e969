// Package main applies database migrations.
//
// Usage:
//
//	migrate up
//	migrate down [steps]
//	migrate version
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"tudogestao/internal/config"
	"tudogestao/migrations"
	"tudogestao/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: !cfg.IsProduction()})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	m, err := migrations.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("failed to open migrations", "error", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warnw("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	switch cmd {
	case "up":
		err = migrations.Up(m)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps <= 0 {
				log.Fatalw("invalid step count", "value", os.Args[2])
			}
		}
		err = migrations.Down(m, steps)
	case "version":
	default:
		log.Fatalw("unknown command", "command", cmd)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalw("migration failed", "command", cmd, "error", err)
	}

	version, dirty, err := migrations.Version(m)
	if err != nil {
		log.Fatalw("failed to read version", "error", err)
	}
	log.Infow("migrations", "command", cmd, "version", version, "dirty", dirty)
}
