package main

import (
	"fmt"
	"io/fs"
	"os"

	migrations "github.com/intromesh/intromesh/db"
	"github.com/intromesh/intromesh/internal/config"
	"github.com/intromesh/intromesh/internal/db"
	"github.com/intromesh/intromesh/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	var args []string
	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	migrationsFS, err := fs.Sub(migrations.MigrationsFS, "migrations")
	if err != nil {
		logger.L.Error("migration fs", "error", err)
		os.Exit(1)
	}

	if err := db.RunMigrate(logger.L, cfg.Postgres, migrationsFS, command, args); err != nil {
		logger.L.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}
