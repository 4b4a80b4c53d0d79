package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"habitvault/internal/shared"
	"habitvault/internal/store"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var backupStore store.Store
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err == nil {
			backupStore = store.NewSQLiteStore(db)
			defer db.Close()
		} else {
			logger.Warn("migrations failed, falling back to in-memory store", "error", err)
			db.Close()
		}
	} else {
		logger.Warn("database unavailable, falling back to in-memory store", "error", err)
	}
	if backupStore == nil {
		backupStore = store.NewMemoryStore()
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Store:  backupStore,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "habitvault",
		Usage:    "Back up and restore Habitica tasks between accounts",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
