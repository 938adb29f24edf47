package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hcissey0/lecture-notes-app/internal/config"
	"github.com/hcissey0/lecture-notes-app/internal/db"
	"github.com/hcissey0/lecture-notes-app/internal/logger"
)

// openDB loads the service configuration and opens its database. The caller
// closes the returned handle with db.Close.
func openDB() (*config.Config, *sqlx.DB, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), "")

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, database, nil
}
