// Package postgresstorage implements the storage.Backend interface on a
// Postgres database. It wraps the GORM backend via composition; the only
// Postgres-specific concern is establishing the connection from viper
// config.
package postgresstorage

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/subcom/fleet/internal/database"
	"github.com/subcom/fleet/internal/logging"
	"github.com/subcom/fleet/internal/patrol"
	gormstorage "github.com/subcom/fleet/internal/storage/gorm"
)

// Backend wraps the GORM backend for Postgres-specific behavior.
type Backend struct {
	*gormstorage.Backend
}

// New creates a new Postgres storage backend. The connection parameters
// come from the db.* viper keys.
func New(logManager *logging.SlogManager, patrolCtx *patrol.Context) (*Backend, error) {
	mgr := database.NewManager(zerolog.New(os.Stderr).With().Timestamp().Logger())
	db, err := mgr.GetPostgresDB()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:            db,
		LogManager:    logManager,
		PatrolContext: patrolCtx,
	})

	return &Backend{Backend: gormBackend}, nil
}
