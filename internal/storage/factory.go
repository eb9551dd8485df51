// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/subcom/fleet/internal/config"
	"github.com/subcom/fleet/internal/logging"
	"github.com/subcom/fleet/internal/patrol"
	postgresstorage "github.com/subcom/fleet/internal/storage/postgres"
	sqlitestorage "github.com/subcom/fleet/internal/storage/sqlite"

	"github.com/subcom/fleet/internal/storage/memory"
	"github.com/subcom/fleet/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, logManager *logging.SlogManager, patrolCtx *patrol.Context) (Backend, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpPath:     cfg.SQLite.DumpPath,
		}, logManager, patrolCtx)
	case "postgres":
		return postgresstorage.New(logManager, patrolCtx)
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    cfg.Websocket.URL,
			Secret: cfg.Websocket.Secret,
		}, logManager.Logger()), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
