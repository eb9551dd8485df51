// Package sqlitestorage records patrol data in an in-memory SQLite
// database. All persistence logic lives in the embedded GORM backend;
// this package only provisions the memory DB and snapshots it to disk
// on an interval with VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/subcom/fleet/internal/database"
	"github.com/subcom/fleet/internal/logging"
	"github.com/subcom/fleet/internal/patrol"
	gormstorage "github.com/subcom/fleet/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // target for periodic VACUUM INTO snapshots
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db   *gorm.DB
	cfg  Config
	log  *logging.SlogManager
	done chan struct{}
}

// New provisions an in-memory SQLite database and builds a backend
// around it.
func New(cfg Config, logManager *logging.SlogManager, patrolCtx *patrol.Context) (*Backend, error) {
	db, err := database.GetSqliteDBStandalone("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:            db,
			LogManager:    logManager,
			PatrolContext: patrolCtx,
		}),
		db:   db,
		cfg:  cfg,
		log:  logManager,
		done: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and, when a dump path and
// interval are configured, starts the snapshot goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		go b.snapshotLoop()
	}
	return nil
}

// Close stops the snapshot goroutine and closes the embedded backend.
func (b *Backend) Close() error {
	close(b.done)
	return b.Backend.Close()
}

// snapshotLoop dumps the memory database to disk on every tick.
// VACUUM INTO takes a consistent point-in-time copy, so writes are
// never paused.
func (b *Backend) snapshotLoop() {
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.snapshotOnce()
		}
	}
}

func (b *Backend) snapshotOnce() {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		b.log.Logger().Error("Error dumping to disk", "error", err)
		return
	}
	b.log.Logger().Debug("Dumped to disk", "duration", time.Since(start))
}
