// Package gormstorage implements the storage.Backend interface on top of
// a GORM database handle. SQLite and Postgres backends compose it and
// only add their connection-specific concerns.
package gormstorage

import (
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/subcom/fleet/internal/logging"
	"github.com/subcom/fleet/internal/model"
	"github.com/subcom/fleet/internal/model/convert"
	"github.com/subcom/fleet/internal/patrol"
	"github.com/subcom/fleet/pkg/core"
)

// Dependencies holds everything the GORM backend needs.
type Dependencies struct {
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	PatrolContext *patrol.Context
}

// Backend writes patrol data directly to a GORM database.
type Backend struct {
	db        *gorm.DB
	log       *logging.SlogManager
	patrolCtx *patrol.Context

	// nanoseconds, updated after every create
	lastWriteDuration atomic.Int64
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		db:        deps.DB,
		log:       deps.LogManager,
		patrolCtx: deps.PatrolContext,
	}
}

// Init migrates the recorder schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartPatrol persists the area and patrol and makes them current.
func (b *Backend) StartPatrol(p *core.Patrol, a *core.Area) error {
	areaModel := convert.CoreToArea(*a)
	if _, err := areaModel.GetOrInsert(b.db); err != nil {
		return fmt.Errorf("failed to upsert area: %w", err)
	}
	a.ID = areaModel.ID

	patrolModel := convert.CoreToPatrol(*p)
	patrolModel.AreaID = areaModel.ID
	if err := b.db.Create(&patrolModel).Error; err != nil {
		return fmt.Errorf("failed to create patrol: %w", err)
	}
	p.ID = patrolModel.ID
	p.AreaID = areaModel.ID

	b.patrolCtx.SetPatrol(&patrolModel, &areaModel)

	b.log.Logger().Info("Patrol started",
		"patrol", patrolModel.Name, "area", areaModel.Name, "id", patrolModel.ID)
	return nil
}

// EndPatrol marks the end of recording. Rows are written as they arrive,
// so there is nothing to flush here.
func (b *Backend) EndPatrol() error {
	b.log.Logger().Info("Patrol ended", "patrol", b.patrolCtx.GetPatrol().Name)
	return nil
}

// AddSubmarine registers a new submarine under the current patrol.
func (b *Backend) AddSubmarine(s *core.Submarine) error {
	sub := convert.CoreToSubmarine(*s)
	sub.PatrolID = b.patrolCtx.GetPatrol().ID
	if err := b.timedCreate(&sub); err != nil {
		return fmt.Errorf("failed to create submarine: %w", err)
	}
	s.ID = sub.ID
	return nil
}

// RecordMovement records an audited move.
func (b *Backend) RecordMovement(m *core.MovementRecord) error {
	rec := convert.CoreToMovementRecord(*m)
	rec.PatrolID = b.patrolCtx.GetPatrol().ID
	if err := b.timedCreate(&rec); err != nil {
		return fmt.Errorf("failed to create movement record: %w", err)
	}
	m.ID = rec.ID
	return nil
}

// RecordCollision records a detected shared cell.
func (b *Backend) RecordCollision(c *core.CollisionEvent) error {
	rec := convert.CoreToCollisionEvent(*c)
	rec.PatrolID = b.patrolCtx.GetPatrol().ID
	if err := b.timedCreate(&rec); err != nil {
		return fmt.Errorf("failed to create collision event: %w", err)
	}
	c.ID = rec.ID
	return nil
}

// RecordTorpedoOrder records a torpedo clearance check.
func (b *Backend) RecordTorpedoOrder(o *core.TorpedoOrder) error {
	rec := convert.CoreToTorpedoOrder(*o)
	rec.PatrolID = b.patrolCtx.GetPatrol().ID
	if err := b.timedCreate(&rec); err != nil {
		return fmt.Errorf("failed to create torpedo order: %w", err)
	}
	o.ID = rec.ID
	return nil
}

// RecordSensorFaults records an aggregated sensor sweep.
func (b *Backend) RecordSensorFaults(r *core.SensorFaultReport) error {
	rec := convert.CoreToSensorFaultReport(*r)
	rec.PatrolID = b.patrolCtx.GetPatrol().ID
	if err := b.timedCreate(&rec); err != nil {
		return fmt.Errorf("failed to create sensor fault report: %w", err)
	}
	r.ID = rec.ID
	return nil
}

// RecordNukeAttempt records a launch authorization check.
func (b *Backend) RecordNukeAttempt(n *core.NukeAttempt) error {
	rec := convert.CoreToNukeAttempt(*n)
	rec.PatrolID = b.patrolCtx.GetPatrol().ID
	if err := b.timedCreate(&rec); err != nil {
		return fmt.Errorf("failed to create nuke attempt: %w", err)
	}
	n.ID = rec.ID
	return nil
}

// DB exposes the underlying handle for components that persist their
// own rows, like the status monitor.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// GetLastDBWriteDuration returns how long the most recent create took.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return time.Duration(b.lastWriteDuration.Load())
}

func (b *Backend) timedCreate(value any) error {
	start := time.Now()
	err := b.db.Create(value).Error
	b.lastWriteDuration.Store(int64(time.Since(start)))
	return err
}
