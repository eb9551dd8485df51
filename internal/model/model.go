package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/subcom/fleet/pkg/core"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Area{},
	&Patrol{},
	&Submarine{},
	&MovementRecord{},
	&CollisionEvent{},
	&TorpedoOrder{},
	&SensorFaultReport{},
	&NukeAttempt{},
	&FleetPerformance{},
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Area is the patrol area a fleet operates in. Latitude and longitude
// are the raw WGS84 anchor; the projected EPSG:3857 location is derived
// at runtime and not persisted.
type Area struct {
	gorm.Model
	Name      string           `json:"name" gorm:"size:127"`
	Latitude  float32          `json:"latitude"`
	Longitude float32          `json:"longitude"`
	Location  core.PlanarCoord `json:"location" gorm:"-"`
	Patrols   []Patrol
}

func (*Area) TableName() string {
	return "areas"
}

func (a *Area) GetOrInsert(db *gorm.DB) (
	created bool,
	err error,
) {
	var existingArea Area
	err = db.Where("name = ?", a.Name).First(&existingArea).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// insert
			err = db.Create(a).Error
			return true, err
		}
		return false, err
	}
	// overwrite with db record if found
	*a = existingArea
	return false, nil
}

// Patrol is the main model for one recorded patrol
type Patrol struct {
	gorm.Model
	Name             string    `json:"name" gorm:"size:200"`
	Tag              string    `json:"tag" gorm:"size:127"`
	StartTime        time.Time `json:"startTime" gorm:"index:idx_patrol_start"`
	AreaID           uint
	Area             Area   `gorm:"foreignkey:AreaID"`
	RecorderVersion  string `json:"recorderVersion" gorm:"size:64;default:1.0.0"`
	ReportsDirectory string `json:"reportsDirectory" gorm:"size:255"`

	Submarines         []Submarine
	MovementRecords    []MovementRecord
	CollisionEvents    []CollisionEvent
	TorpedoOrders      []TorpedoOrder
	SensorFaultReports []SensorFaultReport
	NukeAttempts       []NukeAttempt
}

func (*Patrol) TableName() string {
	return "patrols"
}

// Submarine is one registered boat in a patrol
type Submarine struct {
	gorm.Model
	PatrolID uint   `json:"patrolId" gorm:"index:idx_submarine_patrol_id"`
	Patrol   Patrol `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PatrolID;"`
	Serial   string `json:"serial" gorm:"size:11;index:idx_submarine_serial"`
	JoinTime time.Time `json:"joinTime"`
}

func (*Submarine) TableName() string {
	return "submarines"
}

// MovementRecord is one audited move
type MovementRecord struct {
	gorm.Model
	PatrolID       uint   `json:"patrolId" gorm:"index:idx_movement_patrol_id"`
	Patrol         Patrol `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PatrolID;"`
	Serial         string `json:"serial" gorm:"size:11;index:idx_movement_serial"`
	Direction      string `json:"direction" gorm:"size:16"`
	Distance       int    `json:"distance"`
	FromVertical   int    `json:"fromVertical"`
	FromHorizontal int    `json:"fromHorizontal"`
	ToVertical     int    `json:"toVertical"`
	ToHorizontal   int    `json:"toHorizontal"`
	Time           time.Time `json:"time"`
}

func (*MovementRecord) TableName() string {
	return "movement_records"
}

// CollisionEvent is one detected shared cell
type CollisionEvent struct {
	gorm.Model
	PatrolID   uint   `json:"patrolId" gorm:"index:idx_collision_patrol_id"`
	Patrol     Patrol `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PatrolID;"`
	Serial     string `json:"serial" gorm:"size:11"`
	Vertical   int    `json:"vertical"`
	Horizontal int    `json:"horizontal"`
	Time       time.Time `json:"time"`
}

func (*CollisionEvent) TableName() string {
	return "collision_events"
}

// TorpedoOrder is one torpedo clearance check
type TorpedoOrder struct {
	gorm.Model
	PatrolID  uint   `json:"patrolId" gorm:"index:idx_torpedo_patrol_id"`
	Patrol    Patrol `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PatrolID;"`
	Serial    string `json:"serial" gorm:"size:11"`
	Direction string `json:"direction" gorm:"size:16"`
	Blocked   bool   `json:"blocked"`
	BlockedBy string `json:"blockedBy" gorm:"size:11"`
	Time      time.Time `json:"time"`
}

func (*TorpedoOrder) TableName() string {
	return "torpedo_orders"
}

// SensorFaultReport is one aggregated sensor sweep. Faults holds the
// deduplicated fault list as JSON.
type SensorFaultReport struct {
	gorm.Model
	PatrolID uint           `json:"patrolId" gorm:"index:idx_sensorfault_patrol_id"`
	Patrol   Patrol         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PatrolID;"`
	Serial   string         `json:"serial" gorm:"size:11"`
	Faults   datatypes.JSON `json:"faults"`
	Time     time.Time      `json:"time"`
}

func (*SensorFaultReport) TableName() string {
	return "sensor_fault_reports"
}

// NukeAttempt is one nuclear launch authorization check
type NukeAttempt struct {
	gorm.Model
	PatrolID   uint   `json:"patrolId" gorm:"index:idx_nuke_patrol_id"`
	Patrol     Patrol `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PatrolID;"`
	Serial     string `json:"serial" gorm:"size:11"`
	Authorized bool   `json:"authorized"`
	Time       time.Time `json:"time"`
}

func (*NukeAttempt) TableName() string {
	return "nuke_attempts"
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// FleetPerformance is the model for recorder performance metrics
type FleetPerformance struct {
	Time                time.Time         `json:"time" gorm:"index:idx_time"`
	PatrolID            uint              `json:"patrolId" gorm:"index:idx_fleetperformance_patrol_id"`
	Patrol              Patrol            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PatrolID;"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*FleetPerformance) TableName() string {
	return "fleet_performances"
}

// WriteQueueLengths is the model for the write queue lengths
type WriteQueueLengths struct {
	Movements    uint16 `json:"movements"`
	Collisions   uint16 `json:"collisions"`
	Torpedoes    uint16 `json:"torpedoes"`
	SensorFaults uint16 `json:"sensorFaults"`
	NukeAttempts uint16 `json:"nukeAttempts"`
}
