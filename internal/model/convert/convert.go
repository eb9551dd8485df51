// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/subcom/fleet/internal/model"
	"github.com/subcom/fleet/pkg/core"
)

// faultsToJSON converts a fault list to datatypes.JSON for DB storage.
func faultsToJSON(faults []core.SensorFault) datatypes.JSON {
	if len(faults) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(faults)
	return datatypes.JSON(data)
}

// CoreToArea converts a core.Area to a GORM model.Area.
func CoreToArea(a core.Area) model.Area {
	return model.Area{
		Name:      a.Name,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		Location:  a.Location,
	}
}

// CoreToPatrol converts a core.Patrol to a GORM model.Patrol.
// The area association is wired by the storage backend.
func CoreToPatrol(p core.Patrol) model.Patrol {
	return model.Patrol{
		Name:             p.Name,
		Tag:              p.Tag,
		StartTime:        p.StartTime,
		RecorderVersion:  p.RecorderVersion,
		ReportsDirectory: p.ReportsDirectory,
	}
}

// CoreToSubmarine converts a core.Submarine to a GORM model.Submarine.
func CoreToSubmarine(s core.Submarine) model.Submarine {
	return model.Submarine{
		Serial:   string(s.Serial),
		JoinTime: s.JoinTime,
	}
}

// CoreToMovementRecord converts a core.MovementRecord to a GORM model.MovementRecord.
func CoreToMovementRecord(m core.MovementRecord) model.MovementRecord {
	return model.MovementRecord{
		Serial:         string(m.Serial),
		Direction:      m.Direction.String(),
		Distance:       m.Distance,
		FromVertical:   m.From.Vertical,
		FromHorizontal: m.From.Horizontal,
		ToVertical:     m.To.Vertical,
		ToHorizontal:   m.To.Horizontal,
		Time:           m.Time,
	}
}

// CoreToCollisionEvent converts a core.CollisionEvent to a GORM model.CollisionEvent.
func CoreToCollisionEvent(c core.CollisionEvent) model.CollisionEvent {
	return model.CollisionEvent{
		Serial:     string(c.Serial),
		Vertical:   c.Position.Vertical,
		Horizontal: c.Position.Horizontal,
		Time:       c.Time,
	}
}

// CoreToTorpedoOrder converts a core.TorpedoOrder to a GORM model.TorpedoOrder.
func CoreToTorpedoOrder(o core.TorpedoOrder) model.TorpedoOrder {
	return model.TorpedoOrder{
		Serial:    string(o.Serial),
		Direction: o.Direction.String(),
		Blocked:   o.Blocked,
		BlockedBy: string(o.BlockedBy),
		Time:      o.Time,
	}
}

// CoreToSensorFaultReport converts a core.SensorFaultReport to a GORM model.SensorFaultReport.
func CoreToSensorFaultReport(r core.SensorFaultReport) model.SensorFaultReport {
	return model.SensorFaultReport{
		Serial: string(r.Serial),
		Faults: faultsToJSON(r.Faults),
		Time:   r.Time,
	}
}

// CoreToNukeAttempt converts a core.NukeAttempt to a GORM model.NukeAttempt.
func CoreToNukeAttempt(n core.NukeAttempt) model.NukeAttempt {
	return model.NukeAttempt{
		Serial:     string(n.Serial),
		Authorized: n.Authorized,
		Time:       n.Time,
	}
}
