// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/subcom/fleet/internal/geo"
	"github.com/subcom/fleet/pkg/core"
)

// FleetExport is the root JSON structure
type FleetExport struct {
	RecorderVersion string               `json:"recorderVersion"`
	PatrolName      string               `json:"patrolName"`
	Tag             string               `json:"tag"`
	AreaName        string               `json:"areaName"`
	StartTime       time.Time            `json:"startTime"`
	EndTime         time.Time            `json:"endTime"`
	Boats           []BoatJSON           `json:"boats"`
	Collisions      []core.CollisionEvent `json:"collisions"`
}

// BoatJSON represents one submarine with its recorded events
type BoatJSON struct {
	ID           uint                     `json:"id"`
	Serial       string                   `json:"serial"`
	JoinTime     time.Time                `json:"joinTime"`
	Movements    []core.MovementRecord    `json:"movements"`
	Track        string                   `json:"track,omitempty"`
	Torpedoes    []core.TorpedoOrder      `json:"torpedoes,omitempty"`
	SensorFaults []core.SensorFaultReport `json:"sensorFaults,omitempty"`
	NukeAttempts []core.NukeAttempt       `json:"nukeAttempts,omitempty"`
}

// exportJSON writes the patrol data to a gzipped JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	patrolName := strings.ReplaceAll(b.patrol.Name, " ", "_")
	patrolName = strings.ReplaceAll(patrolName, ":", "_")
	timestamp := b.patrol.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", patrolName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", patrolName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.exportedFilePath = outputPath
	return nil
}

func (b *Backend) buildExport() FleetExport {
	export := FleetExport{
		RecorderVersion: b.patrol.RecorderVersion,
		PatrolName:      b.patrol.Name,
		Tag:             b.patrol.Tag,
		AreaName:        b.area.Name,
		StartTime:       b.patrol.StartTime,
		EndTime:         b.endTime,
		Boats:           make([]BoatJSON, 0, len(b.order)),
		Collisions:      b.collisions,
	}
	if export.Collisions == nil {
		export.Collisions = make([]core.CollisionEvent, 0)
	}

	// Boats in registration order
	for _, sn := range b.order {
		record, ok := b.submarines[sn]
		if !ok {
			continue
		}
		boat := BoatJSON{
			ID:           record.Submarine.ID,
			Serial:       string(record.Submarine.Serial),
			JoinTime:     record.Submarine.JoinTime,
			Movements:    record.Movements,
			Torpedoes:    record.TorpedoOrders,
			SensorFaults: record.SensorFaults,
			NukeAttempts: record.NukeAttempts,
		}
		if boat.Movements == nil {
			boat.Movements = make([]core.MovementRecord, 0)
		}
		// grid track as WKT; boats that never moved have none
		if track, err := geo.TrackLineString(record.Movements); err == nil {
			boat.Track = track.AsText()
		}
		export.Boats = append(export.Boats, boat)
	}

	return export
}

func (b *Backend) writeJSON(path string, export FleetExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(export); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

func (b *Backend) writeGzipJSON(path string, export FleetExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(export); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return gz.Close()
}

// GetExportedFilePath returns the path of the last exported file.
// Empty until EndPatrol has run.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.exportedFilePath
}

// GetExportMetadata returns upload metadata for the exported patrol.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	meta := core.UploadMetadata{}
	if b.patrol != nil {
		meta.PatrolName = b.patrol.Name
		meta.Tag = b.patrol.Tag
		if !b.endTime.IsZero() {
			meta.PatrolDuration = b.endTime.Sub(b.patrol.StartTime).Seconds()
		}
	}
	if b.area != nil {
		meta.AreaName = b.area.Name
	}
	return meta
}
