// pkg/core/patrol.go
package core

import "time"

// Area is the patrol area the fleet grid is anchored to.
// Location is the EPSG:3857 projection of the lat/long anchor.
type Area struct {
	ID        uint
	Name      string
	Latitude  float32
	Longitude float32
	Location  PlanarCoord
}

// Patrol is one recorded fleet sortie.
type Patrol struct {
	ID               uint
	Name             string
	Tag              string
	StartTime        time.Time
	AreaID           uint
	RecorderVersion  string
	ReportsDirectory string
}

// UploadMetadata accompanies an exported recording upload.
type UploadMetadata struct {
	PatrolName     string
	AreaName       string
	PatrolDuration float64
	Tag            string
}
