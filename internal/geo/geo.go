// Package geo converts fleet grid data to exportable geometry.
//
// Patrol anchors are stored as EPSG:3857 regardless of input SRID, so
// exported recordings carry a projection-stable coordinate even when the
// storage backend has no spatial awareness.
package geo

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/subcom/fleet/pkg/core"
)

// ErrEmptyTrack is returned when a track is requested for a submarine
// with no audited movement.
var ErrEmptyTrack = errors.New("movement log is empty")

// AnchorFrom4326 projects a longitude/latitude patrol anchor to
// EPSG:3857 planar coordinates.
func AnchorFrom4326(longitude, latitude float64) core.PlanarCoord {
	epsg := wgs84.EPSG()
	transform := epsg.Transform(4326, 3857)
	x, y, _ := transform(longitude, latitude, 0)
	return core.PlanarCoord{X: x, Y: y}
}

// AnchorPoint builds a simplefeatures point from a projected anchor,
// for backends that store geometry.
func AnchorPoint(c core.PlanarCoord) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: c.X, Y: c.Y},
		Type: geom.DimXY,
	})
}

// TrackLineString renders a movement log as a line string over grid
// coordinates (horizontal as X, vertical as Y): the starting cell of the
// oldest record followed by every post-move cell. Logs are bounded, so
// the track covers at most the last 50 moves.
func TrackLineString(log []core.MovementRecord) (geom.LineString, error) {
	if len(log) == 0 {
		return geom.LineString{}, ErrEmptyTrack
	}

	coords := make([]float64, 0, (len(log)+1)*2)
	coords = append(coords, float64(log[0].From.Horizontal), float64(log[0].From.Vertical))
	for _, rec := range log {
		coords = append(coords, float64(rec.To.Horizontal), float64(rec.To.Vertical))
	}

	seq := geom.NewSequence(coords, geom.DimXY)
	return geom.NewLineString(seq), nil
}
