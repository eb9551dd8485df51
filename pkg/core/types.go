package core

// SerialNumber identifies one submarine.
// Format: eight digits, a hyphen, two digits (e.g. "41158662-03").
type SerialNumber string

// Position is a cell on the 2-D patrol grid.
// Vertical grows downward: "up" orders decrease it, "down" orders increase it.
type Position struct {
	Vertical   int `json:"vertical"`
	Horizontal int `json:"horizontal"`
}

// DistanceSq returns the squared Euclidean distance from the base at (0,0).
// Used as a total order only; the square root is never taken.
func (p Position) DistanceSq() int {
	return p.Vertical*p.Vertical + p.Horizontal*p.Horizontal
}

// Direction is a closed enumeration of movement/firing directions.
// DirectionInvalid is the explicit arm for unrecognized report tokens.
type Direction int

const (
	DirectionInvalid Direction = iota
	DirectionUp
	DirectionDown
	DirectionForward
)

// ParseDirection maps a report token to a Direction.
// Unknown tokens map to DirectionInvalid, never an error - the caller
// decides whether that is a diagnostic or a no-op.
func ParseDirection(s string) Direction {
	switch s {
	case "up":
		return DirectionUp
	case "down":
		return DirectionDown
	case "forward":
		return DirectionForward
	default:
		return DirectionInvalid
	}
}

// String returns the report token for the direction.
func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionForward:
		return "forward"
	default:
		return "invalid"
	}
}

// PlanarCoord is a projected (EPSG:3857) coordinate without GIS dependencies.
type PlanarCoord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
