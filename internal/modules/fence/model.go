// README: Geofence aggregate and shape definitions.
package fence

import (
	"errors"
	"time"

	"fencer/internal/geo"
	"fencer/internal/types"
)

var (
	ErrInvalidShape = errors.New("invalid shape")
	ErrNotFound     = errors.New("geofence not found")
	ErrBadRequest   = errors.New("bad request")
)

type ShapeType string

const (
	ShapeCircle  ShapeType = "circle"
	ShapePolygon ShapeType = "polygon"
)

// Shape is the geometry of a geofence: either a circle (Center, RadiusMeters)
// or a polygon (Points, order significant — it defines the edges).
type Shape struct {
	Type         ShapeType
	Center       types.Point
	RadiusMeters float64
	Points       []types.Point
}

// NewCircle builds a circle shape. A circle always has RadiusMeters > 0;
// anything else is an in-progress draft, not a shape.
func NewCircle(center types.Point, radiusMeters float64) (Shape, error) {
	if radiusMeters <= 0 {
		return Shape{}, ErrInvalidShape
	}
	if !geo.IsValid(center) {
		return Shape{}, ErrInvalidShape
	}
	return Shape{Type: ShapeCircle, Center: center, RadiusMeters: radiusMeters}, nil
}

// NewPolygon builds a polygon shape from at least 3 points. The point slice is
// copied; order is preserved and duplicates are kept as given.
func NewPolygon(points []types.Point) (Shape, error) {
	if len(points) < 3 {
		return Shape{}, ErrInvalidShape
	}
	for _, p := range points {
		if !geo.IsValid(p) {
			return Shape{}, ErrInvalidShape
		}
	}
	cp := make([]types.Point, len(points))
	copy(cp, points)
	return Shape{Type: ShapePolygon, Points: cp}, nil
}

// Validate re-checks the shape invariants, for shapes decoded from the wire.
func (s Shape) Validate() error {
	switch s.Type {
	case ShapeCircle:
		_, err := NewCircle(s.Center, s.RadiusMeters)
		return err
	case ShapePolygon:
		_, err := NewPolygon(s.Points)
		return err
	default:
		return ErrInvalidShape
	}
}

// Contains reports whether p lies inside the shape.
func (s Shape) Contains(p types.Point) bool {
	switch s.Type {
	case ShapeCircle:
		return geo.PointInCircle(p, s.Center, s.RadiusMeters)
	case ShapePolygon:
		return geo.PointInPolygon(p, s.Points)
	default:
		return false
	}
}

type Geofence struct {
	ID                 types.ID
	Name               string
	Color              string
	Description        string
	Active             bool
	AlertOnEnter       bool
	AlertOnExit        bool
	AssignedVehicleIDs []types.ID
	Shape              Shape
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AppliesTo reports whether the fence is evaluated against the vehicle.
// An empty assignment set means every vehicle.
func (g *Geofence) AppliesTo(vehicleID types.ID) bool {
	if len(g.AssignedVehicleIDs) == 0 {
		return true
	}
	for _, id := range g.AssignedVehicleIDs {
		if id == vehicleID {
			return true
		}
	}
	return false
}
