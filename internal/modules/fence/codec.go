// README: Wire codec for the structural shape form {type, coordinates}.
package fence

import (
	"encoding/json"
	"fmt"

	"fencer/internal/types"
)

// The structural form is the interchange contract with stored fences and the
// map frontend. Field names and nesting must not change:
//
//	{"type":"circle","coordinates":{"center":{"lat":..,"lng":..},"radiusMeters":..}}
//	{"type":"polygon","coordinates":{"points":[{"lat":..,"lng":..}, ...]}}

type circleCoordinates struct {
	Center       types.Point `json:"center"`
	RadiusMeters float64     `json:"radiusMeters"`
}

type polygonCoordinates struct {
	Points []types.Point `json:"points"`
}

type shapeEnvelope struct {
	Type        ShapeType       `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func (s Shape) MarshalJSON() ([]byte, error) {
	var coords any
	switch s.Type {
	case ShapeCircle:
		coords = circleCoordinates{Center: s.Center, RadiusMeters: s.RadiusMeters}
	case ShapePolygon:
		coords = polygonCoordinates{Points: s.Points}
	default:
		return nil, fmt.Errorf("%w: unknown shape type %q", ErrInvalidShape, s.Type)
	}
	raw, err := json.Marshal(coords)
	if err != nil {
		return nil, err
	}
	return json.Marshal(shapeEnvelope{Type: s.Type, Coordinates: raw})
}

func (s *Shape) UnmarshalJSON(data []byte) error {
	var env shapeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch env.Type {
	case ShapeCircle:
		var c circleCoordinates
		if err := json.Unmarshal(env.Coordinates, &c); err != nil {
			return err
		}
		*s = Shape{Type: ShapeCircle, Center: c.Center, RadiusMeters: c.RadiusMeters}
	case ShapePolygon:
		var p polygonCoordinates
		if err := json.Unmarshal(env.Coordinates, &p); err != nil {
			return err
		}
		*s = Shape{Type: ShapePolygon, Points: p.Points}
	default:
		return fmt.Errorf("%w: unknown shape type %q", ErrInvalidShape, env.Type)
	}
	return nil
}
