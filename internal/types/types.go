// README: Common value types shared across modules.
package types

// ID identifies fences, vehicles, and alerts.
type ID string

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
