// README: Containment alert and vehicle position definitions.
package monitor

import (
	"errors"
	"time"

	"fencer/internal/types"
)

var ErrAlertNotFound = errors.New("alert not found")

type Kind string

const (
	KindEnter Kind = "enter"
	KindExit  Kind = "exit"
)

// VehiclePosition is one observation from the position feed.
type VehiclePosition struct {
	VehicleID  types.ID    `json:"vehicleId"`
	Point      types.Point `json:"point"`
	RecordedAt time.Time   `json:"recordedAt"`
}

// Alert records one enter/exit transition. Alerts accumulate newest-first;
// acknowledging marks them but never removes them from history.
type Alert struct {
	ID           types.ID    `json:"id"`
	VehicleID    types.ID    `json:"vehicleId"`
	GeofenceID   types.ID    `json:"geofenceId"`
	GeofenceName string      `json:"geofenceName"`
	Kind         Kind        `json:"kind"`
	Position     types.Point `json:"position"`
	// Address is filled in when a reverse geocoder is configured.
	Address      string    `json:"address,omitempty"`
	At           time.Time `json:"at"`
	Acknowledged bool      `json:"acknowledged"`
}

// pairKey identifies one (vehicle, geofence) containment state.
type pairKey struct {
	vehicleID  types.ID
	geofenceID types.ID
}
