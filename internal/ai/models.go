package ai

import "time"

// AlertRecord is the slimmed-down alert view handed to the model.
type AlertRecord struct {
	VehicleID    string    `json:"vehicle_id"`
	GeofenceName string    `json:"geofence_name"`
	Kind         string    `json:"kind"`
	Address      string    `json:"address,omitempty"`
	At           time.Time `json:"at"`
	Acknowledged bool      `json:"acknowledged"`
}

// DigestResult captures the structured output from the AI model.
type DigestResult struct {
	// Summary is a short operator-facing briefing of recent fence activity.
	Summary string `json:"summary"`

	// Hotspots lists geofence names with notably high enter/exit churn.
	Hotspots []string `json:"hotspots,omitempty"`

	// Vehicles lists vehicle IDs the operator should look at first.
	Vehicles []string `json:"vehicles,omitempty"`
}
