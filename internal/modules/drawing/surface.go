// README: Preview contract between a session and the host map surface.
package drawing

import "fencer/internal/types"

// Surface is the host map layer a session publishes its in-progress shape to.
// The session never touches committed fences through it; previews are a
// separate, restyled layer the host draws and clears on demand.
type Surface interface {
	ShowPreview(p Preview)
	ClearPreview()
}

// Style is the preview stroke styling. In-progress shapes are always dashed
// and colored per mode so they read as drafts next to committed fences.
type Style struct {
	StrokeColor string  `json:"strokeColor"`
	Dashed      bool    `json:"dashed"`
	FillOpacity float64 `json:"fillOpacity"`
}

var (
	circleStyle  = Style{StrokeColor: "#2b7de9", Dashed: true, FillOpacity: 0.15}
	polygonStyle = Style{StrokeColor: "#e9762b", Dashed: true, FillOpacity: 0.15}
)

// Preview is the shape-in-progress snapshot published on every state change
// and qualifying pointer move.
type Preview struct {
	Mode         Mode          `json:"mode"`
	Center       *types.Point  `json:"center,omitempty"`
	RadiusMeters float64       `json:"radiusMeters,omitempty"`
	Points       []types.Point `json:"points,omitempty"`
	// Closed is true once a polygon has enough points to render filled
	// rather than as an open polyline.
	Closed bool  `json:"closed"`
	Style  Style `json:"style"`
}

// NopSurface discards previews; hosts that poll session state instead of
// subscribing can use it.
type NopSurface struct{}

func (NopSurface) ShowPreview(Preview) {}
func (NopSurface) ClearPreview()       {}
