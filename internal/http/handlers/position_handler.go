// README: Vehicle position ingest handler.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fencer/internal/geo"
	"fencer/internal/modules/monitor"
	"fencer/internal/types"
)

// PositionRecorder ingests one vehicle observation. monitor.Store satisfies it.
type PositionRecorder interface {
	SetPosition(ctx context.Context, pos monitor.VehiclePosition) error
}

type PositionHandler struct {
	recorder PositionRecorder
}

func NewPositionHandler(recorder PositionRecorder) *PositionHandler {
	return &PositionHandler{recorder: recorder}
}

type positionReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	// Ts is optional; it defaults to the ingest time.
	Ts *time.Time `json:"ts"`
}

func (h *PositionHandler) Update(c *gin.Context) {
	vehicleID := c.Param("id")
	if vehicleID == "" {
		writeError(c, http.StatusBadRequest, "missing vehicle id")
		return
	}
	var req positionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p := types.Point{Lat: req.Lat, Lng: req.Lng}
	if !geo.IsValid(p) {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}
	recordedAt := time.Now().UTC()
	if req.Ts != nil {
		recordedAt = req.Ts.UTC()
	}
	pos := monitor.VehiclePosition{
		VehicleID:  types.ID(vehicleID),
		Point:      p,
		RecordedAt: recordedAt,
	}
	if err := h.recorder.SetPosition(c.Request.Context(), pos); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
