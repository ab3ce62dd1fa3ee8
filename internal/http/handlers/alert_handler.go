// README: Alert history, acknowledgement, and AI digest handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fencer/internal/ai"
	"fencer/internal/modules/monitor"
	"fencer/internal/types"
)

// AlertLog is the slice of monitor.Service the HTTP layer needs.
type AlertLog interface {
	Alerts(unackedOnly bool) []monitor.Alert
	Acknowledge(id types.ID) error
}

type AlertHandler struct {
	alerts AlertLog
	// digest is optional; nil when no AI key is configured.
	digest ai.DigestProvider
}

func NewAlertHandler(alerts AlertLog, digest ai.DigestProvider) *AlertHandler {
	return &AlertHandler{alerts: alerts, digest: digest}
}

func (h *AlertHandler) List(c *gin.Context) {
	unackedOnly := c.Query("unacked") == "1" || c.Query("unacked") == "true"
	writeJSON(c, http.StatusOK, h.alerts.Alerts(unackedOnly))
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := h.alerts.Acknowledge(types.ID(id)); err != nil {
		writeAlertError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "acknowledged"})
}

// Digest summarizes recent alerts through the AI provider.
func (h *AlertHandler) Digest(c *gin.Context) {
	if h.digest == nil {
		writeError(c, http.StatusServiceUnavailable, "digest not configured")
		return
	}
	alerts := h.alerts.Alerts(false)
	records := make([]ai.AlertRecord, 0, len(alerts))
	for _, a := range alerts {
		records = append(records, ai.AlertRecord{
			VehicleID:    string(a.VehicleID),
			GeofenceName: a.GeofenceName,
			Kind:         string(a.Kind),
			Address:      a.Address,
			At:           a.At,
			Acknowledged: a.Acknowledged,
		})
	}
	result, err := h.digest.SummarizeAlerts(c.Request.Context(), records)
	if err != nil {
		writeError(c, http.StatusBadGateway, "digest failed")
		return
	}
	writeJSON(c, http.StatusOK, result)
}
