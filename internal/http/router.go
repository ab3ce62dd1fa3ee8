// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fencer/internal/ai"
	"fencer/internal/http/handlers"
	"fencer/internal/http/middleware"
)

// NewRouter wires the gin engine. digest may be nil when no AI key is
// configured; the digest route then answers 503.
func NewRouter(
	fenceService handlers.FenceService,
	recorder handlers.PositionRecorder,
	alertLog handlers.AlertLog,
	digest ai.DigestProvider,
) http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	fenceHandler := handlers.NewFenceHandler(fenceService)
	r.POST("/api/fences", fenceHandler.Create)
	r.GET("/api/fences", fenceHandler.List)
	r.GET("/api/fences/:id", fenceHandler.Get)
	r.PUT("/api/fences/:id", fenceHandler.Update)
	r.PUT("/api/fences/:id/shape", fenceHandler.UpdateShape)
	r.DELETE("/api/fences/:id", fenceHandler.Delete)

	positionHandler := handlers.NewPositionHandler(recorder)
	r.PUT("/api/vehicles/:id/position", positionHandler.Update)

	alertHandler := handlers.NewAlertHandler(alertLog, digest)
	r.GET("/api/alerts", alertHandler.List)
	r.POST("/api/alerts/:id/ack", alertHandler.Acknowledge)
	r.GET("/api/alerts/digest", alertHandler.Digest)

	drawHandler := handlers.NewDrawHandler(fenceService)
	r.POST("/api/draw", drawHandler.Start)
	r.POST("/api/draw/:id/click", drawHandler.Click)
	r.POST("/api/draw/:id/move", drawHandler.Move)
	r.POST("/api/draw/:id/undo", drawHandler.Undo)
	r.POST("/api/draw/:id/cancel", drawHandler.Cancel)
	r.POST("/api/draw/:id/confirm", drawHandler.Confirm)

	editHandler := handlers.NewEditHandler(fenceService)
	r.POST("/api/fences/:id/edit", editHandler.Activate)
	r.POST("/api/edit/:id/drag-start", editHandler.DragStart)
	r.POST("/api/edit/:id/drag", editHandler.Drag)
	r.POST("/api/edit/:id/drag-end", editHandler.DragEnd)
	r.DELETE("/api/edit/:id", editHandler.Deactivate)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
