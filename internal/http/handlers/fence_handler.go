// README: Geofence CRUD handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fencer/internal/modules/fence"
	"fencer/internal/types"
)

// FenceService is the slice of fence.Service the HTTP layer needs.
type FenceService interface {
	Create(ctx context.Context, cmd fence.CreateCommand) (*fence.Geofence, error)
	Get(ctx context.Context, id types.ID) (*fence.Geofence, error)
	List(ctx context.Context) ([]*fence.Geofence, error)
	Update(ctx context.Context, cmd fence.UpdateCommand) (*fence.Geofence, error)
	CommitShape(ctx context.Context, id types.ID, shape fence.Shape) error
	Delete(ctx context.Context, id types.ID) error
}

type FenceHandler struct {
	fences FenceService
}

func NewFenceHandler(svc FenceService) *FenceHandler {
	return &FenceHandler{fences: svc}
}

type fenceReq struct {
	Name               string      `json:"name"`
	Color              string      `json:"color"`
	Description        string      `json:"description"`
	Active             bool        `json:"active"`
	AlertOnEnter       bool        `json:"alertOnEnter"`
	AlertOnExit        bool        `json:"alertOnExit"`
	AssignedVehicleIDs []types.ID  `json:"assignedVehicleIds"`
	Shape              fence.Shape `json:"shape"`
}

type fenceView struct {
	ID                 types.ID    `json:"id"`
	Name               string      `json:"name"`
	Color              string      `json:"color"`
	Description        string      `json:"description"`
	Active             bool        `json:"active"`
	AlertOnEnter       bool        `json:"alertOnEnter"`
	AlertOnExit        bool        `json:"alertOnExit"`
	AssignedVehicleIDs []types.ID  `json:"assignedVehicleIds"`
	Shape              fence.Shape `json:"shape"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

func toFenceView(g *fence.Geofence) fenceView {
	return fenceView{
		ID:                 g.ID,
		Name:               g.Name,
		Color:              g.Color,
		Description:        g.Description,
		Active:             g.Active,
		AlertOnEnter:       g.AlertOnEnter,
		AlertOnExit:        g.AlertOnExit,
		AssignedVehicleIDs: g.AssignedVehicleIDs,
		Shape:              g.Shape,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

func (h *FenceHandler) Create(c *gin.Context) {
	var req fenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	g, err := h.fences.Create(c.Request.Context(), fence.CreateCommand{
		Name:               req.Name,
		Color:              req.Color,
		Description:        req.Description,
		Active:             req.Active,
		AlertOnEnter:       req.AlertOnEnter,
		AlertOnExit:        req.AlertOnExit,
		AssignedVehicleIDs: req.AssignedVehicleIDs,
		Shape:              req.Shape,
	})
	if err != nil {
		writeFenceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toFenceView(g))
}

func (h *FenceHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid fence id")
		return
	}
	g, err := h.fences.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeFenceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toFenceView(g))
}

func (h *FenceHandler) List(c *gin.Context) {
	fences, err := h.fences.List(c.Request.Context())
	if err != nil {
		writeFenceError(c, err)
		return
	}
	views := make([]fenceView, 0, len(fences))
	for _, g := range fences {
		views = append(views, toFenceView(g))
	}
	writeJSON(c, http.StatusOK, views)
}

func (h *FenceHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid fence id")
		return
	}
	var req fenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	g, err := h.fences.Update(c.Request.Context(), fence.UpdateCommand{
		ID:                 types.ID(id),
		Name:               req.Name,
		Color:              req.Color,
		Description:        req.Description,
		Active:             req.Active,
		AlertOnEnter:       req.AlertOnEnter,
		AlertOnExit:        req.AlertOnExit,
		AssignedVehicleIDs: req.AssignedVehicleIDs,
	})
	if err != nil {
		writeFenceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toFenceView(g))
}

// UpdateShape replaces a fence's coordinates directly, without an edit session.
func (h *FenceHandler) UpdateShape(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid fence id")
		return
	}
	var shape fence.Shape
	if err := c.ShouldBindJSON(&shape); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.fences.CommitShape(c.Request.Context(), types.ID(id), shape); err != nil {
		writeFenceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *FenceHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid fence id")
		return
	}
	if err := h.fences.Delete(c.Request.Context(), types.ID(id)); err != nil {
		writeFenceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "deleted"})
}
