// README: Edit session handlers; drag lifecycle over the single active session.
package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"fencer/internal/geo"
	"fencer/internal/modules/editing"
	"fencer/internal/types"
)

// EditHandler exposes the single-active-session edit manager over HTTP. One
// fence is editable at a time; activating another fence deactivates the
// current session unless it is mid-drag.
type EditHandler struct {
	fences FenceService

	mu      sync.Mutex
	manager *editing.Manager
}

func NewEditHandler(fences FenceService) *EditHandler {
	return &EditHandler{fences: fences, manager: editing.NewManager()}
}

type editView struct {
	FenceID types.ID         `json:"fenceId"`
	Handles []editing.Handle `json:"handles"`
}

// Activate opens an edit session for the fence and returns its handles.
func (h *EditHandler) Activate(c *gin.Context) {
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

	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.manager.Activate(g, editing.NopSurface{}, h.fences)
	if err != nil {
		writeEditError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, editView{FenceID: s.FenceID(), Handles: s.Handles()})
}

type dragStartReq struct {
	Handle int `json:"handle"`
}

func (h *EditHandler) DragStart(c *gin.Context) {
	var req dragStartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.activeSession(c)
	if !ok {
		return
	}
	if err := s.DragStart(req.Handle); err != nil {
		writeEditError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, editView{FenceID: s.FenceID(), Handles: s.Handles()})
}

func (h *EditHandler) Drag(c *gin.Context) {
	var req pointReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p := types.Point{Lat: req.Lat, Lng: req.Lng}
	if !geo.IsValid(p) {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.activeSession(c)
	if !ok {
		return
	}
	if err := s.Drag(p); err != nil {
		writeEditError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, editView{FenceID: s.FenceID(), Handles: s.Handles()})
}

// DragEnd commits the edited coordinates through the fence service.
func (h *EditHandler) DragEnd(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.activeSession(c)
	if !ok {
		return
	}
	if err := s.DragEnd(c.Request.Context()); err != nil {
		writeEditError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, editView{FenceID: s.FenceID(), Handles: s.Handles()})
}

func (h *EditHandler) Deactivate(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid fence id")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.manager.Active()
	if s == nil || s.FenceID() != types.ID(id) {
		writeError(c, http.StatusNotFound, "no edit session for fence")
		return
	}
	if h.manager.Deactivate() {
		writeJSON(c, http.StatusOK, gin.H{"status": "deactivated"})
		return
	}
	// Mid-drag: teardown is deferred to drag-end.
	writeJSON(c, http.StatusAccepted, gin.H{"status": "deferred"})
}

// activeSession is called with h.mu held. It resolves the :id route param
// against the active session and writes the error response on a miss.
func (h *EditHandler) activeSession(c *gin.Context) (*editing.Session, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid fence id")
		return nil, false
	}
	s := h.manager.Active()
	if s == nil || s.FenceID() != types.ID(id) {
		writeError(c, http.StatusNotFound, "no edit session for fence")
		return nil, false
	}
	return s, true
}
