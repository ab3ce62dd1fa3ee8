// README: Drawing session handlers; map events in, preview snapshots out.
package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"fencer/internal/geo"
	"fencer/internal/modules/drawing"
	"fencer/internal/modules/fence"
	"fencer/internal/types"
)

// DrawHandler holds the live drawing sessions. Sessions are ephemeral and
// in-memory only; a restart discards in-progress drawings, never committed
// fences.
type DrawHandler struct {
	fences FenceService

	mu       sync.Mutex
	sessions map[types.ID]*drawing.Session
}

func NewDrawHandler(fences FenceService) *DrawHandler {
	return &DrawHandler{
		fences:   fences,
		sessions: make(map[types.ID]*drawing.Session),
	}
}

type drawSnapshot struct {
	ID          types.ID        `json:"id"`
	Mode        drawing.Mode    `json:"mode"`
	State       drawing.State   `json:"state"`
	Instruction string          `json:"instruction"`
	CanConfirm  bool            `json:"canConfirm"`
	Preview     drawing.Preview `json:"preview"`
}

func snapshot(id types.ID, s *drawing.Session) drawSnapshot {
	return drawSnapshot{
		ID:          id,
		Mode:        s.Mode(),
		State:       s.State(),
		Instruction: s.Instruction(),
		CanConfirm:  s.CanConfirm(),
		Preview:     s.Preview(),
	}
}

type startDrawReq struct {
	Mode drawing.Mode `json:"mode"`
}

func (h *DrawHandler) Start(c *gin.Context) {
	var req startDrawReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Mode != drawing.ModeCircle && req.Mode != drawing.ModePolygon {
		writeError(c, http.StatusBadRequest, "mode must be circle or polygon")
		return
	}

	s := drawing.NewSession(nil)
	s.SetMode(req.Mode)
	id := newSessionID()

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	writeJSON(c, http.StatusCreated, snapshot(id, s))
}

type pointReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *DrawHandler) Click(c *gin.Context) {
	h.withPoint(c, func(s *drawing.Session, p types.Point) { s.MapClick(p) })
}

func (h *DrawHandler) Move(c *gin.Context) {
	h.withPoint(c, func(s *drawing.Session, p types.Point) { s.PointerMove(p) })
}

func (h *DrawHandler) withPoint(c *gin.Context, apply func(*drawing.Session, types.Point)) {
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
	id, s, ok := h.lookup(c)
	if !ok {
		return
	}
	apply(s, p)
	writeJSON(c, http.StatusOK, snapshot(id, s))
}

func (h *DrawHandler) Undo(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, s, ok := h.lookup(c)
	if !ok {
		return
	}
	s.Undo()
	writeJSON(c, http.StatusOK, snapshot(id, s))
}

func (h *DrawHandler) Cancel(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, s, ok := h.lookup(c)
	if !ok {
		return
	}
	s.Cancel()
	delete(h.sessions, id)
	writeJSON(c, http.StatusOK, gin.H{"status": "cancelled"})
}

type confirmDrawReq struct {
	Name               string     `json:"name"`
	Color              string     `json:"color"`
	Description        string     `json:"description"`
	Active             bool       `json:"active"`
	AlertOnEnter       bool       `json:"alertOnEnter"`
	AlertOnExit        bool       `json:"alertOnExit"`
	AssignedVehicleIDs []types.ID `json:"assignedVehicleIds"`
}

// Confirm turns the drawn shape into a persisted geofence and destroys the
// session. The session is consumed only after the save succeeds: a save
// failure keeps the drawing intact so the user can retry without redrawing.
func (h *DrawHandler) Confirm(c *gin.Context) {
	var req confirmDrawReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(c, http.StatusBadRequest, "missing fence name")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	id, s, ok := h.lookup(c)
	if !ok {
		return
	}

	shape, err := s.BuildShape()
	if err != nil {
		writeDrawError(c, err)
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
		Shape:              shape,
	})
	if err != nil {
		writeFenceError(c, err)
		return
	}

	s.Cancel()
	delete(h.sessions, id)
	writeJSON(c, http.StatusCreated, toFenceView(g))
}

// lookup is called with h.mu held. It writes the error response itself when
// the session id is bad or unknown.
func (h *DrawHandler) lookup(c *gin.Context) (types.ID, *drawing.Session, bool) {
	raw := c.Param("id")
	if !isValidID(raw) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return "", nil, false
	}
	id := types.ID(raw)
	s, ok := h.sessions[id]
	if !ok {
		writeError(c, http.StatusNotFound, "drawing session not found")
		return "", nil, false
	}
	return id, s, true
}

func newSessionID() types.ID {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return types.ID(hex.EncodeToString(b))
}
