// README: Handle-based reshape sessions for committed geofences.
package editing

import (
	"context"
	"errors"

	"fencer/internal/geo"
	"fencer/internal/modules/fence"
	"fencer/internal/types"
)

var (
	// ErrEditActive is returned when a new session is requested while the
	// current one is mid-drag and cannot be cleanly deactivated.
	ErrEditActive = errors.New("another geofence is being edited")
	// ErrUnknownHandle is returned for a drag event on a handle index the
	// session does not own.
	ErrUnknownHandle = errors.New("unknown handle")
)

// radiusHandleBearing fixes where the radius handle sits relative to the
// center: due east. A center drag re-derives the handle position at this
// bearing so it keeps representing the same numeric radius.
const radiusHandleBearing = 90.0

type HandleKind string

const (
	HandleCenter HandleKind = "center"
	HandleRadius HandleKind = "radius"
	HandleVertex HandleKind = "vertex"
)

// Handle is one draggable control point bound to a coordinate slot of the
// shape under edit.
type Handle struct {
	Kind HandleKind `json:"kind"`
	// Vertex is the polygon vertex index this handle is bound to;
	// meaningful only for HandleVertex.
	Vertex int         `json:"vertex"`
	Pos    types.Point `json:"pos"`
}

// Surface is the host map layer the session draws its dashed edit preview on.
type Surface interface {
	ShowPreview(shape fence.Shape)
	ClearPreview()
}

// NopSurface discards previews; hosts that poll session state instead of
// receiving pushes use it.
type NopSurface struct{}

func (NopSurface) ShowPreview(fence.Shape) {}
func (NopSurface) ClearPreview()           {}

// Committer receives the edited coordinates at drag-end. fence.Service
// satisfies it.
type Committer interface {
	CommitShape(ctx context.Context, id types.ID, shape fence.Shape) error
}

// Session owns a live mutable copy of one geofence's coordinates plus the
// handle markers bound to them. Drag moves touch only the copy and the
// preview; the committed fence changes exclusively at drag-end.
type Session struct {
	fenceID   types.ID
	shape     fence.Shape
	handles   []Handle
	surface   Surface
	committer Committer

	dragIndex         int
	pendingDeactivate bool
	closed            bool
}

func newSession(g *fence.Geofence, surface Surface, committer Committer) *Session {
	s := &Session{
		fenceID:   g.ID,
		shape:     cloneShape(g.Shape),
		surface:   surface,
		committer: committer,
		dragIndex: -1,
	}
	s.rebuildHandles()
	s.surface.ShowPreview(cloneShape(s.shape))
	return s
}

func (s *Session) FenceID() types.ID { return s.fenceID }

// Shape returns the session's working copy of the coordinates.
func (s *Session) Shape() fence.Shape { return cloneShape(s.shape) }

// Handles returns the current handle layout in stable order: for circles,
// center then radius; for polygons, one handle per vertex in point order.
func (s *Session) Handles() []Handle {
	out := make([]Handle, len(s.handles))
	copy(out, s.handles)
	return out
}

// Dragging reports whether a drag is in flight.
func (s *Session) Dragging() bool { return s.dragIndex >= 0 }

// DragStart begins a drag on handle i. A second concurrent drag is rejected;
// the host map delivers one drag lifecycle at a time.
func (s *Session) DragStart(i int) error {
	if s.closed {
		return ErrUnknownHandle
	}
	if i < 0 || i >= len(s.handles) {
		return ErrUnknownHandle
	}
	s.dragIndex = i
	return nil
}

// Drag moves the active handle to p, updating the working copy and the
// preview only. The committed fence is untouched until DragEnd.
func (s *Session) Drag(p types.Point) error {
	if s.dragIndex < 0 {
		return ErrUnknownHandle
	}
	h := &s.handles[s.dragIndex]
	switch h.Kind {
	case HandleCenter:
		s.shape.Center = p
		h.Pos = p
		// Keep the radius handle at the same numeric radius relative to
		// the moved center.
		for j := range s.handles {
			if s.handles[j].Kind == HandleRadius {
				s.handles[j].Pos = geo.DestinationPoint(p, radiusHandleBearing, s.shape.RadiusMeters)
			}
		}
	case HandleRadius:
		// Free drag: the radius is re-derived from the handle's distance
		// to the current center, whatever bearing it was dragged to.
		s.shape.RadiusMeters = geo.DistanceMeters(s.shape.Center, p)
		h.Pos = p
	case HandleVertex:
		s.shape.Points[h.Vertex] = p
		h.Pos = p
	}
	s.surface.ShowPreview(cloneShape(s.shape))
	return nil
}

// DragEnd finishes the drag and commits the edited coordinates. This is the
// only point at which the persisted fence changes. On a commit failure the
// working copy and preview are retained so the user can retry without
// re-editing; a deferred deactivation still runs.
func (s *Session) DragEnd(ctx context.Context) error {
	if s.dragIndex < 0 {
		return ErrUnknownHandle
	}
	s.dragIndex = -1

	err := s.committer.CommitShape(ctx, s.fenceID, cloneShape(s.shape))

	if s.pendingDeactivate {
		s.cleanup()
	}
	return err
}

// Deactivate tears the session down: handles and preview removed. A request
// racing an active drag is deferred to drag-end rather than interrupting it;
// the return value reports whether cleanup ran now.
func (s *Session) Deactivate() bool {
	if s.closed {
		return true
	}
	if s.dragIndex >= 0 {
		s.pendingDeactivate = true
		return false
	}
	s.cleanup()
	return true
}

func (s *Session) cleanup() {
	s.closed = true
	s.handles = nil
	s.surface.ClearPreview()
}

func (s *Session) rebuildHandles() {
	switch s.shape.Type {
	case fence.ShapeCircle:
		s.handles = []Handle{
			{Kind: HandleCenter, Pos: s.shape.Center},
			{Kind: HandleRadius, Pos: geo.DestinationPoint(s.shape.Center, radiusHandleBearing, s.shape.RadiusMeters)},
		}
	case fence.ShapePolygon:
		s.handles = make([]Handle, len(s.shape.Points))
		for i, p := range s.shape.Points {
			s.handles[i] = Handle{Kind: HandleVertex, Vertex: i, Pos: p}
		}
	}
}

// Manager enforces the one-session-at-a-time rule: activating edit on a
// second geofence first deactivates the current session.
type Manager struct {
	active *Session
}

func NewManager() *Manager {
	return &Manager{}
}

// Activate opens an edit session for g. If another fence is under edit it is
// deactivated first; if that session is mid-drag the activation is refused so
// the drag is never interrupted.
func (m *Manager) Activate(g *fence.Geofence, surface Surface, committer Committer) (*Session, error) {
	if m.active != nil && !m.active.closed {
		if !m.active.Deactivate() {
			return nil, ErrEditActive
		}
	}
	m.active = newSession(g, surface, committer)
	return m.active, nil
}

// Active returns the session under edit, or nil.
func (m *Manager) Active() *Session {
	if m.active == nil || m.active.closed {
		return nil
	}
	return m.active
}

// Deactivate tears down the active session, deferring if it is mid-drag.
func (m *Manager) Deactivate() bool {
	if m.active == nil {
		return true
	}
	return m.active.Deactivate()
}

func cloneShape(s fence.Shape) fence.Shape {
	out := s
	if s.Points != nil {
		out.Points = make([]types.Point, len(s.Points))
		copy(out.Points, s.Points)
	}
	return out
}
