// README: Drawing session state machine; turns map clicks and moves into a candidate shape.
package drawing

import (
	"errors"
	"fmt"

	"fencer/internal/geo"
	"fencer/internal/modules/fence"
	"fencer/internal/types"
)

// ErrNotReady is returned by Confirm when the session has not collected a
// confirmable shape. The UI disables the action, but the session guards it
// as well.
var ErrNotReady = errors.New("drawing not ready to confirm")

type Mode string

const (
	ModeNone    Mode = "none"
	ModeCircle  Mode = "circle"
	ModePolygon Mode = "polygon"
)

type State string

const (
	StateIdle           State = "idle"
	StateCircleCenter   State = "circle_center"   // waiting for the center click
	StateCircleRadius   State = "circle_radius"   // center placed, radius follows the pointer
	StateCircleReady    State = "circle_ready"    // both clicks in, confirm or undo
	StatePolygonCollect State = "polygon_collect" // accreting vertices until confirm
)

// closeThresholdMeters: a click this near the first vertex, once three points
// exist, closes the polygon instead of appending.
const closeThresholdMeters = 50.0

// Session accumulates map input into a new, not-yet-committed shape. It is
// ephemeral: created when a tool is selected, destroyed on confirm, cancel,
// or tool switch. One session per authoring host; all methods are called from
// the host's event loop, never concurrently.
type Session struct {
	surface Surface

	mode  Mode
	state State

	center    types.Point
	hasCenter bool
	radius    float64
	hasRadius bool

	points []types.Point
}

func NewSession(surface Surface) *Session {
	if surface == nil {
		surface = NopSurface{}
	}
	return &Session{surface: surface, mode: ModeNone, state: StateIdle}
}

func (s *Session) Mode() Mode   { return s.mode }
func (s *Session) State() State { return s.state }

// SetMode selects a drawing tool. Any in-progress points are discarded:
// switching tools mid-draw never carries state over, and the previous tool's
// preview never lingers on the surface.
func (s *Session) SetMode(m Mode) {
	s.reset()
	switch m {
	case ModeCircle:
		s.mode = ModeCircle
		s.state = StateCircleCenter
		s.publish()
	case ModePolygon:
		s.mode = ModePolygon
		s.state = StatePolygonCollect
		s.publish()
	default:
		s.mode = ModeNone
		s.state = StateIdle
		s.surface.ClearPreview()
	}
}

// MapClick feeds one host map click into the machine.
func (s *Session) MapClick(p types.Point) {
	switch s.state {
	case StateCircleCenter:
		s.center = p
		s.hasCenter = true
		s.state = StateCircleRadius
		s.publish()
	case StateCircleRadius:
		s.radius = geo.DistanceMeters(s.center, p)
		s.hasRadius = true
		s.state = StateCircleReady
		s.publish()
	case StatePolygonCollect:
		if len(s.points) >= 3 && geo.DistanceMeters(p, s.points[0]) <= closeThresholdMeters {
			// Close gesture: no new vertex, shape is ready to confirm.
			s.publish()
			return
		}
		s.points = append(s.points, p)
		s.publish()
	}
	// Clicks in any other state (idle, circle ready) are ignored.
}

// PointerMove republishes the circle preview with the radius tracking the
// cursor. A continuous side effect, not a transition; it must stay cheap
// because the host calls it on every move event.
func (s *Session) PointerMove(p types.Point) {
	if s.state != StateCircleRadius {
		return
	}
	s.radius = geo.DistanceMeters(s.center, p)
	s.publish()
}

// Undo steps the session back one input. Circle: radius, then center.
// Polygon: the last vertex. A no-op when there is nothing to remove.
func (s *Session) Undo() {
	switch s.state {
	case StateCircleReady:
		s.radius = 0
		s.hasRadius = false
		s.state = StateCircleRadius
		s.publish()
	case StateCircleRadius:
		s.center = types.Point{}
		s.hasCenter = false
		s.radius = 0
		s.state = StateCircleCenter
		s.publish()
	case StatePolygonCollect:
		if len(s.points) == 0 {
			return
		}
		s.points = s.points[:len(s.points)-1]
		s.publish()
	}
}

// CanConfirm reports whether Confirm would be accepted.
func (s *Session) CanConfirm() bool {
	switch s.mode {
	case ModeCircle:
		return s.hasCenter && s.hasRadius
	case ModePolygon:
		return len(s.points) >= 3
	default:
		return false
	}
}

// BuildShape validates and returns the collected shape without ending the
// session. Callers that persist the shape use it so a save failure never
// costs the collected input; Confirm is BuildShape plus teardown.
func (s *Session) BuildShape() (fence.Shape, error) {
	if !s.CanConfirm() {
		return fence.Shape{}, ErrNotReady
	}
	switch s.mode {
	case ModeCircle:
		return fence.NewCircle(s.center, s.radius)
	case ModePolygon:
		return fence.NewPolygon(s.points)
	default:
		return fence.Shape{}, ErrNotReady
	}
}

// Confirm validates and emits the collected shape, then resets to idle.
// A degenerate shape (zero radius, collinear duplicates) is rejected by the
// fence constructors; the session keeps its collected input so the caller can
// adjust and retry without redrawing.
func (s *Session) Confirm() (fence.Shape, error) {
	shape, err := s.BuildShape()
	if err != nil {
		return fence.Shape{}, err
	}
	s.reset()
	s.surface.ClearPreview()
	return shape, nil
}

// Cancel discards all in-progress state unconditionally.
func (s *Session) Cancel() {
	s.reset()
	s.surface.ClearPreview()
}

// Instruction is the user prompt derived purely from session state.
func (s *Session) Instruction() string {
	switch s.state {
	case StateCircleCenter:
		return "click the map to place the center"
	case StateCircleRadius:
		return "move the pointer and click to set the radius"
	case StateCircleReady:
		return "confirm to create the circle, or undo to adjust"
	case StatePolygonCollect:
		if n := 3 - len(s.points); n > 0 {
			return fmt.Sprintf("%d more point(s) needed", n)
		}
		return "click near the first point to close, or confirm"
	default:
		return "select a drawing tool"
	}
}

// Preview returns the current preview snapshot without publishing it.
func (s *Session) Preview() Preview {
	switch s.mode {
	case ModeCircle:
		p := Preview{Mode: ModeCircle, Style: circleStyle}
		if s.hasCenter {
			c := s.center
			p.Center = &c
			p.RadiusMeters = s.radius
		}
		return p
	case ModePolygon:
		pts := make([]types.Point, len(s.points))
		copy(pts, s.points)
		return Preview{
			Mode:   ModePolygon,
			Points: pts,
			Closed: len(pts) >= 3,
			Style:  polygonStyle,
		}
	default:
		return Preview{Mode: ModeNone}
	}
}

func (s *Session) publish() {
	s.surface.ShowPreview(s.Preview())
}

func (s *Session) reset() {
	s.mode = ModeNone
	s.state = StateIdle
	s.center = types.Point{}
	s.hasCenter = false
	s.radius = 0
	s.hasRadius = false
	s.points = nil
}
