// README: Drawing session state machine tests.
package drawing

import (
	"math"
	"testing"

	"fencer/internal/geo"
	"fencer/internal/modules/fence"
	"fencer/internal/types"
)

// recordingSurface captures every published preview for assertions.
type recordingSurface struct {
	previews []Preview
	cleared  int
}

func (r *recordingSurface) ShowPreview(p Preview) { r.previews = append(r.previews, p) }
func (r *recordingSurface) ClearPreview()         { r.cleared++ }

func (r *recordingSurface) last(t *testing.T) Preview {
	t.Helper()
	if len(r.previews) == 0 {
		t.Fatal("no preview published")
	}
	return r.previews[len(r.previews)-1]
}

var (
	saoPaulo = types.Point{Lat: -23.5505, Lng: -46.6333}
)

func TestCircleFlow(t *testing.T) {
	surface := &recordingSurface{}
	s := NewSession(surface)

	s.SetMode(ModeCircle)
	if s.State() != StateCircleCenter {
		t.Fatalf("expected circle_center, got %s", s.State())
	}
	if s.CanConfirm() {
		t.Fatal("nothing placed yet")
	}

	s.MapClick(saoPaulo)
	if s.State() != StateCircleRadius {
		t.Fatalf("expected circle_radius, got %s", s.State())
	}

	// Pointer moves continuously re-derive the radius.
	cursor := geo.DestinationPoint(saoPaulo, 90, 200)
	s.PointerMove(cursor)
	if got := surface.last(t).RadiusMeters; math.Abs(got-200) > 2 {
		t.Fatalf("expected preview radius ~200, got %f", got)
	}

	second := geo.DestinationPoint(saoPaulo, 90, 500)
	s.MapClick(second)
	if s.State() != StateCircleReady {
		t.Fatalf("expected circle_ready, got %s", s.State())
	}
	if !s.CanConfirm() {
		t.Fatal("center and radius are set")
	}

	shape, err := s.Confirm()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if shape.Type != fence.ShapeCircle || shape.Center != saoPaulo {
		t.Fatalf("unexpected shape: %+v", shape)
	}
	want := geo.DistanceMeters(saoPaulo, second)
	if math.Abs(shape.RadiusMeters-want) > want*0.01 {
		t.Fatalf("radius %f not within 1%% of click distance %f", shape.RadiusMeters, want)
	}
	if s.State() != StateIdle {
		t.Fatalf("confirm should reset to idle, got %s", s.State())
	}
	if surface.cleared == 0 {
		t.Fatal("confirm should clear the preview layer")
	}
}

func TestCircleEndToEnd500m(t *testing.T) {
	s := NewSession(nil)
	s.SetMode(ModeCircle)

	s.MapClick(saoPaulo)
	s.MapClick(geo.DestinationPoint(saoPaulo, 45, 500))

	if !s.CanConfirm() {
		t.Fatal("two clicks should make the circle confirmable")
	}
	shape, err := s.Confirm()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if math.Abs(shape.RadiusMeters-500) > 5 {
		t.Fatalf("radius %f not within 1%% of 500", shape.RadiusMeters)
	}
}

func TestCircleExtraClicksIgnored(t *testing.T) {
	s := NewSession(nil)
	s.SetMode(ModeCircle)
	s.MapClick(saoPaulo)
	s.MapClick(geo.DestinationPoint(saoPaulo, 0, 300))

	// A third click must not restart or reshape the circle.
	s.MapClick(geo.DestinationPoint(saoPaulo, 0, 900))
	shape, err := s.Confirm()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if math.Abs(shape.RadiusMeters-300) > 3 {
		t.Fatalf("third click changed the radius: %f", shape.RadiusMeters)
	}
}

func TestCircleUndoLadder(t *testing.T) {
	s := NewSession(nil)
	s.SetMode(ModeCircle)
	s.MapClick(saoPaulo)
	s.MapClick(geo.DestinationPoint(saoPaulo, 0, 300))

	s.Undo()
	if s.State() != StateCircleRadius {
		t.Fatalf("undo radius: expected circle_radius, got %s", s.State())
	}
	if s.CanConfirm() {
		t.Fatal("radius was undone")
	}

	s.Undo()
	if s.State() != StateCircleCenter {
		t.Fatalf("undo center: expected circle_center, got %s", s.State())
	}

	// Undo with nothing placed is a no-op.
	s.Undo()
	if s.State() != StateCircleCenter {
		t.Fatalf("undo on empty circle changed state to %s", s.State())
	}
}

func TestPolygonFlow(t *testing.T) {
	surface := &recordingSurface{}
	s := NewSession(surface)
	s.SetMode(ModePolygon)

	a := types.Point{Lat: -23.5505, Lng: -46.6333}
	b := geo.DestinationPoint(a, 90, 400)
	c := geo.DestinationPoint(a, 0, 400)

	s.MapClick(a)
	if s.CanConfirm() {
		t.Fatal("one point is not a polygon")
	}
	if want, got := "2 more point(s) needed", s.Instruction(); got != want {
		t.Fatalf("instruction = %q, want %q", got, want)
	}
	if surface.last(t).Closed {
		t.Fatal("preview with one point must not render closed")
	}

	s.MapClick(b)
	s.MapClick(c)
	if !s.CanConfirm() {
		t.Fatal("three points make a confirmable polygon")
	}
	if !surface.last(t).Closed {
		t.Fatal("preview with three points renders as a filled polygon")
	}

	shape, err := s.Confirm()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if shape.Type != fence.ShapePolygon || len(shape.Points) != 3 {
		t.Fatalf("unexpected shape: %+v", shape)
	}
	if shape.Points[0] != a || shape.Points[1] != b || shape.Points[2] != c {
		t.Fatal("confirm reordered polygon points")
	}
}

func TestPolygonCloseGesture(t *testing.T) {
	s := NewSession(nil)
	s.SetMode(ModePolygon)

	a := types.Point{Lat: -23.5505, Lng: -46.6333}
	s.MapClick(a)
	s.MapClick(geo.DestinationPoint(a, 90, 400))
	s.MapClick(geo.DestinationPoint(a, 0, 400))

	// A click within 50m of the first vertex closes instead of appending.
	s.MapClick(geo.DestinationPoint(a, 45, 20))
	shape, err := s.Confirm()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(shape.Points) != 3 {
		t.Fatalf("close gesture appended a vertex: %d points", len(shape.Points))
	}
}

func TestPolygonCloseGestureNeedsThreePoints(t *testing.T) {
	s := NewSession(nil)
	s.SetMode(ModePolygon)

	a := types.Point{Lat: -23.5505, Lng: -46.6333}
	s.MapClick(a)
	s.MapClick(geo.DestinationPoint(a, 90, 400))

	// Near the first point but only two vertices: the click still appends.
	s.MapClick(geo.DestinationPoint(a, 45, 20))
	if !s.CanConfirm() {
		t.Fatal("third click should have appended a vertex")
	}
}

func TestPolygonUndo(t *testing.T) {
	s := NewSession(nil)
	s.SetMode(ModePolygon)

	a := types.Point{Lat: 0, Lng: 0}
	b := types.Point{Lat: 0, Lng: 1}
	c := types.Point{Lat: 1, Lng: 1}
	s.MapClick(a)
	s.MapClick(b)
	s.MapClick(c)

	s.Undo()
	p := s.Preview()
	if len(p.Points) != 2 || p.Points[0] != a || p.Points[1] != b {
		t.Fatalf("undo should leave [A,B], got %+v", p.Points)
	}

	s.Undo()
	s.Undo()
	s.Undo() // empty: no-op
	if got := len(s.Preview().Points); got != 0 {
		t.Fatalf("expected no points after undoing all, got %d", got)
	}
	if s.State() != StatePolygonCollect {
		t.Fatalf("undo to empty stays in polygon_collect, got %s", s.State())
	}
}

func TestModeSwitchDiscards(t *testing.T) {
	s := NewSession(nil)
	s.SetMode(ModePolygon)
	s.MapClick(types.Point{Lat: 0, Lng: 0})
	s.MapClick(types.Point{Lat: 0, Lng: 1})

	s.SetMode(ModeCircle)
	if got := len(s.Preview().Points); got != 0 {
		t.Fatalf("mode switch carried %d polygon points over", got)
	}
	if s.State() != StateCircleCenter {
		t.Fatalf("expected circle_center after switch, got %s", s.State())
	}
}

func TestSetModeRefreshesPreview(t *testing.T) {
	surface := &recordingSurface{}
	s := NewSession(surface)
	s.SetMode(ModePolygon)
	s.MapClick(types.Point{Lat: 0, Lng: 0})
	s.MapClick(types.Point{Lat: 0, Lng: 1})

	// Switching tools republishes immediately; the polygon preview must not
	// linger until the first circle click.
	s.SetMode(ModeCircle)
	p := surface.last(t)
	if p.Mode != ModeCircle {
		t.Fatalf("expected a circle preview after switch, got %s", p.Mode)
	}
	if len(p.Points) != 0 || p.Center != nil {
		t.Fatalf("switch published stale geometry: %+v", p)
	}

	s.SetMode(ModeNone)
	if surface.cleared == 0 {
		t.Fatal("deselecting the tool should clear the preview layer")
	}
}

func TestBuildShapeKeepsSession(t *testing.T) {
	s := NewSession(nil)
	s.SetMode(ModeCircle)
	s.MapClick(saoPaulo)
	s.MapClick(geo.DestinationPoint(saoPaulo, 90, 500))

	shape, err := s.BuildShape()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.State() != StateCircleReady {
		t.Fatalf("building the shape must not end the session, got %s", s.State())
	}

	// The collected input survives, so a caller whose save failed can
	// build the identical shape again.
	again, err := s.BuildShape()
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if again.Center != shape.Center || again.RadiusMeters != shape.RadiusMeters {
		t.Fatalf("rebuild differs: %+v vs %+v", again, shape)
	}

	if _, err := s.Confirm(); err != nil {
		t.Fatalf("confirm after build: %v", err)
	}
	if s.State() != StateIdle {
		t.Fatalf("confirm still resets to idle, got %s", s.State())
	}
}

func TestConfirmGuards(t *testing.T) {
	s := NewSession(nil)
	if _, err := s.Confirm(); err != ErrNotReady {
		t.Fatalf("idle confirm: expected ErrNotReady, got %v", err)
	}

	s.SetMode(ModeCircle)
	s.MapClick(saoPaulo)
	if _, err := s.Confirm(); err != ErrNotReady {
		t.Fatalf("half-drawn circle: expected ErrNotReady, got %v", err)
	}

	// Degenerate geometry passes the session but fails shape validation,
	// and the collected input survives for a retry.
	s.MapClick(saoPaulo) // second click on the center: radius 0
	if _, err := s.Confirm(); err != fence.ErrInvalidShape {
		t.Fatalf("zero radius: expected ErrInvalidShape, got %v", err)
	}
	if s.State() != StateCircleReady {
		t.Fatalf("failed confirm must not lose state, got %s", s.State())
	}
	s.Undo()
	s.MapClick(geo.DestinationPoint(saoPaulo, 90, 100))
	if _, err := s.Confirm(); err != nil {
		t.Fatalf("retry after undo: %v", err)
	}
}

func TestCancelAlwaysResets(t *testing.T) {
	surface := &recordingSurface{}
	s := NewSession(surface)
	s.SetMode(ModePolygon)
	s.MapClick(types.Point{Lat: 0, Lng: 0})

	s.Cancel()
	if s.State() != StateIdle || s.Mode() != ModeNone {
		t.Fatalf("cancel should reset to idle/none, got %s/%s", s.State(), s.Mode())
	}
	if surface.cleared == 0 {
		t.Fatal("cancel should clear the preview layer")
	}
}

func TestInstructionIsDerived(t *testing.T) {
	s := NewSession(nil)
	steps := []struct {
		act  func()
		want string
	}{
		{func() {}, "select a drawing tool"},
		{func() { s.SetMode(ModeCircle) }, "click the map to place the center"},
		{func() { s.MapClick(saoPaulo) }, "move the pointer and click to set the radius"},
		{func() { s.MapClick(geo.DestinationPoint(saoPaulo, 0, 100)) }, "confirm to create the circle, or undo to adjust"},
		{func() { s.SetMode(ModePolygon) }, "3 more point(s) needed"},
	}
	for i, step := range steps {
		step.act()
		if got := s.Instruction(); got != step.want {
			t.Errorf("step %d: instruction = %q, want %q", i, got, step.want)
		}
	}
}
