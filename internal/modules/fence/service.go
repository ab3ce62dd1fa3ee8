// README: Geofence service implements validation, ID assignment, and persistence.
package fence

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"fencer/internal/types"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateCommand struct {
	Name               string
	Color              string
	Description        string
	Active             bool
	AlertOnEnter       bool
	AlertOnExit        bool
	AssignedVehicleIDs []types.ID
	Shape              Shape
}

type UpdateCommand struct {
	ID                 types.ID
	Name               string
	Color              string
	Description        string
	Active             bool
	AlertOnEnter       bool
	AlertOnExit        bool
	AssignedVehicleIDs []types.ID
}

// Create validates the shape and persists a new fence. The returned fence
// carries its assigned ID; a store failure is reported to the caller so the
// drawn shape can be retried without redrawing.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Geofence, error) {
	if cmd.Name == "" {
		return nil, ErrBadRequest
	}
	if err := cmd.Shape.Validate(); err != nil {
		return nil, err
	}
	g := &Geofence{
		ID:                 newID(),
		Name:               cmd.Name,
		Color:              cmd.Color,
		Description:        cmd.Description,
		Active:             cmd.Active,
		AlertOnEnter:       cmd.AlertOnEnter,
		AlertOnExit:        cmd.AlertOnExit,
		AssignedVehicleIDs: cmd.AssignedVehicleIDs,
		Shape:              cmd.Shape,
		CreatedAt:          time.Now().UTC(),
	}
	g.UpdatedAt = g.CreatedAt
	if err := s.store.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("persist geofence: %w", err)
	}
	return g, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Geofence, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Geofence, error) {
	return s.store.List(ctx, false)
}

// ListActive returns the fences the containment monitor evaluates.
func (s *Service) ListActive(ctx context.Context) ([]*Geofence, error) {
	return s.store.List(ctx, true)
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Geofence, error) {
	if cmd.Name == "" {
		return nil, ErrBadRequest
	}
	g, err := s.store.Get(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	g.Name = cmd.Name
	g.Color = cmd.Color
	g.Description = cmd.Description
	g.Active = cmd.Active
	g.AlertOnEnter = cmd.AlertOnEnter
	g.AlertOnExit = cmd.AlertOnExit
	g.AssignedVehicleIDs = cmd.AssignedVehicleIDs
	g.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateMeta(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// CommitShape is the drag-end commit path from an edit session. The shape is
// re-validated so a degenerate edit never reaches storage.
func (s *Service) CommitShape(ctx context.Context, id types.ID, shape Shape) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateShape(ctx, id, shape); err != nil {
		return fmt.Errorf("persist shape: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	return s.store.Delete(ctx, id)
}

func newID() types.ID {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return types.ID(hex.EncodeToString(b))
}
