// README: Geofence store backed by PostgreSQL.
package fence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fencer/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, g *Geofence) error {
	shape, err := json.Marshal(g.Shape)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO geofences (
			id, name, color, description, active,
			alert_on_enter, alert_on_exit, assigned_vehicles,
			shape, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		string(g.ID),
		g.Name,
		g.Color,
		g.Description,
		g.Active,
		g.AlertOnEnter,
		g.AlertOnExit,
		toStrings(g.AssignedVehicleIDs),
		shape,
		g.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Geofence, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, color, description, active,
		       alert_on_enter, alert_on_exit, assigned_vehicles,
		       shape, created_at, updated_at
		FROM geofences
		WHERE id = $1`, string(id),
	)
	return scanGeofence(row)
}

func (s *Store) List(ctx context.Context, activeOnly bool) ([]*Geofence, error) {
	query := `
		SELECT id, name, color, description, active,
		       alert_on_enter, alert_on_exit, assigned_vehicles,
		       shape, created_at, updated_at
		FROM geofences`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Geofence
	for rows.Next() {
		g, err := scanGeofence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateMeta writes everything except the shape. The caller sets UpdatedAt;
// the stored row carries the same timestamp the returned aggregate reports.
func (s *Store) UpdateMeta(ctx context.Context, g *Geofence) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE geofences
		SET name = $1, color = $2, description = $3, active = $4,
		    alert_on_enter = $5, alert_on_exit = $6, assigned_vehicles = $7,
		    updated_at = $8
		WHERE id = $9`,
		g.Name, g.Color, g.Description, g.Active,
		g.AlertOnEnter, g.AlertOnExit, toStrings(g.AssignedVehicleIDs),
		g.UpdatedAt, string(g.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateShape is the edit-commit path: only the coordinates payload changes.
func (s *Store) UpdateShape(ctx context.Context, id types.ID, shape Shape) error {
	raw, err := json.Marshal(shape)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE geofences
		SET shape = $1, updated_at = NOW()
		WHERE id = $2`,
		raw, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM geofences WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeofence(row rowScanner) (*Geofence, error) {
	var g Geofence
	var assigned []string
	var shape []byte

	err := row.Scan(
		&g.ID, &g.Name, &g.Color, &g.Description, &g.Active,
		&g.AlertOnEnter, &g.AlertOnExit, &assigned,
		&shape, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shape, &g.Shape); err != nil {
		return nil, err
	}
	for _, v := range assigned {
		g.AssignedVehicleIDs = append(g.AssignedVehicleIDs, types.ID(v))
	}
	return &g, nil
}

func toStrings(ids []types.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
