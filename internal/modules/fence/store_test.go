// README: DB-backed store tests (skipped unless FENCER_TEST_DSN is set).
package fence

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fencer/internal/types"
)

func TestStoreCreateGetRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	shape, err := NewPolygon([]types.Point{
		{Lat: 25.03, Lng: 121.56},
		{Lat: 25.04, Lng: 121.57},
		{Lat: 25.05, Lng: 121.55},
	})
	if err != nil {
		t.Fatalf("polygon: %v", err)
	}

	created, err := svc.Create(ctx, CreateCommand{
		Name:               "depot",
		Color:              "#ff0000",
		Active:             true,
		AlertOnEnter:       true,
		AssignedVehicleIDs: []types.ID{"truck-7"},
		Shape:              shape,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "depot" || !got.Active || !got.AlertOnEnter || got.AlertOnExit {
		t.Fatalf("unexpected fence: %+v", got)
	}
	if got.Shape.Type != ShapePolygon || len(got.Shape.Points) != 3 {
		t.Fatalf("shape did not round-trip: %+v", got.Shape)
	}
	for i, p := range shape.Points {
		if got.Shape.Points[i] != p {
			t.Errorf("point %d changed through storage: %+v", i, got.Shape.Points[i])
		}
	}
	if len(got.AssignedVehicleIDs) != 1 || got.AssignedVehicleIDs[0] != "truck-7" {
		t.Fatalf("assignment did not round-trip: %v", got.AssignedVehicleIDs)
	}
}

func TestStoreCommitShape(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	circle, _ := NewCircle(types.Point{Lat: 25.0, Lng: 121.5}, 300)
	created, err := svc.Create(ctx, CreateCommand{Name: "yard", Active: true, Shape: circle})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	grown, _ := NewCircle(types.Point{Lat: 25.0, Lng: 121.5}, 450)
	if err := svc.CommitShape(ctx, created.ID, grown); err != nil {
		t.Fatalf("commit shape: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Shape.RadiusMeters != 450 {
		t.Fatalf("expected radius 450, got %v", got.Shape.RadiusMeters)
	}

	// Degenerate shapes never reach storage.
	if err := svc.CommitShape(ctx, created.ID, Shape{Type: ShapeCircle}); err != ErrInvalidShape {
		t.Fatalf("expected ErrInvalidShape, got %v", err)
	}
}

func TestStoreListActive(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	circle, _ := NewCircle(types.Point{Lat: 25.0, Lng: 121.5}, 300)
	if _, err := svc.Create(ctx, CreateCommand{Name: "on", Active: true, Shape: circle}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{Name: "off", Active: false, Shape: circle}); err != nil {
		t.Fatalf("create: %v", err)
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].Name != "on" {
		t.Fatalf("expected only the active fence, got %d", len(active))
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 fences, got %d", len(all))
	}
}

func TestStoreUpdateRefreshesTimestamp(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	circle, _ := NewCircle(types.Point{Lat: 25.0, Lng: 121.5}, 300)
	created, err := svc.Create(ctx, CreateCommand{Name: "stale", Active: true, Shape: circle})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, UpdateCommand{ID: created.ID, Name: "fresh", Active: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("returned UpdatedAt not refreshed: %v vs %v", updated.UpdatedAt, created.UpdatedAt)
	}

	// The stored row carries the same timestamp the caller was shown,
	// modulo the microsecond resolution of timestamptz.
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.UpdatedAt.Equal(updated.UpdatedAt.Truncate(time.Microsecond)) {
		t.Fatalf("stored UpdatedAt %v differs from returned %v", got.UpdatedAt, updated.UpdatedAt)
	}
	if got.Name != "fresh" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestStoreDelete(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	circle, _ := NewCircle(types.Point{Lat: 25.0, Lng: 121.5}, 300)
	created, err := svc.Create(ctx, CreateCommand{Name: "gone", Active: true, Shape: circle})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != ErrNotFound {
		t.Fatalf("double delete: expected ErrNotFound, got %v", err)
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("FENCER_TEST_DSN")
	if dsn == "" {
		t.Skip("FENCER_TEST_DSN not set; skipping DB-backed store tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE geofences"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
