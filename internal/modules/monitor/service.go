// README: Containment monitor; detects enter/exit transitions and raises alerts.
package monitor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"sync"
	"time"

	"fencer/internal/modules/fence"
	"fencer/internal/types"
)

// FenceSource supplies the active geofence set each tick. fence.Service
// satisfies it.
type FenceSource interface {
	ListActive(ctx context.Context) ([]*fence.Geofence, error)
}

// PositionFeed supplies the latest known vehicle positions. A vehicle with no
// fresh position is simply absent: that is a skip, not an exit.
type PositionFeed interface {
	LatestPositions(ctx context.Context) ([]VehiclePosition, error)
}

// Geocoder optionally annotates alerts with a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, p types.Point) (string, error)
}

// Publisher optionally fans alerts out to external consumers.
type Publisher interface {
	PublishAlert(ctx context.Context, a *Alert) error
}

type Service struct {
	fences    FenceSource
	feed      PositionFeed
	geocoder  Geocoder
	publisher Publisher

	mu     sync.Mutex
	inside map[pairKey]bool
	alerts []*Alert
}

// NewService builds a monitor. geocoder and publisher may be nil.
func NewService(fences FenceSource, feed PositionFeed, geocoder Geocoder, publisher Publisher) *Service {
	return &Service{
		fences:    fences,
		feed:      feed,
		geocoder:  geocoder,
		publisher: publisher,
		inside:    make(map[pairKey]bool),
	}
}

// Run evaluates containment at the given interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.EvaluateTick(ctx); err != nil {
				log.Printf("containment tick failed: %v", err)
			}
		}
	}
}

// EvaluateTick runs one containment pass over every applicable
// (vehicle, geofence) pair. Re-evaluating an unchanged position is a no-op:
// alerts fire only on transitions.
//
// The first observation of a pair establishes baseline state and never
// alerts, so a vehicle already parked inside a fence does not raise a
// spurious enter on startup.
func (s *Service) EvaluateTick(ctx context.Context) error {
	fences, err := s.fences.ListActive(ctx)
	if err != nil {
		return err
	}
	positions, err := s.feed.LatestPositions(ctx)
	if err != nil {
		return err
	}

	// Transition detection runs under the lock; geocoding and publishing are
	// network calls and must not, or a slow round trip would stall Alerts
	// and Acknowledge for its duration.
	s.mu.Lock()
	var raised []*Alert
	for _, pos := range positions {
		for _, g := range fences {
			if !g.AppliesTo(pos.VehicleID) {
				continue
			}
			isInside := g.Shape.Contains(pos.Point)
			key := pairKey{vehicleID: pos.VehicleID, geofenceID: g.ID}
			prev, seen := s.inside[key]
			// State tracking is independent of the alert flags.
			s.inside[key] = isInside

			if !seen || prev == isInside {
				continue
			}
			kind := KindExit
			if isInside {
				kind = KindEnter
			}
			if kind == KindEnter && !g.AlertOnEnter {
				continue
			}
			if kind == KindExit && !g.AlertOnExit {
				continue
			}
			raised = append(raised, &Alert{
				ID:           newAlertID(),
				VehicleID:    pos.VehicleID,
				GeofenceID:   g.ID,
				GeofenceName: g.Name,
				Kind:         kind,
				Position:     pos.Point,
				At:           time.Now().UTC(),
			})
		}
	}
	s.mu.Unlock()

	for _, a := range raised {
		s.record(ctx, a)
	}
	return nil
}

// record enriches one raised alert, appends it to history, and fans it out.
// Called without s.mu held.
func (s *Service) record(ctx context.Context, a *Alert) {
	if s.geocoder != nil {
		if addr, err := s.geocoder.ReverseGeocode(ctx, a.Position); err == nil {
			a.Address = addr
		} else {
			log.Printf("reverse geocode failed: %v", err)
		}
	}

	// Newest first.
	s.mu.Lock()
	s.alerts = append([]*Alert{a}, s.alerts...)
	s.mu.Unlock()

	if s.publisher != nil {
		if err := s.publisher.PublishAlert(ctx, a); err != nil {
			log.Printf("publish alert %s: %v", a.ID, err)
		}
	}
}

// Alerts returns the alert history, newest first.
func (s *Service) Alerts(unackedOnly bool) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if unackedOnly && a.Acknowledged {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// Acknowledge flips the acknowledged flag; the alert stays in history.
func (s *Service) Acknowledge(id types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.ID == id {
			a.Acknowledged = true
			return nil
		}
	}
	return ErrAlertNotFound
}

func newAlertID() types.ID {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return types.ID(hex.EncodeToString(b))
}
