// README: Position feed and alert fan-out backed by Redis.
package monitor

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"fencer/internal/types"
)

const (
	vehicleGeoKey    = "fencer:vehicles"
	vehicleIDsKey    = "fencer:vehicle_ids"
	vehicleKeyPrefix = "fencer:vehicle:"
	alertChannel     = "fencer:alerts"
)

// Store ingests vehicle positions and serves them back as the monitor's
// position feed. Positions older than maxAge are treated as feed gaps and
// omitted, never as implicit exits.
type Store struct {
	redis  *redis.Client
	maxAge time.Duration
}

func NewStore(redis *redis.Client, maxAge time.Duration) *Store {
	return &Store{redis: redis, maxAge: maxAge}
}

// SetPosition records the latest observation for a vehicle.
func (s *Store) SetPosition(ctx context.Context, pos VehiclePosition) error {
	key := vehicleKeyPrefix + string(pos.VehicleID)
	pipe := s.redis.Pipeline()
	pipe.GeoAdd(ctx, vehicleGeoKey, &redis.GeoLocation{
		Name:      string(pos.VehicleID),
		Longitude: pos.Point.Lng,
		Latitude:  pos.Point.Lat,
	})
	pipe.SAdd(ctx, vehicleIDsKey, string(pos.VehicleID))
	pipe.HSet(ctx, key, map[string]any{
		"lat": pos.Point.Lat,
		"lng": pos.Point.Lng,
		"ts":  pos.RecordedAt.UTC().Format(time.RFC3339Nano),
	})
	_, err := pipe.Exec(ctx)
	return err
}

// LatestPositions returns the fresh position of every known vehicle.
func (s *Store) LatestPositions(ctx context.Context) ([]VehiclePosition, error) {
	ids, err := s.redis.SMembers(ctx, vehicleIDsKey).Result()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-s.maxAge)
	out := make([]VehiclePosition, 0, len(ids))
	for _, id := range ids {
		fields, err := s.redis.HGetAll(ctx, vehicleKeyPrefix+id).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		lat, err1 := strconv.ParseFloat(fields["lat"], 64)
		lng, err2 := strconv.ParseFloat(fields["lng"], 64)
		ts, err3 := time.Parse(time.RFC3339Nano, fields["ts"])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if s.maxAge > 0 && ts.Before(cutoff) {
			continue
		}
		out = append(out, VehiclePosition{
			VehicleID:  types.ID(id),
			Point:      types.Point{Lat: lat, Lng: lng},
			RecordedAt: ts,
		})
	}
	return out, nil
}

// RedisPublisher fans alerts out over pub/sub for dashboard consumers.
type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(redis *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: redis}
}

func (p *RedisPublisher) PublishAlert(ctx context.Context, a *Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return p.redis.Publish(ctx, alertChannel, payload).Err()
}
