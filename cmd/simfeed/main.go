// README: Simulated vehicle feed; random-walks a fleet and pushes positions to the API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fencer/internal/geo"
	"fencer/internal/types"
)

type Config struct {
	BaseURL   string
	Vehicles  int
	Interval  time.Duration
	CenterLat float64
	CenterLng float64
	// SpreadMeters bounds the initial scatter; StepMeters bounds one move.
	SpreadMeters float64
	StepMeters   float64
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("FENCER_FEED_BASE_URL", "http://localhost:8080"), "API base URL")
	flag.IntVar(&cfg.Vehicles, "vehicles", 5, "Number of simulated vehicles")
	flag.DurationVar(&cfg.Interval, "interval", 2*time.Second, "Delay between position pushes")
	flag.Float64Var(&cfg.CenterLat, "lat", 25.0330, "Fleet center latitude")
	flag.Float64Var(&cfg.CenterLng, "lng", 121.5654, "Fleet center longitude")
	flag.Float64Var(&cfg.SpreadMeters, "spread", 3000, "Initial scatter radius in meters")
	flag.Float64Var(&cfg.StepMeters, "step", 150, "Max distance per move in meters")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	center := types.Point{Lat: cfg.CenterLat, Lng: cfg.CenterLng}
	positions := make([]types.Point, cfg.Vehicles)
	for i := range positions {
		positions[i] = geo.DestinationPoint(center, rand.Float64()*360, rand.Float64()*cfg.SpreadMeters)
	}

	httpc := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Printf("feeding %d vehicles to %s every %s", cfg.Vehicles, cfg.BaseURL, cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for i := range positions {
				positions[i] = geo.DestinationPoint(positions[i], rand.Float64()*360, rand.Float64()*cfg.StepMeters)
				if err := push(ctx, httpc, cfg.BaseURL, fmt.Sprintf("sim-%02d", i+1), positions[i]); err != nil {
					log.Printf("push sim-%02d: %v", i+1, err)
				}
			}
		}
	}
}

func push(ctx context.Context, httpc *http.Client, baseURL, vehicleID string, p types.Point) error {
	body, err := json.Marshal(map[string]float64{"lat": p.Lat, "lng": p.Lng})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/vehicles/%s/position", baseURL, vehicleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
