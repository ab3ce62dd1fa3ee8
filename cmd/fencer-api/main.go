// README: Entry point; loads config, wires services, starts HTTP server and the containment monitor.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fencer/internal/ai"
	"fencer/internal/config"
	httptransport "fencer/internal/http"
	"fencer/internal/infra"
	"fencer/internal/maps"
	"fencer/internal/modules/fence"
	"fencer/internal/modules/monitor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	fenceStore := fence.NewStore(dbPool)
	fenceSvc := fence.NewService(fenceStore)

	positionStore := monitor.NewStore(redisClient, cfg.Monitor.PositionMaxAge)
	publisher := monitor.NewRedisPublisher(redisClient)

	var geocoder monitor.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		geocoder = g
	}

	monitorSvc := monitor.NewService(fenceSvc, positionStore, geocoder, publisher)

	var digest ai.DigestProvider
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer provider.Close()
		digest = provider
	}

	handler := httptransport.NewRouter(fenceSvc, positionStore, monitorSvc, digest)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go monitorSvc.Run(ctx, time.Duration(cfg.Monitor.TickSeconds)*time.Second)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
