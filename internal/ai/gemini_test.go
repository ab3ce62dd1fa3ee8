package ai

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestSummarizeAlerts(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider, err := NewGeminiProvider(ctx, apiKey)
	if err != nil {
		t.Fatalf("provider init: %v", err)
	}
	defer provider.Close()

	now := time.Now().UTC()
	result, err := provider.SummarizeAlerts(ctx, []AlertRecord{
		{VehicleID: "truck-1", GeofenceName: "north depot", Kind: "enter", At: now.Add(-10 * time.Minute)},
		{VehicleID: "truck-1", GeofenceName: "north depot", Kind: "exit", At: now.Add(-5 * time.Minute)},
		{VehicleID: "van-3", GeofenceName: "airport zone", Kind: "enter", At: now.Add(-2 * time.Minute), Acknowledged: true},
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if result.Summary == "" {
		t.Fatal("expected a non-empty summary")
	}
}

func TestSummarizeAlertsEmpty(t *testing.T) {
	// The empty case short-circuits without a client; no API key needed.
	p := &GeminiProvider{}
	result, err := p.SummarizeAlerts(context.Background(), nil)
	if err != nil {
		t.Fatalf("summarize empty: %v", err)
	}
	if result.Summary == "" {
		t.Fatal("expected a placeholder summary for the empty window")
	}
}
