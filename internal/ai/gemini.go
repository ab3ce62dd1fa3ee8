package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements DigestProvider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// SummarizeAlerts condenses recent containment alerts into an operator briefing.
func (p *GeminiProvider) SummarizeAlerts(ctx context.Context, alerts []AlertRecord) (*DigestResult, error) {
	if len(alerts) == 0 {
		return &DigestResult{Summary: "No fence activity in the selected window."}, nil
	}

	payload, err := json.Marshal(alerts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alerts: %w", err)
	}

	fullPrompt := fmt.Sprintf("%s\n\nAlerts (JSON): %s", digestSystemPrompt, payload)

	resp, err := p.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// Clean up potential markdown formatting (json mode should handle this, safety first).
	cleanJSON := cleanJSONString(responseText.String())

	var result DigestResult
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}

	return &result, nil
}

const digestSystemPrompt = `Role: You are the fleet operations assistant for a vehicle geofence monitoring dashboard.

You receive a JSON array of recent geofence alerts. Each alert has:
- vehicle_id: which vehicle triggered it
- geofence_name: which fence was crossed
- kind: "enter" or "exit"
- address: human-readable location when available
- at: RFC3339 timestamp
- acknowledged: whether an operator already handled it

TASK:
Write a short briefing (2-4 sentences) an operator can read at a glance:
- Lead with the overall picture (how many alerts, over what rough period).
- Call out repeated enter/exit churn on the same fence or vehicle.
- Mention unacknowledged alerts explicitly if any exist.
- Do not invent vehicles, fences, or events not present in the input.

Output JSON Schema:
{
  "summary": "string (the briefing)",
  "hotspots": ["geofence names with repeated activity"],
  "vehicles": ["vehicle IDs worth a closer look"]
}
`

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
