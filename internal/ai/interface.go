package ai

import (
	"context"
)

// DigestProvider defines the contract for interacting with AI models.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type DigestProvider interface {
	// SummarizeAlerts condenses a batch of recent containment alerts into a
	// short operator briefing.
	SummarizeAlerts(ctx context.Context, alerts []AlertRecord) (*DigestResult, error)
}
