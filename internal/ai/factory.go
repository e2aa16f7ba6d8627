// factory.go - Model client factory

package ai

import (
	"fmt"

	"github.com/spendscan/spendscan/configs"
	"github.com/spendscan/spendscan/internal/ratelimit"
)

// NewClientForModel creates a model client for the configured provider and
// the given model name. The limiter is shared by all clients created by the
// caller.
func NewClientForModel(model string, limiter *ratelimit.Limiter) (Client, error) {
	switch configs.AI_PROVIDER {
	case "gemini":
		return NewGeminiClient(configs.GEMINI_API_KEY, model, limiter), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s (supported: gemini)", configs.AI_PROVIDER)
	}
}
