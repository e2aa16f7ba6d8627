// gemini.go - Gemini-backed implementation of the model client

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/spendscan/spendscan/internal/common"
	"github.com/spendscan/spendscan/internal/ratelimit"
	"google.golang.org/api/option"
)

// GeminiClient calls the Gemini API. One instance per model name; safe for
// concurrent use since every Generate builds its own API client.
type GeminiClient struct {
	apiKey  string
	model   string
	limiter *ratelimit.Limiter
	retry   RetryConfig
}

// NewGeminiClient creates a Gemini client for the given model. The limiter
// may be shared across clients to keep the whole process under the API's
// request-per-minute budget.
func NewGeminiClient(apiKey, model string, limiter *ratelimit.Limiter) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		limiter: limiter,
		retry:   DefaultRetryConfig,
	}
}

// ProviderName returns "gemini".
func (g *GeminiClient) ProviderName() string {
	return "gemini"
}

// Generate performs a single model invocation. When req.History is set, the
// prior turns are replayed as chat history so the model can continue its own
// earlier output.
func (g *GeminiClient) Generate(ctx context.Context, req Request, reqCtx *common.RequestContext) (*Response, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	if req.MaxOutputTokens > 0 {
		model.GenerationConfig.MaxOutputTokens = &req.MaxOutputTokens
	}
	model.SetTemperature(req.Temperature)

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.Blob{
			MIMEType: req.Image.MIMEType,
			Data:     req.Image.Data,
		})
	}

	call := func() (*genai.GenerateContentResponse, error) {
		if g.limiter != nil {
			g.limiter.Wait()
		}
		if len(req.History) == 0 {
			return model.GenerateContent(ctx, parts...)
		}
		cs := model.StartChat()
		for _, turn := range req.History {
			cs.History = append(cs.History, &genai.Content{
				Role:  turn.Role,
				Parts: []genai.Part{genai.Text(turn.Text)},
			})
		}
		return cs.SendMessage(ctx, parts...)
	}

	resp, err := callWithRetry(ctx, call, reqCtx, g.retry)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil {
			reqCtx.LogError("model returned no candidates, block reason: %v", resp.PromptFeedback.BlockReason)
		}
		return &Response{Text: "", FinishReason: FinishOther}, nil
	}

	candidate := resp.Candidates[0]

	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	out := &Response{
		Text:         sb.String(),
		FinishReason: mapFinishReason(candidate.FinishReason),
	}

	if resp.UsageMetadata != nil {
		out.Usage = common.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return out, nil
}

func mapFinishReason(reason genai.FinishReason) FinishReason {
	switch reason {
	case genai.FinishReasonStop:
		return FinishComplete
	case genai.FinishReasonMaxTokens:
		return FinishLength
	default:
		return FinishOther
	}
}
