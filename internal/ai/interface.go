// interface.go - Model client interface shared by the extraction and query engines

package ai

import (
	"context"

	"github.com/spendscan/spendscan/internal/common"
)

// FinishReason reports how the model ended its response.
type FinishReason string

const (
	// FinishComplete means the model finished on its own.
	FinishComplete FinishReason = "complete"
	// FinishLength means the response was cut off by the output token budget.
	FinishLength FinishReason = "length"
	// FinishOther covers safety blocks and anything else.
	FinishOther FinishReason = "other"
)

// ImagePayload is an inline image attached to a request.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// Turn is one prior exchange in a multi-turn request. Role is "user" or
// "model". The scanner uses this to ask the model to continue a truncated
// response without repeating itself.
type Turn struct {
	Role string
	Text string
}

// Request is a single model invocation.
type Request struct {
	Prompt          string
	Image           *ImagePayload
	History         []Turn
	MaxOutputTokens int32
	Temperature     float32
}

// Response carries the model output plus bookkeeping.
type Response struct {
	Text         string
	FinishReason FinishReason
	Usage        common.TokenUsage
}

// Client is the seam between the engines and a concrete model provider.
type Client interface {
	Generate(ctx context.Context, req Request, reqCtx *common.RequestContext) (*Response, error)
	ProviderName() string
}
