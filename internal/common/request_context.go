// request_context.go - Request tracking and logging

package common

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// RequestContext tracks one request's lifecycle: step timing, token usage,
// and request-id prefixed logging. One instance per inbound request, never
// shared across requests.
type RequestContext struct {
	RequestID        string
	UserID           uint
	StartTime        time.Time
	Steps            []StepLog
	TotalTokens      TokenUsage
	CurrentStep      string
	CurrentStepStart time.Time
}

// StepLog represents a single processing step
type StepLog struct {
	Name      string      `json:"name"`
	StartTime time.Time   `json:"start_time"`
	Duration  int64       `json:"duration_ms"`
	Status    string      `json:"status"` // "success", "failed", "skipped"
	Tokens    *TokenUsage `json:"tokens,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// TokenUsage tracks model token consumption for one or more calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates another usage report into this one.
func (tu *TokenUsage) Add(other TokenUsage) {
	tu.InputTokens += other.InputTokens
	tu.OutputTokens += other.OutputTokens
	tu.TotalTokens += other.TotalTokens
}

// NewRequestContext creates a new request tracking context
func NewRequestContext(userID uint) *RequestContext {
	reqID := uuid.New().String()

	return &RequestContext{
		RequestID: reqID,
		UserID:    userID,
		StartTime: time.Now(),
		Steps:     []StepLog{},
	}
}

// StartStep begins tracking a new processing step
func (rc *RequestContext) StartStep(stepName string) {
	rc.CurrentStep = stepName
	rc.CurrentStepStart = time.Now()
	log.Printf("[%s] step %s started", rc.RequestID, stepName)
}

// EndStep completes the current step and records timing
func (rc *RequestContext) EndStep(status string, tokens *TokenUsage, err error) {
	duration := time.Since(rc.CurrentStepStart).Milliseconds()

	stepLog := StepLog{
		Name:      rc.CurrentStep,
		StartTime: rc.CurrentStepStart,
		Duration:  duration,
		Status:    status,
		Tokens:    tokens,
	}

	if err != nil {
		stepLog.Error = err.Error()
		log.Printf("[%s] step %s failed after %.2fs: %v",
			rc.RequestID, rc.CurrentStep, float64(duration)/1000, err)
	} else {
		msg := fmt.Sprintf("[%s] step %s done in %.2fs",
			rc.RequestID, rc.CurrentStep, float64(duration)/1000)
		if tokens != nil {
			rc.TotalTokens.Add(*tokens)
			msg += fmt.Sprintf(" (tokens in=%d out=%d)", tokens.InputTokens, tokens.OutputTokens)
		}
		log.Print(msg)
	}

	rc.Steps = append(rc.Steps, stepLog)
	rc.CurrentStep = ""
}

// LogInfo logs an info-level message with the request ID prefix.
func (rc *RequestContext) LogInfo(format string, args ...interface{}) {
	log.Printf("[%s] %s", rc.RequestID, fmt.Sprintf(format, args...))
}

// LogWarning logs a warning-level message with the request ID prefix.
func (rc *RequestContext) LogWarning(format string, args ...interface{}) {
	log.Printf("[%s] WARN: %s", rc.RequestID, fmt.Sprintf(format, args...))
}

// LogError logs an error-level message with the request ID prefix.
func (rc *RequestContext) LogError(format string, args ...interface{}) {
	log.Printf("[%s] ERROR: %s", rc.RequestID, fmt.Sprintf(format, args...))
}
