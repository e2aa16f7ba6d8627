package common

import (
	"errors"
	"testing"
)

func TestTokenUsageAdd(t *testing.T) {
	var total TokenUsage
	total.Add(TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	total.Add(TokenUsage{InputTokens: 2, OutputTokens: 3, TotalTokens: 5})

	if total.InputTokens != 12 || total.OutputTokens != 8 || total.TotalTokens != 20 {
		t.Errorf("got %+v", total)
	}
}

func TestRequestContextTracksSteps(t *testing.T) {
	rc := NewRequestContext(7)
	if rc.RequestID == "" {
		t.Fatal("missing request id")
	}
	if rc.UserID != 7 {
		t.Errorf("user id = %d", rc.UserID)
	}

	rc.StartStep("prepare")
	rc.EndStep("success", &TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}, nil)

	rc.StartStep("model_call")
	rc.EndStep("failed", nil, errors.New("boom"))

	if len(rc.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(rc.Steps))
	}
	if rc.Steps[0].Status != "success" || rc.Steps[1].Status != "failed" {
		t.Errorf("statuses = %q, %q", rc.Steps[0].Status, rc.Steps[1].Status)
	}
	if rc.Steps[1].Error == "" {
		t.Error("failed step missing error text")
	}
	if rc.TotalTokens.TotalTokens != 150 {
		t.Errorf("total tokens = %d, want 150 (failed step tokens not counted)", rc.TotalTokens.TotalTokens)
	}
}
