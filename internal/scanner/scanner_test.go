package scanner

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spendscan/spendscan/internal/ai"
	"github.com/spendscan/spendscan/internal/common"
)

// fakeClient replays scripted responses and records the requests it saw.
type fakeClient struct {
	responses []*ai.Response
	errs      []error
	requests  []ai.Request
}

func (f *fakeClient) Generate(_ context.Context, req ai.Request, _ *common.RequestContext) (*ai.Response, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return &ai.Response{FinishReason: ai.FinishOther}, nil
	}
	return f.responses[i], nil
}

func (f *fakeClient) ProviderName() string { return "fake" }

func testScanner(client ai.Client) *Scanner {
	return &Scanner{
		client:          client,
		maxDimension:    2048,
		maxBytes:        15 * 1024 * 1024,
		pdfDPI:          200,
		maxOutputTokens: 16000,
		temperature:     0.1,
	}
}

// writeTestImage drops a dummy file; image decoding fails on it so the
// pipeline takes the raw-bytes passthrough, which is all these tests need.
func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receipt.jpg")
	if err := os.WriteFile(path, []byte("not a real jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanSingleObjectResponse(t *testing.T) {
	client := &fakeClient{responses: []*ai.Response{{
		Text:         "```json\n{\"store_name\": \"Corner Shop\", \"store_category\": \"Bodega\", \"total\": 10.5, \"items\": [{\"item_name\": \"Soda\", \"line_total\": 10.5}]}\n```",
		FinishReason: ai.FinishComplete,
	}}}

	receipts, err := testScanner(client).Scan(context.Background(), writeTestImage(t), common.NewRequestContext(1))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(receipts) != 1 {
		t.Fatalf("got %d receipts, want 1", len(receipts))
	}
	r := receipts[0]
	if r.StoreName != "Corner Shop" {
		t.Errorf("store_name = %q", r.StoreName)
	}
	if r.StoreCategory != "Other" {
		t.Errorf("store_category = %q, want Other after normalization", r.StoreCategory)
	}
	if len(client.requests) != 1 {
		t.Errorf("made %d model calls, want 1", len(client.requests))
	}
	if client.requests[0].Image == nil {
		t.Error("first request carried no image")
	}
}

func TestScanContinuationAfterTruncation(t *testing.T) {
	first := `[{"store_name": "Market", "total": 5.0, "items": [{"item_name": "Milk",`
	second := ` "line_total": 5.0}]}]`
	client := &fakeClient{responses: []*ai.Response{
		{Text: first, FinishReason: ai.FinishLength},
		{Text: second, FinishReason: ai.FinishComplete},
	}}

	receipts, err := testScanner(client).Scan(context.Background(), writeTestImage(t), common.NewRequestContext(1))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(receipts) != 1 || len(receipts[0].Items) != 1 {
		t.Fatalf("got %+v, want one receipt with one item", receipts)
	}
	if receipts[0].Items[0].ItemName != "Milk" {
		t.Errorf("item_name = %q", receipts[0].Items[0].ItemName)
	}

	if len(client.requests) != 2 {
		t.Fatalf("made %d model calls, want 2", len(client.requests))
	}
	cont := client.requests[1]
	if len(cont.History) != 2 {
		t.Errorf("continuation history length = %d, want 2", len(cont.History))
	} else if cont.History[1].Text != first {
		t.Error("continuation history does not carry the partial output")
	}
	if cont.Image == nil {
		t.Error("continuation request dropped the image")
	}
}

func TestScanTruncatedWithFailedContinuationIsRepaired(t *testing.T) {
	client := &fakeClient{
		responses: []*ai.Response{
			{Text: `[{"total": 5.0, "items": [{"item_name": "Milk"`, FinishReason: ai.FinishLength},
			nil,
		},
		errs: []error{nil, errors.New("quota exhausted")},
	}

	receipts, err := testScanner(client).Scan(context.Background(), writeTestImage(t), common.NewRequestContext(1))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(receipts) != 1 || len(receipts[0].Items) != 1 {
		t.Fatalf("got %+v, want one repaired receipt with one item", receipts)
	}
}

func TestScanLogsTruncatedTransition(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	client := &fakeClient{
		responses: []*ai.Response{
			{Text: `[{"total": 5.0, "items": [{"item_name": "Milk"`, FinishReason: ai.FinishLength},
			nil,
		},
		errs: []error{nil, errors.New("quota exhausted")},
	}

	if _, err := testScanner(client).Scan(context.Background(), writeTestImage(t), common.NewRequestContext(1)); err != nil {
		t.Fatalf("scan: %v", err)
	}

	logged := buf.String()
	if !strings.Contains(logged, "truncated -> parse_failed") {
		t.Error("log missing the truncated -> parse_failed transition")
	}
	if strings.Contains(logged, "complete -> parse_failed") {
		t.Error("log claims a complete response for a truncated scan")
	}
	if !strings.Contains(logged, "repair_attempted -> parsed") {
		t.Error("log missing the repair_attempted -> parsed transition")
	}
}

func TestScanEmptyResponse(t *testing.T) {
	client := &fakeClient{responses: []*ai.Response{{Text: "", FinishReason: ai.FinishOther}}}

	_, err := testScanner(client).Scan(context.Background(), writeTestImage(t), common.NewRequestContext(1))
	var scanErr *ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("got %v, want *ScanError", err)
	}
	if scanErr.Reason != "Empty response from AI" {
		t.Errorf("reason = %q", scanErr.Reason)
	}
}

func TestScanUnparseableResponseKeepsRaw(t *testing.T) {
	raw := "I cannot read this image."
	client := &fakeClient{responses: []*ai.Response{{Text: raw, FinishReason: ai.FinishComplete}}}

	_, err := testScanner(client).Scan(context.Background(), writeTestImage(t), common.NewRequestContext(1))
	var scanErr *ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("got %v, want *ScanError", err)
	}
	if scanErr.Reason != "Unexpected AI response format" {
		t.Errorf("reason = %q", scanErr.Reason)
	}
	if scanErr.Raw != raw {
		t.Errorf("raw = %q, want original model output", scanErr.Raw)
	}
}

func TestScanModelError(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("backend unavailable")}}

	_, err := testScanner(client).Scan(context.Background(), writeTestImage(t), common.NewRequestContext(1))
	var scanErr *ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("got %v, want *ScanError", err)
	}
}
