// scanner.go - Receipt extraction pipeline

package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spendscan/spendscan/configs"
	"github.com/spendscan/spendscan/internal/ai"
	"github.com/spendscan/spendscan/internal/common"
	"github.com/spendscan/spendscan/internal/processor"
)

// scanState names a stage of the extraction pipeline. Transitions are logged
// so a failed scan can be reconstructed from the request log alone.
type scanState string

const (
	stateRequested       scanState = "requested"
	stateComplete        scanState = "complete"
	stateTruncated       scanState = "truncated"
	stateParsed          scanState = "parsed"
	stateParseFailed     scanState = "parse_failed"
	stateRepairAttempted scanState = "repair_attempted"
	stateFailed          scanState = "failed"
)

// Scanner turns a receipt image or PDF into validated extraction records.
// Each Scan call is self-contained; the Scanner holds no per-request state.
type Scanner struct {
	client          ai.Client
	maxDimension    int
	maxBytes        int
	pdfDPI          int
	maxOutputTokens int32
	temperature     float32
}

// New creates a Scanner using the process configuration.
func New(client ai.Client) *Scanner {
	return &Scanner{
		client:          client,
		maxDimension:    configs.MAX_IMAGE_DIMENSION,
		maxBytes:        configs.MAX_IMAGE_BYTES,
		pdfDPI:          configs.PDF_RENDER_DPI,
		maxOutputTokens: int32(configs.SCAN_MAX_OUTPUT_TOKENS),
		temperature:     float32(configs.SCAN_TEMPERATURE),
	}
}

// Scan extracts every receipt from the file at path. All failures come back
// as *ScanError values rather than panics or bare errors, and any temp file
// created for PDF rasterization is removed on every exit path.
func (s *Scanner) Scan(ctx context.Context, path string, reqCtx *common.RequestContext) ([]ReceiptExtraction, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pagePath, err := processor.RenderPDFFirstPage(path, s.pdfDPI)
		if err != nil {
			reqCtx.LogError("PDF rasterization failed: %v", err)
			return nil, &ScanError{Reason: "Could not convert PDF"}
		}
		defer os.Remove(pagePath)
		path = pagePath
	}

	imageData, mimeType, err := processor.PrepareImage(path, s.maxDimension, s.maxBytes)
	if err != nil {
		return nil, &ScanError{Reason: fmt.Sprintf("Could not read image: %v", err)}
	}
	reqCtx.LogInfo("prepared image: %d bytes (%s)", len(imageData), mimeType)

	raw, state, err := s.callModel(ctx, imageData, mimeType, reqCtx)
	if err != nil {
		return nil, err
	}

	receipts, scanErr := s.parse(raw, state, reqCtx)
	if scanErr != nil {
		return nil, scanErr
	}

	for i := range receipts {
		NormalizeReceipt(&receipts[i])
	}
	return receipts, nil
}

// callModel performs the extraction call, issuing one continuation request if
// the first response was cut off by the token budget. The returned state is
// stateComplete or stateTruncated, depending on which path produced the text.
func (s *Scanner) callModel(ctx context.Context, imageData []byte, mimeType string, reqCtx *common.RequestContext) (string, scanState, error) {
	s.transition(reqCtx, "", stateRequested)

	resp, err := s.client.Generate(ctx, ai.Request{
		Prompt:          scanPrompt,
		Image:           &ai.ImagePayload{MIMEType: mimeType, Data: imageData},
		MaxOutputTokens: s.maxOutputTokens,
		Temperature:     s.temperature,
	}, reqCtx)
	if err != nil {
		s.transition(reqCtx, stateRequested, stateFailed)
		return "", stateFailed, &ScanError{Reason: fmt.Sprintf("Model request failed: %v", err)}
	}

	raw := resp.Text
	if raw == "" {
		s.transition(reqCtx, stateRequested, stateFailed)
		return "", stateFailed, &ScanError{Reason: "Empty response from AI"}
	}

	if resp.FinishReason != ai.FinishLength {
		s.transition(reqCtx, stateRequested, stateComplete)
		return raw, stateComplete, nil
	}

	s.transition(reqCtx, stateRequested, stateTruncated)
	cont, err := s.client.Generate(ctx, ai.Request{
		Prompt: continuePrompt,
		Image:  &ai.ImagePayload{MIMEType: mimeType, Data: imageData},
		History: []ai.Turn{
			{Role: "user", Text: scanPrompt},
			{Role: "model", Text: raw},
		},
		MaxOutputTokens: s.maxOutputTokens,
		Temperature:     s.temperature,
	}, reqCtx)
	if err != nil {
		// The partial output may still be repairable; carry on with it.
		reqCtx.LogWarning("continuation request failed, keeping partial output: %v", err)
		return raw, stateTruncated, nil
	}
	if cont.Text != "" {
		raw += cont.Text
	}
	return raw, stateTruncated, nil
}

// parse decodes the model output, attempting one bracket-balancing repair if
// the JSON is malformed. prior is the state the text arrived in, so the
// logged transitions reflect whether a truncated response is being parsed.
func (s *Scanner) parse(raw string, prior scanState, reqCtx *common.RequestContext) ([]ReceiptExtraction, *ScanError) {
	text := stripFences(raw)

	receipts, err := decodeReceipts(text)
	if err == nil {
		s.transition(reqCtx, prior, stateParsed)
		return receipts, nil
	}

	s.transition(reqCtx, prior, stateParseFailed)

	if err == errUnexpectedShape {
		s.transition(reqCtx, stateParseFailed, stateFailed)
		return nil, &ScanError{Reason: "Unexpected AI response format", Raw: raw}
	}

	s.transition(reqCtx, stateParseFailed, stateRepairAttempted)

	receipts, err = decodeReceipts(repairTruncated(text))
	if err != nil {
		s.transition(reqCtx, stateRepairAttempted, stateFailed)
		return nil, &ScanError{Reason: "Failed to parse AI response", Raw: raw}
	}

	s.transition(reqCtx, stateRepairAttempted, stateParsed)
	return receipts, nil
}

func (s *Scanner) transition(reqCtx *common.RequestContext, from, to scanState) {
	if from == "" {
		reqCtx.LogInfo("scan state: %s", to)
		return
	}
	reqCtx.LogInfo("scan state: %s -> %s", from, to)
}
