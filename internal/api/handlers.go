// handlers.go - HTTP handlers over the extraction and query engines

package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/spendscan/spendscan/configs"
	"github.com/spendscan/spendscan/internal/common"
	"github.com/spendscan/spendscan/internal/queryengine"
	"github.com/spendscan/spendscan/internal/scanner"
	"github.com/spendscan/spendscan/internal/storage"
)

var allowedUploadExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".pdf": true,
}

// Handler bundles the engines and stores behind the HTTP surface.
type Handler struct {
	scanner   *scanner.Scanner
	engine    *queryengine.Engine
	receipts  *storage.ReceiptStore
	items     *storage.NormalizedItemStore
	logs      *storage.QueryLogStore
	uploadDir string
}

func NewHandler(sc *scanner.Scanner, eng *queryengine.Engine, receipts *storage.ReceiptStore, items *storage.NormalizedItemStore, logs *storage.QueryLogStore) *Handler {
	return &Handler{
		scanner:   sc,
		engine:    eng,
		receipts:  receipts,
		items:     items,
		logs:      logs,
		uploadDir: configs.UPLOAD_DIR,
	}
}

// currentUser resolves the caller from the X-User-ID header. Real
// authentication sits in front of this service; the header is the trusted
// identity it forwards.
func currentUser(c *gin.Context) (uint, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid X-User-ID header"})
		return 0, false
	}
	return uint(id), true
}

// Scan accepts a multipart receipt upload, extracts its receipts, and
// persists them for the calling user.
func (h *Handler) Scan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type %s", ext)})
		return
	}

	storedName := uuid.New().String() + ext
	storedPath := filepath.Join(h.uploadDir, storedName)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	reqCtx := common.NewRequestContext(userID)
	reqCtx.LogInfo("scan request: %s (%d bytes)", file.Filename, file.Size)

	extractions, err := h.scanner.Scan(c.Request.Context(), storedPath, reqCtx)
	if err != nil {
		os.Remove(storedPath)
		var scanErr *scanner.ScanError
		if errors.As(err, &scanErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": scanErr.Reason, "raw": scanErr.Raw})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "receipt extraction failed"})
		return
	}

	saved := make([]storage.Receipt, 0, len(extractions))
	for i := range extractions {
		h.canonicalizeItems(userID, &extractions[i], reqCtx)
		receipt := receiptFromExtraction(userID, storedName, &extractions[i])
		if err := h.receipts.Create(receipt); err != nil {
			reqCtx.LogError("failed to save receipt: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save receipt"})
			return
		}
		saved = append(saved, *receipt)
	}

	c.JSON(http.StatusCreated, gin.H{
		"request_id": reqCtx.RequestID,
		"receipts":   saved,
		"tokens":     reqCtx.TotalTokens,
	})
}

// canonicalizeItems rewrites each normalized name to the user's canonical
// spelling, registering names seen for the first time.
func (h *Handler) canonicalizeItems(userID uint, extraction *scanner.ReceiptExtraction, reqCtx *common.RequestContext) {
	canonical, err := h.items.CanonicalNames(userID)
	if err != nil {
		reqCtx.LogWarning("canonical name lookup failed: %v", err)
		return
	}
	for i := range extraction.Items {
		item := &extraction.Items[i]
		if item.NormalizedName == "" {
			continue
		}
		if known, ok := canonical[strings.ToLower(item.NormalizedName)]; ok {
			item.NormalizedName = known
			continue
		}
		if err := h.items.Ensure(userID, item.NormalizedName, item.Category, item.Unit); err != nil {
			reqCtx.LogWarning("failed to register item %q: %v", item.NormalizedName, err)
		}
		canonical[strings.ToLower(item.NormalizedName)] = item.NormalizedName
	}
}

func receiptFromExtraction(userID uint, storedName string, e *scanner.ReceiptExtraction) *storage.Receipt {
	receiptDate := time.Now().Truncate(24 * time.Hour)
	if e.ReceiptDate != nil {
		if parsed, err := time.Parse("2006-01-02", *e.ReceiptDate); err == nil {
			receiptDate = parsed
		}
	}
	receipt := &storage.Receipt{
		UserID:        userID,
		StoreName:     e.StoreName,
		StoreAddress:  e.StoreAddress,
		StoreCategory: e.StoreCategory,
		ReceiptDate:   receiptDate,
		Subtotal:      numberPtr(e.Subtotal),
		Tax:           numberPtr(e.Tax),
		Tip:           numberPtr(e.Tip),
		Total:         float64(e.Total),
		PhotoFilename: storedName,
	}
	if e.PaymentMethod != nil {
		receipt.PaymentMethod = *e.PaymentMethod
	}
	for _, item := range e.Items {
		lineItem := storage.LineItem{
			ItemName:       item.ItemName,
			NormalizedName: item.NormalizedName,
			Category:       item.Category,
			Quantity:       float64(item.Quantity),
			Unit:           item.Unit,
			UnitPrice:      numberPtr(item.UnitPrice),
		}
		if item.LineTotal != nil {
			lineItem.LineTotal = float64(*item.LineTotal)
		}
		receipt.LineItems = append(receipt.LineItems, lineItem)
	}
	return receipt
}

func numberPtr(n *scanner.Number) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

type queryRequest struct {
	Question string `json:"question" binding:"required"`
}

// Query answers one natural-language spending question.
func (h *Handler) Query(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	reqCtx := common.NewRequestContext(userID)
	reqCtx.LogInfo("query request: %s", req.Question)

	result, err := h.engine.Run(c.Request.Context(), userID, req.Question, reqCtx)
	if err != nil {
		var queryErr *queryengine.QueryError
		if errors.As(err, &queryErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": queryErr.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": reqCtx.RequestID,
		"sql":        result.SQL,
		"columns":    result.Columns,
		"rows":       result.Rows,
		"summary":    result.Summary,
	})
}

// QueryHistory lists the caller's recent query attempts.
func (h *Handler) QueryHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	entries, err := h.logs.Recent(userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
