// models.go - Persisted schema

package storage

import (
	"time"
)

// User owns receipts, normalized items, and query log entries. Authentication
// lives outside this service; the row exists so foreign keys hold.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:256;not null"`
	CreatedAt    time.Time
}

// Receipt is one stored receipt.
type Receipt struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;index:ix_receipts_user_date;index:ix_receipts_user_category"`
	StoreName     string    `gorm:"size:255"`
	StoreAddress  string    `gorm:"size:500"`
	StoreCategory string    `gorm:"size:50;index:ix_receipts_user_category"`
	ReceiptDate   time.Time `gorm:"type:date;not null;index:ix_receipts_user_date"`
	Subtotal      *float64
	Tax           *float64
	Tip           *float64
	Total         float64 `gorm:"not null"`
	PaymentMethod string  `gorm:"size:50"`
	Currency      string  `gorm:"size:10;default:USD"`
	PhotoFilename string  `gorm:"size:255"`
	Notes         string  `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	LineItems []LineItem `gorm:"constraint:OnDelete:CASCADE"`
}

// LineItem is one line of a receipt.
type LineItem struct {
	ID             uint   `gorm:"primaryKey"`
	ReceiptID      uint   `gorm:"not null;index:ix_line_items_receipt"`
	ItemName       string `gorm:"size:255;not null"`
	NormalizedName string `gorm:"size:255;index:ix_line_items_normalized"`
	Category       string `gorm:"size:50"`
	Quantity       float64 `gorm:"default:1"`
	Unit           string  `gorm:"size:20;default:each"`
	UnitPrice      *float64
	LineTotal      float64 `gorm:"not null"`
	Notes          string  `gorm:"type:text"`
	Rating         *int
	CreatedAt      time.Time
}

// NormalizedItem is the per-user canonical item vocabulary. One row per
// (user, name); scans look names up here to keep casing and spelling stable
// across receipts.
type NormalizedItem struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"not null;uniqueIndex:uq_normalized_user_name"`
	Name        string `gorm:"size:255;not null;uniqueIndex:uq_normalized_user_name"`
	Category    string `gorm:"size:50"`
	DefaultUnit string `gorm:"size:20"`
	CreatedAt   time.Time
}

// QueryLog is the audit trail of natural-language query attempts. One row is
// written per attempt regardless of outcome.
type QueryLog struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"not null;index"`
	Question      string `gorm:"type:text;not null"`
	GeneratedSQL  string `gorm:"column:generated_sql;type:text"`
	ResultSummary string `gorm:"type:text"`
	CreatedAt     time.Time
}

// TableName keeps the audit table's historical singular name.
func (QueryLog) TableName() string {
	return "query_log"
}
