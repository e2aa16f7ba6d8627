package storage

import (
	"gorm.io/gorm"
)

// ReceiptStore persists extracted receipts together with their line items.
type ReceiptStore struct {
	db *gorm.DB
}

func NewReceiptStore(db *gorm.DB) *ReceiptStore {
	return &ReceiptStore{db: db}
}

// Create inserts the receipt and its line items in one transaction.
func (s *ReceiptStore) Create(receipt *Receipt) error {
	return s.db.Create(receipt).Error
}

// Recent returns the user's newest receipts with line items preloaded.
func (s *ReceiptStore) Recent(userID uint, limit int) ([]Receipt, error) {
	var receipts []Receipt
	err := s.db.
		Preload("LineItems").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&receipts).Error
	return receipts, err
}
