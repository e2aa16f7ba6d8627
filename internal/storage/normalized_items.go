// normalized_items.go - Per-user canonical item vocabulary

package storage

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"
)

// NormalizedItemStore maintains the (user, name) vocabulary of canonical item
// names.
type NormalizedItemStore struct {
	db *gorm.DB
}

func NewNormalizedItemStore(db *gorm.DB) *NormalizedItemStore {
	return &NormalizedItemStore{db: db}
}

// CanonicalNames returns the user's vocabulary keyed by lowercased name, so
// extracted names can be matched case-insensitively and replaced with their
// stored spelling.
func (s *NormalizedItemStore) CanonicalNames(userID uint) (map[string]string, error) {
	var items []NormalizedItem
	if err := s.db.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}

	canonical := make(map[string]string, len(items))
	for _, item := range items {
		canonical[strings.ToLower(item.Name)] = item.Name
	}
	return canonical, nil
}

// Ensure inserts the name into the vocabulary if it is not already there.
// Concurrent scans can race on the same (user, name); the unique constraint
// makes the loser a harmless duplicate, logged and swallowed.
func (s *NormalizedItemStore) Ensure(userID uint, name, category, unit string) error {
	if name == "" {
		return nil
	}

	var existing NormalizedItem
	err := s.db.Where("user_id = ? AND name = ?", userID, name).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	item := NormalizedItem{
		UserID:      userID,
		Name:        name,
		Category:    category,
		DefaultUnit: unit,
	}
	if err := s.db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("WARN: normalized item %q already exists for user %d", name, userID)
			return nil
		}
		return err
	}
	return nil
}
