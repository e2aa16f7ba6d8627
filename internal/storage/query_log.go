// query_log.go - Audit log store for the query engine

package storage

import (
	"gorm.io/gorm"
)

// QueryLogStore appends and reads query audit entries.
type QueryLogStore struct {
	db *gorm.DB
}

func NewQueryLogStore(db *gorm.DB) *QueryLogStore {
	return &QueryLogStore{db: db}
}

// Append writes one audit entry. Called exactly once per query attempt,
// whether the attempt was executed, rejected, or errored.
func (s *QueryLogStore) Append(userID uint, question, generatedSQL, summary string) error {
	entry := QueryLog{
		UserID:        userID,
		Question:      question,
		GeneratedSQL:  generatedSQL,
		ResultSummary: summary,
	}
	return s.db.Create(&entry).Error
}

// Recent returns the user's latest audit entries, newest first.
func (s *QueryLogStore) Recent(userID uint, limit int) ([]QueryLog, error) {
	var logs []QueryLog
	err := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
