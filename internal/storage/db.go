// db.go - Database connection and migration

package storage

import (
	"fmt"

	"github.com/spendscan/spendscan/configs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured database. The returned handle's dialector
// name ("sqlite" or "postgres") is what the query engine inspects to pick its
// SQL generation dialect.
func Open() (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}

	switch configs.DB_DRIVER {
	case "sqlite":
		return gorm.Open(sqlite.Open(configs.SQLITE_PATH), cfg)
	case "postgres":
		return gorm.Open(postgres.Open(configs.DATABASE_URL), cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s (supported: sqlite, postgres)", configs.DB_DRIVER)
	}
}

// Migrate creates or updates the schema. The schema description handed to the
// SQL generator must stay in lockstep with these models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Receipt{},
		&LineItem{},
		&NormalizedItem{},
		&QueryLog{},
	)
}
