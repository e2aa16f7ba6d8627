package storage

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM query_log")
		db.Exec("DELETE FROM normalized_items")
		db.Exec("DELETE FROM line_items")
		db.Exec("DELETE FROM receipts")
	})
	return db
}

func TestQueryLogAppendAndRecent(t *testing.T) {
	store := NewQueryLogStore(testDB(t))

	for _, q := range []string{"first", "second", "third"} {
		if err := store.Append(1, q, "SELECT 1", "1 row(s) returned"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := store.Append(2, "other user", "SELECT 1", "ok"); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := store.Recent(1, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.UserID != 1 {
			t.Errorf("entry from user %d leaked into user 1's history", e.UserID)
		}
	}
}

func TestNormalizedItemEnsureAndCanonicalNames(t *testing.T) {
	store := NewNormalizedItemStore(testDB(t))

	if err := store.Ensure(1, "Whole Milk", "Dairy", "gal"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// Second call with the same name must be a no-op, not a duplicate.
	if err := store.Ensure(1, "Whole Milk", "Dairy", "gal"); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	// Empty names are skipped.
	if err := store.Ensure(1, "", "Other", "each"); err != nil {
		t.Fatalf("ensure empty: %v", err)
	}

	names, err := store.CanonicalNames(1)
	if err != nil {
		t.Fatalf("canonical names: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("got %d names, want 1", len(names))
	}
	if names["whole milk"] != "Whole Milk" {
		t.Errorf("lookup key should be lowercased, value canonical: %v", names)
	}
}

func TestReceiptCreateWithLineItems(t *testing.T) {
	store := NewReceiptStore(testDB(t))

	receipt := &Receipt{
		UserID:        1,
		StoreName:     "Market",
		StoreCategory: "Grocery",
		ReceiptDate:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Total:         12.48,
		LineItems: []LineItem{
			{ItemName: "Milk", NormalizedName: "Whole Milk", Category: "Dairy", Quantity: 1, Unit: "gal", LineTotal: 3.49},
			{ItemName: "Bread", NormalizedName: "Bread", Category: "Bakery", Quantity: 1, Unit: "each", LineTotal: 8.99},
		},
	}
	if err := store.Create(receipt); err != nil {
		t.Fatalf("create: %v", err)
	}
	if receipt.ID == 0 {
		t.Fatal("receipt id not assigned")
	}

	recent, err := store.Recent(1, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("got %d receipts, want 1", len(recent))
	}
	if len(recent[0].LineItems) != 2 {
		t.Errorf("got %d line items, want 2", len(recent[0].LineItems))
	}
}
