package scanner

import (
	"encoding/json"
	"testing"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n[{\"total\": 1}]\n```", `[{"total": 1}]`},
		{"```\n[{\"total\": 1}]\n```", `[{"total": 1}]`},
		{`[{"total": 1}]`, `[{"total": 1}]`},
		// Truncation can cut the closing fence off.
		{"```json\n[{\"total\": 1", `[{"total": 1`},
	}
	for _, c := range cases {
		got := stripFences(c.in)
		if got != c.want {
			t.Errorf("stripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRepairTruncatedClosesNestedDelimiters(t *testing.T) {
	raw := `[{"total": 5.0, "items": [{"item_name": "Milk"`

	fixed := repairTruncated(raw)
	if !json.Valid([]byte(fixed)) {
		t.Fatalf("repaired output is not valid JSON: %q", fixed)
	}

	receipts, err := decodeReceipts(fixed)
	if err != nil {
		t.Fatalf("decode repaired output: %v", err)
	}
	if len(receipts) != 1 {
		t.Fatalf("got %d receipts, want 1", len(receipts))
	}
	r := receipts[0]
	if float64(r.Total) != 5.0 {
		t.Errorf("total = %v, want 5.0", r.Total)
	}
	if len(r.Items) != 1 || r.Items[0].ItemName != "Milk" {
		t.Errorf("items = %+v, want one item named Milk", r.Items)
	}
}

func TestRepairTruncatedDropsUnterminatedString(t *testing.T) {
	raw := `[{"store_name": "Wal`

	fixed := repairTruncated(raw)
	if !json.Valid([]byte(fixed)) {
		t.Fatalf("repaired output is not valid JSON: %q", fixed)
	}
	receipts, err := decodeReceipts(fixed)
	if err != nil {
		t.Fatalf("decode repaired output: %v", err)
	}
	if len(receipts) != 1 {
		t.Fatalf("got %d receipts, want 1", len(receipts))
	}
	if receipts[0].StoreName != "" {
		t.Errorf("store_name = %q, want empty after dropping truncated value", receipts[0].StoreName)
	}
}

func TestRepairTruncatedTrailingComma(t *testing.T) {
	fixed := repairTruncated(`[{"total": 5.0,`)
	if fixed != `[{"total": 5.0}]` {
		t.Errorf("got %q", fixed)
	}
}

func TestRepairTruncatedCompleteInputUnchanged(t *testing.T) {
	in := `[{"total": 5.0}]`
	if got := repairTruncated(in); got != in {
		t.Errorf("got %q, want input unchanged", got)
	}
}

func TestRepairIgnoresBracketsInsideStrings(t *testing.T) {
	raw := `[{"store_name": "Joe's {Grill}", "total": 9.5`
	fixed := repairTruncated(raw)
	if !json.Valid([]byte(fixed)) {
		t.Fatalf("repaired output is not valid JSON: %q", fixed)
	}
	receipts, err := decodeReceipts(fixed)
	if err != nil {
		t.Fatalf("decode repaired output: %v", err)
	}
	if receipts[0].StoreName != "Joe's {Grill}" {
		t.Errorf("store_name = %q", receipts[0].StoreName)
	}
}

func TestDecodeReceiptsSingleObject(t *testing.T) {
	receipts, err := decodeReceipts(`{"store_name": "Shop", "total": 3.25}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(receipts) != 1 || receipts[0].StoreName != "Shop" {
		t.Errorf("got %+v", receipts)
	}
}

func TestDecodeReceiptsUnexpectedShape(t *testing.T) {
	if _, err := decodeReceipts("I cannot read this image."); err != errUnexpectedShape {
		t.Errorf("got %v, want errUnexpectedShape", err)
	}
}
