// types.go - Extraction records and enumerations

package scanner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Closed enumerations for extracted fields. Values outside these sets are
// normalized to the defaults below, never passed through.
var (
	ValidStoreCategories = map[string]bool{
		"Grocery": true, "Restaurant": true, "Gas Station": true,
		"Retail": true, "Online": true, "Service": true, "Other": true,
	}

	ValidItemCategories = map[string]bool{
		"Dairy": true, "Produce": true, "Meat": true, "Bakery": true,
		"Beverages": true, "Snacks": true, "Frozen": true, "Household": true,
		"Fuel": true, "Entree": true, "Appetizer": true, "Dessert": true,
		"Drink": true, "Side": true, "Clothing": true, "Electronics": true,
		"Other": true,
	}

	ValidUnits = map[string]bool{
		"each": true, "lb": true, "oz": true, "gal": true, "kg": true, "L": true,
	}

	ValidPaymentMethods = map[string]bool{
		"Cash": true, "Credit": true, "Debit": true, "Other": true,
	}
)

const (
	DefaultCategory = "Other"
	DefaultUnit     = "each"
)

// Number unmarshals from a JSON number, a numeric string, or null. Vision
// models occasionally quote amounts ("5.99") even when told not to.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = 0
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*n = Number(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("cannot unmarshal %s as number or string", string(data))
	}

	str = strings.TrimSpace(strings.TrimPrefix(str, "$"))
	if str == "" {
		*n = 0
		return nil
	}

	num, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return fmt.Errorf("cannot parse string %q as number: %w", str, err)
	}

	*n = Number(num)
	return nil
}

// LineItemExtraction is one extracted receipt line.
type LineItemExtraction struct {
	ItemName       string  `json:"item_name"`
	NormalizedName string  `json:"normalized_name"`
	Category       string  `json:"category"`
	Quantity       Number  `json:"quantity"`
	Unit           string  `json:"unit"`
	UnitPrice      *Number `json:"unit_price"`
	LineTotal      *Number `json:"line_total"`
}

// ReceiptExtraction is one extracted receipt. A single image may yield
// several of these.
type ReceiptExtraction struct {
	StoreName     string               `json:"store_name"`
	StoreAddress  string               `json:"store_address"`
	StoreCategory string               `json:"store_category"`
	ReceiptDate   *string              `json:"receipt_date"`
	Subtotal      *Number              `json:"subtotal"`
	Tax           *Number              `json:"tax"`
	Tip           *Number              `json:"tip"`
	Total         Number               `json:"total"`
	PaymentMethod *string              `json:"payment_method"`
	Items         []LineItemExtraction `json:"items"`

	// PhotoFilename is set by the upload handler, not the model.
	PhotoFilename string `json:"photo_filename,omitempty"`
}

// ScanError is the tagged failure result of a scan. Raw carries the model
// output that could not be handled, for diagnosis.
type ScanError struct {
	Reason string `json:"error"`
	Raw    string `json:"raw,omitempty"`
}

func (e *ScanError) Error() string {
	return e.Reason
}
