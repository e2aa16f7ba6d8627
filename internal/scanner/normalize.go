// normalize.go - Extraction validation and derived-field completion

package scanner

import (
	"github.com/shopspring/decimal"
)

// NormalizeReceipt enforces the output schema on a parsed receipt: category,
// unit, and payment-method values outside their enumerations fall back to the
// defaults, and a missing unit price or line total is derived from its
// counterpart and the quantity. No I/O; applying it twice is equivalent to
// applying it once.
func NormalizeReceipt(r *ReceiptExtraction) {
	if !ValidStoreCategories[r.StoreCategory] {
		r.StoreCategory = DefaultCategory
	}

	if r.PaymentMethod != nil && !ValidPaymentMethods[*r.PaymentMethod] {
		r.PaymentMethod = nil
	}

	for i := range r.Items {
		normalizeItem(&r.Items[i])
	}
}

func normalizeItem(item *LineItemExtraction) {
	if !ValidItemCategories[item.Category] {
		item.Category = DefaultCategory
	}
	if !ValidUnits[item.Unit] {
		item.Unit = DefaultUnit
	}

	if item.Quantity == 0 {
		item.Quantity = 1
	}

	quantity := float64(item.Quantity)
	unitPrice := numberValue(item.UnitPrice)
	lineTotal := numberValue(item.LineTotal)

	// Zero, null, and missing all count as absent here; a $0.00 line carries
	// no information either way.
	if unitPrice == 0 && lineTotal != 0 {
		derived := Number(round2(lineTotal / quantity))
		item.UnitPrice = &derived
	}
	if lineTotal == 0 && unitPrice != 0 {
		derived := Number(round2(unitPrice * quantity))
		item.LineTotal = &derived
	}
}

func numberValue(n *Number) float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}
