// prompt.go - Extraction prompts

package scanner

// scanPrompt is the fixed instruction set for receipt extraction. It mandates
// a JSON array even for a single receipt so the parser has one shape to
// handle.
const scanPrompt = `Analyze this image carefully for ALL receipts. The image may contain MULTIPLE receipts.
FIRST: Count the total number of distinct receipts visible in the image. Look carefully in all areas of the image - receipts may overlap, be at angles, or be partially visible.
THEN: Extract EVERY receipt and EVERY line item from each one. Do NOT skip any receipt.

For each item, provide:
- item_name: the raw text exactly as printed on the receipt
- normalized_name: a clean, human-readable name (e.g., "LG EGGS DZ" -> "Eggs, Large, Dozen")
- category: one of: Dairy, Produce, Meat, Bakery, Beverages, Snacks, Frozen, Household, Fuel, Entree, Appetizer, Dessert, Drink, Side, Clothing, Electronics, Other
- quantity: numeric quantity (default 1)
- unit: one of: each, lb, oz, gal, kg, L (default "each")
- unit_price: price per unit
- line_total: total for this line

For each receipt:
- store_category: one of: Grocery, Restaurant, Gas Station, Retail, Online, Service, Other
- payment_method: one of: Cash, Credit, Debit, Other (if visible)

IMPORTANT: Always return a JSON ARRAY of receipts, even if there is only one receipt.

Return ONLY valid JSON (no markdown, no explanation):
[
  {
    "store_name": "...",
    "store_address": "...",
    "store_category": "...",
    "receipt_date": "YYYY-MM-DD",
    "subtotal": null,
    "tax": null,
    "tip": null,
    "total": 0.00,
    "payment_method": null,
    "items": [
      {
        "item_name": "...",
        "normalized_name": "...",
        "category": "...",
        "quantity": 1,
        "unit": "each",
        "unit_price": 0.00,
        "line_total": 0.00
      }
    ]
  }
]

If you cannot determine a value, use null. For the date, use your best guess from the receipt; if unreadable, use null.
Always include a total for each receipt. Extract every visible line item from every receipt.`

// continuePrompt asks the model to resume a truncated response.
const continuePrompt = `Your response was cut off. Continue the JSON output from exactly where you stopped. Do not repeat what you already wrote.`
