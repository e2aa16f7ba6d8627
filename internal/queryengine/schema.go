// schema.go - Queryable schema description handed to the SQL generator

package queryengine

// schemaVersion is bumped whenever the storage models change shape. The
// description below must be kept in lockstep with internal/storage/models.go;
// drift produces generated-but-invalid SQL that the safety validator cannot
// catch structurally.
const schemaVersion = 2

const schemaDescription = `
Database tables:

1. receipts:
   - id (INTEGER, primary key)
   - user_id (INTEGER, foreign key to users)
   - store_name (VARCHAR) - name of the store
   - store_address (VARCHAR)
   - store_category (VARCHAR) - one of: Grocery, Restaurant, Gas Station, Retail, Online, Service, Other
   - receipt_date (DATE) - date of the receipt
   - subtotal (FLOAT)
   - tax (FLOAT)
   - tip (FLOAT)
   - total (FLOAT) - total amount
   - payment_method (VARCHAR) - Cash, Credit, Debit, or Other
   - currency (VARCHAR, default USD)
   - notes (TEXT)

2. line_items:
   - id (INTEGER, primary key)
   - receipt_id (INTEGER, foreign key to receipts)
   - item_name (VARCHAR) - raw item name from receipt
   - normalized_name (VARCHAR) - cleaned/normalized item name
   - category (VARCHAR) - one of: Dairy, Produce, Meat, Bakery, Beverages, Snacks, Frozen, Household, Fuel, Entree, Appetizer, Dessert, Drink, Side, Clothing, Electronics, Other
   - quantity (FLOAT, default 1)
   - unit (VARCHAR) - each, lb, oz, gal, kg, L
   - unit_price (FLOAT)
   - line_total (FLOAT)
   - notes (TEXT)
   - rating (INTEGER, 1-5 stars, nullable)

3. normalized_items:
   - id (INTEGER, primary key)
   - user_id (INTEGER, foreign key to users)
   - name (VARCHAR) - canonical item name
   - category (VARCHAR)
   - default_unit (VARCHAR)

Relationships:
- receipts.id -> line_items.receipt_id (one-to-many)
- Use normalized_name in line_items for price comparisons over time
- Always filter by user_id in the receipts table (use the @user_id parameter)
- When joining line_items with receipts, join on line_items.receipt_id = receipts.id
`
