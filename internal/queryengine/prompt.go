// prompt.go - Dialect-aware prompt construction for SQL generation

package queryengine

import (
	"fmt"
	"strings"
	"time"
)

// PromptBuilder renders the full generation prompt for one natural-language
// question. Implementations differ only in the SQL dialect guidance they
// embed; the schema description and safety rules are shared.
type PromptBuilder interface {
	Build(question string, today time.Time) string
	Dialect() string
}

// BuilderForDialect picks the prompt strategy matching the connected
// database. The dialect is fixed at startup, so an engine holds exactly one
// builder for its lifetime.
func BuilderForDialect(name string) (PromptBuilder, error) {
	switch name {
	case "sqlite":
		return sqlitePromptBuilder{}, nil
	case "postgres", "postgresql":
		return postgresPromptBuilder{}, nil
	default:
		return nil, fmt.Errorf("no prompt builder for SQL dialect %q", name)
	}
}

const promptRules = `Rules:
1. Generate ONLY a SELECT statement. Never INSERT, UPDATE, DELETE, DROP, or any other statement type.
2. ALWAYS filter receipts by user_id = @user_id. Use the literal placeholder @user_id, never a real number.
3. Return ONLY the SQL query, no explanation, no markdown fences.
4. Use clear column aliases for aggregates (e.g. SUM(total) AS total_spent).
5. When the question mentions an item, match against line_items.normalized_name with LIKE and lowercase patterns.
6. Round money aggregates to 2 decimal places.
7. Limit results to what the question needs; prefer ORDER BY with LIMIT for "top N" questions.`

type sqlitePromptBuilder struct{}

func (sqlitePromptBuilder) Dialect() string { return "sqlite" }

func (sqlitePromptBuilder) Build(question string, today time.Time) string {
	var b strings.Builder
	b.WriteString("You are a SQL expert. Generate a single SQLite SELECT query to answer the user's question about their spending.\n\n")
	b.WriteString(schemaDescription)
	b.WriteString("\n")
	b.WriteString(promptRules)
	b.WriteString("\n\nSQLite date handling (today is ")
	b.WriteString(today.Format("2006-01-02"))
	b.WriteString("):\n")
	b.WriteString(`- This month: receipt_date >= DATE('now', 'start of month')
- Last month: receipt_date >= DATE('now', 'start of month', '-1 month') AND receipt_date < DATE('now', 'start of month')
- Last 30 days: receipt_date >= DATE('now', '-30 days')
- This year: receipt_date >= DATE('now', 'start of year')
- Group by month: strftime('%Y-%m', receipt_date)
`)
	b.WriteString("\nExamples:\n")
	b.WriteString(`Q: How much did I spend on groceries last month?
SQL: SELECT ROUND(SUM(total), 2) AS total_spent FROM receipts WHERE user_id = @user_id AND store_category = 'Grocery' AND receipt_date >= DATE('now', 'start of month', '-1 month') AND receipt_date < DATE('now', 'start of month')

Q: What did I pay for milk over time?
SQL: SELECT r.receipt_date, r.store_name, li.unit_price, li.quantity FROM line_items li JOIN receipts r ON li.receipt_id = r.id WHERE r.user_id = @user_id AND LOWER(li.normalized_name) LIKE '%milk%' ORDER BY r.receipt_date
`)
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nSQL:")
	return b.String()
}

type postgresPromptBuilder struct{}

func (postgresPromptBuilder) Dialect() string { return "postgres" }

func (postgresPromptBuilder) Build(question string, today time.Time) string {
	var b strings.Builder
	b.WriteString("You are a SQL expert. Generate a single PostgreSQL SELECT query to answer the user's question about their spending.\n\n")
	b.WriteString(schemaDescription)
	b.WriteString("\n")
	b.WriteString(promptRules)
	b.WriteString("\n\nPostgreSQL date handling (today is ")
	b.WriteString(today.Format("2006-01-02"))
	b.WriteString("):\n")
	b.WriteString(`- This month: receipt_date >= DATE_TRUNC('month', CURRENT_DATE)
- Last month: receipt_date >= DATE_TRUNC('month', CURRENT_DATE) - INTERVAL '1 month' AND receipt_date < DATE_TRUNC('month', CURRENT_DATE)
- Last 30 days: receipt_date >= CURRENT_DATE - INTERVAL '30 days'
- This year: receipt_date >= DATE_TRUNC('year', CURRENT_DATE)
- Group by month: TO_CHAR(receipt_date, 'YYYY-MM')
`)
	b.WriteString("\nExamples:\n")
	b.WriteString(`Q: How much did I spend on groceries last month?
SQL: SELECT ROUND(SUM(total)::numeric, 2) AS total_spent FROM receipts WHERE user_id = @user_id AND store_category = 'Grocery' AND receipt_date >= DATE_TRUNC('month', CURRENT_DATE) - INTERVAL '1 month' AND receipt_date < DATE_TRUNC('month', CURRENT_DATE)

Q: What did I pay for milk over time?
SQL: SELECT r.receipt_date, r.store_name, li.unit_price, li.quantity FROM line_items li JOIN receipts r ON li.receipt_id = r.id WHERE r.user_id = @user_id AND LOWER(li.normalized_name) LIKE '%milk%' ORDER BY r.receipt_date
`)
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nSQL:")
	return b.String()
}
