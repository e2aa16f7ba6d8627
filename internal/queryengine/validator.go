// validator.go - Safety checks applied to generated SQL before execution

package queryengine

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenKeywords matches write/DDL verbs on word boundaries so that
// column names like "created_at" or "updated_total" do not trip it.
var forbiddenKeywords = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|EXEC|EXECUTE|GRANT|REVOKE|ATTACH|PRAGMA)\b`)

var limitClause = regexp.MustCompile(`(?i)\bLIMIT\b`)

// ValidateSQL rejects anything that is not a single plain SELECT. It is a
// defense layer, not a parser: the database user should still hold read-only
// credentials in deployments that support them.
func ValidateSQL(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	trimmed = strings.TrimRight(trimmed, "; \t\n")
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return fmt.Errorf("only SELECT queries are allowed")
	}
	if m := forbiddenKeywords.FindString(trimmed); m != "" {
		return fmt.Errorf("forbidden keyword in query: %s", strings.ToUpper(m))
	}
	if strings.Contains(trimmed, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}
	return nil
}

// EnsureLimit caps result size by appending a LIMIT when the query has none.
// An existing LIMIT anywhere in the query is trusted as-is.
func EnsureLimit(sqlText string, maxRows int) string {
	trimmed := strings.TrimRight(strings.TrimSpace(sqlText), "; \t\n")
	if limitClause.MatchString(trimmed) {
		return trimmed
	}
	return fmt.Sprintf("%s LIMIT %d", trimmed, maxRows)
}

// stripSQLFences removes markdown code fence lines that models sometimes
// wrap around their output despite instructions.
func stripSQLFences(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
