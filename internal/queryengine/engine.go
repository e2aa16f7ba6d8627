// engine.go - Natural-language question to audited SQL answer

package queryengine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/spendscan/spendscan/configs"
	"github.com/spendscan/spendscan/internal/ai"
	"github.com/spendscan/spendscan/internal/common"
	"github.com/spendscan/spendscan/internal/storage"
)

// Engine answers spending questions by generating one SELECT, validating it,
// executing it scoped to the asking user, and recording the attempt. Every
// call writes exactly one audit entry, whatever the outcome.
type Engine struct {
	db        *gorm.DB
	client    ai.Client
	prompts   PromptBuilder
	logs      *storage.QueryLogStore
	maxRows   int
	maxTokens int32
}

// Result is the shaped answer for one question.
type Result struct {
	SQL     string           `json:"sql"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Summary string           `json:"summary"`
}

// QueryError carries the user-facing reason plus the SQL that caused it (if
// any) for logging by the caller.
type QueryError struct {
	Reason string
	SQL    string
}

func (e *QueryError) Error() string { return e.Reason }

// New builds an engine bound to the database's SQL dialect.
func New(db *gorm.DB, client ai.Client) (*Engine, error) {
	builder, err := BuilderForDialect(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	return &Engine{
		db:        db,
		client:    client,
		prompts:   builder,
		logs:      storage.NewQueryLogStore(db),
		maxRows:   configs.QUERY_MAX_ROWS,
		maxTokens: int32(configs.QUERY_MAX_OUTPUT_TOKENS),
	}, nil
}

// Run handles one question end to end for the given user.
func (e *Engine) Run(ctx context.Context, userID uint, question string, reqCtx *common.RequestContext) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &QueryError{Reason: "Question cannot be empty"}
	}

	sqlText, err := e.generate(ctx, question, reqCtx)
	if err != nil {
		reqCtx.LogError("SQL generation failed: %v", err)
		e.audit(userID, question, "", "ERROR: generation failed: "+err.Error())
		return nil, &QueryError{Reason: "Could not generate a query for that question. Try rephrasing it."}
	}
	reqCtx.LogInfo("generated SQL: %s", sqlText)

	if verr := ValidateSQL(sqlText); verr != nil {
		reqCtx.LogWarning("rejected SQL: %v", verr)
		e.audit(userID, question, sqlText, "REJECTED: "+verr.Error())
		return nil, &QueryError{Reason: "The generated query was rejected: " + verr.Error(), SQL: sqlText}
	}
	sqlText = EnsureLimit(sqlText, e.maxRows)

	result, execErr := e.execute(ctx, userID, sqlText)
	if execErr != nil {
		reqCtx.LogError("query execution failed: %v", execErr)
		e.audit(userID, question, sqlText, truncateSummary("ERROR: "+execErr.Error()))
		return nil, &QueryError{Reason: friendlyError(execErr), SQL: sqlText}
	}

	e.audit(userID, question, sqlText, result.Summary)
	return result, nil
}

func (e *Engine) generate(ctx context.Context, question string, reqCtx *common.RequestContext) (string, error) {
	prompt := e.prompts.Build(question, time.Now())
	resp, err := e.client.Generate(ctx, ai.Request{
		Prompt:          prompt,
		MaxOutputTokens: e.maxTokens,
		Temperature:     0,
	}, reqCtx)
	if err != nil {
		return "", err
	}
	sqlText := stripSQLFences(resp.Text)
	if sqlText == "" {
		return "", fmt.Errorf("model returned no SQL")
	}
	return sqlText, nil
}

// execute runs the query inside a transaction that is always rolled back, so
// nothing a validator miss could let through ever commits.
func (e *Engine) execute(ctx context.Context, userID uint, sqlText string) (*Result, error) {
	tx := e.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	rows, err := tx.Raw(sqlText, map[string]any{"user_id": userID}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	shaped := make([]map[string]any, 0, 16)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = shapeValue(col, values[i])
		}
		shaped = append(shaped, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(shaped) == 0 && hasAggregate(sqlText) && len(columns) > 0 {
		shaped = append(shaped, synthesizeZeroRow(columns))
	}

	return &Result{
		SQL:     sqlText,
		Columns: columns,
		Rows:    shaped,
		Summary: fmt.Sprintf("%d row(s) returned", len(shaped)),
	}, nil
}

// audit records the attempt. A failed audit write is logged but never masks
// the query outcome.
func (e *Engine) audit(userID uint, question, sqlText, summary string) {
	if err := e.logs.Append(userID, question, sqlText, truncateSummary(summary)); err != nil {
		log.Printf("WARN: query audit write failed: %v", err)
	}
}

func truncateSummary(s string) string {
	if len(s) > 500 {
		return s[:500]
	}
	return s
}
