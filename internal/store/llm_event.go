package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const llmEventColumns = `sequence, provider, model, purpose, input_tokens, output_tokens,
	latency_ms, success, error_message, request_body, response_body, cost_usd, created_at`

type llmEventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *llmEventRepo) AppendLLMRequest(ctx context.Context, e LLMEvent) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO llm_events (sequence, provider, model, purpose, input_tokens,
			output_tokens, latency_ms, success, error_message, request_body,
			response_body, cost_usd, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, e.Provider, e.Model, e.Purpose, e.InputTokens,
		e.OutputTokens, e.LatencyMs, e.Success, e.ErrorMessage, e.RequestBody,
		e.ResponseBody, e.CostUSD, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("create LLM request event: %w", err)
	}
	return nil
}

func (r *llmEventRepo) Recent(ctx context.Context, limit int, purpose string) ([]LLMEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+llmEventColumns+` FROM llm_events
		 WHERE ? = '' OR purpose = ? ORDER BY sequence DESC LIMIT ?`,
		purpose, purpose, limit)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *llmEventRepo) Get(ctx context.Context, seq int64) (*LLMEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+llmEventColumns+` FROM llm_events WHERE sequence = ?`, seq)
	e, err := scanLLMEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (*LLMEvent, error) {
	var (
		e       LLMEvent
		created int64
	)
	err := row.Scan(&e.Sequence, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens,
		&e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody,
		&e.ResponseBody, &e.CostUSD, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	return &e, nil
}

func (r *llmEventRepo) Usage(ctx context.Context) ([]LLMUsage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT purpose, COUNT(*), SUM(CASE WHEN success THEN 0 ELSE 1 END),
			SUM(input_tokens), SUM(output_tokens), SUM(cost_usd)
		 FROM llm_events GROUP BY purpose ORDER BY purpose`)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.Failures,
			&u.InputTokens, &u.OutputTokens, &u.CostUSD); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
