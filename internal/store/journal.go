package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type journalRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *journalRepo) Append(ctx context.Context, e JournalEntry) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, err
	}

	var args any
	if len(e.Args) > 0 {
		args = string(e.Args)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO journal (sequence, session_id, kind, actor, origin, args, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		seqNum, e.SessionID, e.Kind, e.Actor, e.Origin, args, e.At.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", e.Kind, err)
	}
	return seqNum, nil
}

func (r *journalRepo) List(ctx context.Context, sessionID string, opts QueryOpts) ([]JournalEntry, error) {
	q := `SELECT sequence, session_id, kind, actor, origin, args, at
	      FROM journal WHERE session_id = ? AND sequence > ? ORDER BY sequence`
	params := []any{sessionID, opts.After}
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		params = append(params, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var (
			e    JournalEntry
			args sql.NullString
			at   int64
		)
		if err := rows.Scan(&e.Sequence, &e.SessionID, &e.Kind, &e.Actor, &e.Origin, &args, &at); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		if args.Valid {
			e.Args = []byte(args.String)
		}
		e.At = time.Unix(0, at).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *journalRepo) Sessions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id FROM journal GROUP BY session_id ORDER BY MAX(sequence) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
