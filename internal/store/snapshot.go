package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if len(snap.Data) == 0 {
		return fmt.Errorf("save snapshot: empty data")
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (session_id, sequence, taken_at, data) VALUES (?, ?, ?, ?)`,
		snap.SessionID, snap.Sequence, snap.TakenAt.UnixNano(), string(snap.Data),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = int(id)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, sessionID string) (*Snapshot, error) {
	var (
		s     Snapshot
		taken int64
		data  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, sequence, taken_at, data FROM snapshots
		 WHERE session_id = ? ORDER BY taken_at DESC, id DESC LIMIT 1`,
		sessionID,
	).Scan(&s.ID, &s.SessionID, &s.Sequence, &taken, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	s.TakenAt = time.Unix(0, taken).UTC()
	s.Data = []byte(data)
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, sessionID string, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE session_id = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE session_id = ?
			ORDER BY taken_at DESC, id DESC LIMIT ?
		)`,
		sessionID, sessionID, keep,
	)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
