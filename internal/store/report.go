package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type reportRepo struct {
	db *sql.DB
}

func (r *reportRepo) Save(ctx context.Context, rep *Report) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (session_id, article_title, quiz_correct, quiz_total, created_at, data)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rep.SessionID, rep.ArticleTitle, rep.QuizCorrect, rep.QuizTotal,
		rep.CreatedAt.UnixNano(), string(rep.Data),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rep.ID = int(id)
	}
	return nil
}

func (r *reportRepo) Recent(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, article_title, quiz_correct, quiz_total, created_at, data
		 FROM reports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var (
			rep     Report
			created int64
			data    string
		)
		if err := rows.Scan(&rep.ID, &rep.SessionID, &rep.ArticleTitle,
			&rep.QuizCorrect, &rep.QuizTotal, &created, &data); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rep.CreatedAt = time.Unix(0, created).UTC()
		rep.Data = []byte(data)
		out = append(out, rep)
	}
	return out, rows.Err()
}
