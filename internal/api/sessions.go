package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abhisek/jarvis/internal/session"
)

// QuizOutcome is one graded question in a session log.
type QuizOutcome struct {
	QuestionID int  `json:"questionId"`
	Correct    bool `json:"correct"`
}

// SessionLog is the lesson record the backend keeps per student.
type SessionLog struct {
	SessionID     string        `json:"session_id"`
	UserID        int           `json:"user_id"`
	ArticleID     int           `json:"article_id"`
	VersionID     int           `json:"version_id"`
	LookedUpWords []string      `json:"looked_up_words"`
	QuizResults   []QuizOutcome `json:"quiz_results"`
	ReadingSpeed  *float64      `json:"reading_speed,omitempty"`
}

// SessionLogFromReport builds the upload for a finished lesson. Guessed
// answers count as correct.
func SessionLogFromReport(r session.Report, userID, articleID int) SessionLog {
	log := SessionLog{
		SessionID:     r.SessionID,
		UserID:        userID,
		ArticleID:     articleID,
		VersionID:     r.VersionID,
		LookedUpWords: append([]string{}, r.LookedUp...),
		QuizResults:   make([]QuizOutcome, 0, len(r.Quiz)),
	}
	for _, q := range r.Quiz {
		log.QuizResults = append(log.QuizResults, QuizOutcome{
			QuestionID: q.QuestionID,
			Correct:    q.Status != session.AnswerWrong,
		})
	}
	return log
}

// SaveSessionLog uploads a session log.
func (c *Client) SaveSessionLog(ctx context.Context, log SessionLog) error {
	if err := c.do(ctx, http.MethodPost, "/api/sessions", log, nil); err != nil {
		return fmt.Errorf("save session log %s: %w", log.SessionID, err)
	}
	return nil
}
