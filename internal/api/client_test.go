package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/jarvis/internal/session"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second)
}

func TestFetchArticleVersion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/articles/3/versions/Level B", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 12,
			"article_id": 3,
			"level": "Level B",
			"title": "Tides",
			"content": "The moon pulls the sea.\n\nTwice a day the water rises.",
			"questions": [{
				"id": 5,
				"stem": "What pulls the sea?",
				"options": ["A. The sun", "B. The moon"],
				"correct_answer": "B",
				"related_paragraph_indices": [0]
			}],
			"sentence_surgeries": [{
				"original_sentence": "Twice a day the water rises.",
				"chunks_visual": [{"text": "Twice a day", "type": "modifier"}, {"text": "the water rises", "type": "core"}]
			}]
		}`))
	})

	a, err := c.FetchArticleVersion(t.Context(), 3, "Level B")
	require.NoError(t, err)
	assert.Equal(t, 12, a.VersionID)
	assert.Equal(t, "Tides", a.Title)
	require.Len(t, a.Paragraphs, 2)
	require.Len(t, a.Quiz, 1)
	assert.Equal(t, "B", a.Quiz[0].Options[1].ID)
	assert.Equal(t, "The moon", a.Quiz[0].Options[1].Text)
	require.Len(t, a.Surgeries, 1)
	assert.Equal(t, "chunk-1", a.Surgeries[0].Chunks[1].ID)
}

func TestFetchArticleVersion_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{"not found", http.StatusNotFound, `{"detail":"Version not found"}`, true},
		{"server error", http.StatusInternalServerError, `boom`, false},
		{"empty content", http.StatusOK, `{"id":1,"title":"x","content":"  "}`, false},
		{"bad json", http.StatusOK, `{"id":`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.FetchArticleVersion(t.Context(), 1, "A")
			require.Error(t, err)
			var se *StatusError
			if tt.status != http.StatusOK {
				require.True(t, errors.As(err, &se), "expected *StatusError, got %T", err)
				assert.Equal(t, tt.status, se.Status)
				assert.Equal(t, tt.notFound, se.NotFound())
			} else {
				assert.False(t, errors.As(err, &se))
			}
		})
	}
}

func TestLookupWord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/vocab/lookup", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "seismic", req["word"])
		assert.Equal(t, "a seismic shift", req["context_sentence"])
		assert.EqualValues(t, 7, req["version_id"])

		_, _ = w.Write([]byte(`{"word":"seismic","phonetic":"/ˈsaɪzmɪk/","definition":"adj. huge","syllables":["seis","mic"],"ai_memory_hint":"size-mic"}`))
	})

	item, err := c.LookupWord(t.Context(), "seismic", "a seismic shift", 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"seis", "mic"}, item.Syllables)
	assert.Equal(t, "size-mic", item.Mnemonic)
	assert.Equal(t, "a seismic shift", item.ContextSentence, "falls back to the lookup sentence")
}

func TestLookupWord_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	_, err := c.LookupWord(t.Context(), "elusive", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `lookup "elusive"`)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestSaveSessionLog(t *testing.T) {
	var got SessionLog
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id": 1}`))
	})

	report := session.Report{
		SessionID: "s-1",
		VersionID: 12,
		LookedUp:  []string{"tide"},
		Quiz: []session.QuizResult{
			{QuestionID: 1, Status: session.AnswerCorrect},
			{QuestionID: 2, Status: session.AnswerGuessed},
			{QuestionID: 3, Status: session.AnswerWrong},
		},
	}
	require.NoError(t, c.SaveSessionLog(t.Context(), SessionLogFromReport(report, 9, 3)))

	assert.Equal(t, "s-1", got.SessionID)
	assert.Equal(t, 9, got.UserID)
	assert.Equal(t, 3, got.ArticleID)
	assert.Equal(t, 12, got.VersionID)
	assert.Equal(t, []QuizOutcome{{1, true}, {2, true}, {3, false}}, got.QuizResults)
}

func TestClientHonoursContext(t *testing.T) {
	block := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err := c.FetchVersion(ctx, 1, "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
