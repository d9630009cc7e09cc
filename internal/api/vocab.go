package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abhisek/jarvis/internal/content"
)

type lookupRequest struct {
	Word            string `json:"word"`
	ContextSentence string `json:"context_sentence,omitempty"`
	VersionID       int    `json:"version_id,omitempty"`
}

// LookupWord implements session.VocabLookup.
func (c *Client) LookupWord(ctx context.Context, word, sentence string, versionID int) (content.VocabItem, error) {
	var p content.LookupPayload
	req := lookupRequest{Word: word, ContextSentence: sentence, VersionID: versionID}
	if err := c.do(ctx, http.MethodPost, "/api/vocab/lookup", req, &p); err != nil {
		return content.VocabItem{}, fmt.Errorf("lookup %q: %w", word, err)
	}
	if p.Word == "" {
		p.Word = word
	}
	item := content.FromLookup(p)
	if item.ContextSentence == "" {
		item.ContextSentence = sentence
	}
	return item, nil
}
