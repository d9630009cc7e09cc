package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abhisek/jarvis/internal/content"
)

// FetchVersion returns the raw backend payload of an article version.
func (c *Client) FetchVersion(ctx context.Context, articleID int, level string) (content.VersionPayload, error) {
	var p content.VersionPayload
	if err := c.do(ctx, http.MethodGet, versionPath(articleID, level), nil, &p); err != nil {
		return content.VersionPayload{}, fmt.Errorf("fetch article %d version %q: %w", articleID, level, err)
	}
	return p, nil
}

// FetchArticleVersion implements session.ContentSource.
func (c *Client) FetchArticleVersion(ctx context.Context, articleID int, level string) (content.Article, error) {
	p, err := c.FetchVersion(ctx, articleID, level)
	if err != nil {
		return content.Article{}, err
	}
	a := content.FromVersion(p)
	if len(a.Paragraphs) == 0 {
		return content.Article{}, fmt.Errorf("fetch article %d version %q: empty content", articleID, level)
	}
	return a, nil
}
