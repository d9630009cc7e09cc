package session

import (
	"context"

	"github.com/abhisek/jarvis/internal/content"
)

// ContentSource fetches leveled article versions.
type ContentSource interface {
	FetchArticleVersion(ctx context.Context, articleID int, level string) (content.Article, error)
}

// VocabLookup turns a looked-up word into a flashcard.
type VocabLookup interface {
	LookupWord(ctx context.Context, word, sentence string, versionID int) (content.VocabItem, error)
}

// Player plays a word's pronunciation and returns when playback ends.
type Player interface {
	Play(ctx context.Context, item content.VocabItem) error
}
