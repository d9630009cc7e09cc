package cmd

import (
	"context"
	"strings"

	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/session"
)

// lessonSource serves a lesson file as the article source. Words found in
// the lesson's vocabulary list are answered locally; the rest go to next.
type lessonSource struct {
	lesson *content.Lesson
	next   session.VocabLookup
}

func (l lessonSource) FetchArticleVersion(ctx context.Context, articleID int, level string) (content.Article, error) {
	return l.lesson.Article, nil
}

func (l lessonSource) LookupWord(ctx context.Context, word, sentence string, versionID int) (content.VocabItem, error) {
	for _, v := range l.lesson.Vocab {
		if strings.EqualFold(v.Word, word) {
			if v.ContextSentence == "" {
				v.ContextSentence = sentence
			}
			return v, nil
		}
	}
	if l.next == nil {
		return content.PlaceholderVocabItem(word), nil
	}
	return l.next.LookupWord(ctx, word, sentence, versionID)
}
