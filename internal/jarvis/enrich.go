package jarvis

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/llm"
	"github.com/abhisek/jarvis/internal/session"
)

// Enricher decorates a vocabulary lookup with a generated memory hint
// when the looked-up card has none.
type Enricher struct {
	inner    session.VocabLookup
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// NewEnricher wraps inner.
func NewEnricher(inner session.VocabLookup, provider llm.Provider, cfg Config, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enricher{inner: inner, provider: provider, cfg: cfg, log: log.Named("jarvis")}
}

type mnemonicOutput struct {
	Mnemonic string `json:"mnemonic"`
}

// LookupWord implements session.VocabLookup. Inner failures are returned
// as is; hint failures return the inner card unchanged.
func (e *Enricher) LookupWord(ctx context.Context, word, sentence string, versionID int) (content.VocabItem, error) {
	item, err := e.inner.LookupWord(ctx, word, sentence, versionID)
	if err != nil || item.Mnemonic != "" || e.provider == nil {
		return item, err
	}

	req := llm.Request{
		System: mnemonicSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildMnemonicUserMessage(item.Word, item.Definition, sentence)},
		},
		Schema:      MnemonicSchema,
		MaxTokens:   e.cfg.MnemonicMaxTokens,
		Temperature: e.cfg.Temperature,
	}
	resp, err := e.provider.Generate(llm.WithPurpose(ctx, llm.PurposeMnemonic), req)
	if err != nil {
		e.log.Debug("mnemonic generation failed", zap.String("word", word), zap.Error(err))
		return item, nil
	}

	var out mnemonicOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		e.log.Debug("mnemonic parse failed", zap.String("word", word), zap.Error(err))
		return item, nil
	}
	item.Mnemonic = out.Mnemonic
	return item, nil
}
