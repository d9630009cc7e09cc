package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/store"
)

// NewProvider creates the configured provider wrapped as
// caller → timeout → retry → logging → base.
// A nil events repo disables request recording.
func NewProvider(ctx context.Context, cfg Config, events store.LLMEventRepo, log *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	var p Provider = base
	if events != nil {
		p = WithLogging(p, cfg.Provider, events, log)
	}
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}

// NewProviderFromEnv reads JARVIS_* variables, falling back to the vendor
// key variables when no provider key is configured.
func NewProviderFromEnv(ctx context.Context, events store.LLMEventRepo, log *zap.Logger) (Provider, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.Validate() != nil {
		if found, ok := DiscoverConfig(); ok {
			cfg = found
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewProvider(ctx, cfg, events, log)
}
