package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/jarvis/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp, err := mock.Generate(t.Context(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 10 || resp.StopReason != "end" {
		t.Fatalf("first response = %+v", resp)
	}

	resp, err = mock.Generate(t.Context(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"b":2}` {
		t.Fatalf("second content = %s", resp.Content)
	}

	_, err = mock.Generate(t.Context(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("empty queue: expected ErrProviderUnavailable, got %T", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestMockProvider_AddResponseAndCalls(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(t.Context(), Request{System: "sys"})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T", err)
	}
	if mock.Calls[0].System != "sys" {
		t.Errorf("recorded system = %q", mock.Calls[0].System)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, PurposeMnemonic)
	if p := PurposeFrom(ctx); p != PurposeMnemonic {
		t.Fatalf("expected %q, got %q", PurposeMnemonic, p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, "JARVIS_ANTHROPIC_API_KEY"},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk"}}, ""},
		{"openai without key", Config{Provider: ProviderOpenAI}, "JARVIS_OPENAI_API_KEY"},
		{"gemini without key", Config{Provider: ProviderGemini}, "JARVIS_GEMINI_API_KEY"},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, "JARVIS_OPENROUTER_API_KEY"},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "sk"}}, ""},
		{"mock needs no key", Config{Provider: ProviderMock}, ""},
		{"unknown provider", Config{Provider: "unknown"}, "unknown LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("JARVIS_LLM_PROVIDER", "openrouter")
	t.Setenv("JARVIS_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("JARVIS_OPENROUTER_MODEL", "anthropic/claude-3-haiku")
	t.Setenv("JARVIS_LLM_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("JARVIS_LLM_TIMEOUT", "45s")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Provider != ProviderOpenRouter || cfg.OpenRouter.APIKey != "sk-or" {
		t.Errorf("provider config = %+v", cfg.OpenRouter)
	}
	if cfg.ModelFor() != "anthropic/claude-3-haiku" {
		t.Errorf("model = %q", cfg.ModelFor())
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.InitialWait != time.Second {
		t.Errorf("retry = %+v", cfg.Retry)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.Anthropic.Model != "claude-haiku" {
		t.Errorf("unset model lost its default: %q", cfg.Anthropic.Model)
	}
}

func TestConfigFromEnv_BadDuration(t *testing.T) {
	t.Setenv("JARVIS_LLM_TIMEOUT", "soon")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderAnthropic || cfg.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("discovered %+v, %v", cfg, ok)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(t.Context(), Config{Provider: ProviderMock}, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}

	if _, err := NewProvider(t.Context(), Config{Provider: "nope"}, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewProvider(t.Context(), Config{Provider: ProviderOpenAI}, nil, nil); err == nil {
		t.Error("expected error for missing key")
	}
}

type fakeEvents struct {
	mu     sync.Mutex
	events []store.LLMEvent
	err    error
}

func (f *fakeEvents) AppendLLMRequest(_ context.Context, e store.LLMEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakeEvents) Recent(context.Context, int, string) ([]store.LLMEvent, error) {
	return nil, nil
}

func (f *fakeEvents) Get(context.Context, int64) (*store.LLMEvent, error) { return nil, nil }

func (f *fakeEvents) Usage(context.Context) ([]store.LLMUsage, error) { return nil, nil }

func TestLogging_RecordsRequest(t *testing.T) {
	events := &fakeEvents{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"say":"hi"}`),
		Usage:   Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000},
	})
	p := WithLogging(mock, "mock", events, nil)

	ctx := WithPurpose(t.Context(), PurposeCoachScript)
	req := Request{
		System:   "You are Jarvis.",
		Messages: []Message{{Role: RoleUser, Content: "phase 2"}},
		Schema:   &Schema{Name: "coach-line", Definition: map[string]any{"type": "object"}},
	}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(events.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events.events))
	}
	e := events.events[0]
	if e.Purpose != PurposeCoachScript || !e.Success || e.Provider != "mock" {
		t.Errorf("event = %+v", e)
	}
	if e.ResponseBody != `{"say":"hi"}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}
	for _, want := range []string{"[system]\nYou are Jarvis.", "[user]\nphase 2", "[schema: coach-line]"} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
	if e.CostUSD != 0 {
		t.Errorf("unpriced model cost = %f", e.CostUSD)
	}
}

func TestLogging_RecordsFailureAndSurvivesRepoError(t *testing.T) {
	events := &fakeEvents{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Err: errors.New("boom")}), "mock", events, nil)

	_, err := p.Generate(t.Context(), Request{})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if len(events.events) != 1 || events.events[0].Success || events.events[0].ErrorMessage != "boom" {
		t.Errorf("events = %+v", events.events)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); got < 0.749 || got > 0.751 {
		t.Errorf("cost = %f, want 0.75", got)
	}
	if LookupCost("mock") != nil {
		t.Error("mock should have no pricing")
	}
}
