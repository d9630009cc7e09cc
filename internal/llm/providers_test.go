package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

var coachLineSchema = &Schema{
	Name: "coach-line-test",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"say":   map[string]any{"type": "string"},
			"phase": map[string]any{"type": "integer"},
		},
		"required":             []any{"say"},
		"additionalProperties": false,
	},
}

func coachRequest(schema *Schema) Request {
	return Request{
		System:    "You are Jarvis, a reading coach.",
		Messages:  []Message{{Role: RoleUser, Content: "The student is in the Recall phase."}},
		Schema:    schema,
		MaxTokens: 256,
	}
}

func serveJSON(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openAICompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func apiError(kind string) map[string]any {
	return map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": kind},
	}
}

func newOpenAITestProvider(t *testing.T, srv *httptest.Server) Provider {
	t.Helper()
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}
	return p
}

func newAnthropicTestProvider(t *testing.T, srv *httptest.Server) Provider {
	t.Helper()
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func TestProviders_Generate(t *testing.T) {
	const line = `{"say":"What did the coach win?","phase":2}`

	tests := []struct {
		name      string
		newP      func(*testing.T, *httptest.Server) Provider
		status    int
		body      any
		schema    *Schema
		wantErr   any
		wantIn    int
		wantModel string
	}{
		{
			name: "openai structured", newP: newOpenAITestProvider,
			status: http.StatusOK, body: openAICompletion(line, "stop"), schema: coachLineSchema,
			wantIn: 40, wantModel: "gpt-4o-mini",
		},
		{
			name: "openai schema violation", newP: newOpenAITestProvider,
			status: http.StatusOK, body: openAICompletion(`{"phase":"two"}`, "stop"), schema: coachLineSchema,
			wantErr: new(*ErrInvalidResponse),
		},
		{
			name: "openai truncated", newP: newOpenAITestProvider,
			status: http.StatusOK, body: openAICompletion(`{"say":"Wh`, "length"), schema: coachLineSchema,
			wantErr: new(*ErrMaxTokensExceeded),
		},
		{
			name: "openai rate limit", newP: newOpenAITestProvider,
			status: http.StatusTooManyRequests, body: apiError("rate_limit_exceeded"),
			wantErr: new(*ErrRateLimit),
		},
		{
			name: "openai unauthorized", newP: newOpenAITestProvider,
			status: http.StatusUnauthorized, body: apiError("invalid_api_key"),
			wantErr: new(*ErrAuth),
		},
		{
			name: "openai server error", newP: newOpenAITestProvider,
			status: http.StatusInternalServerError, body: apiError("server_error"),
			wantErr: new(*ErrProviderUnavailable),
		},
		{
			name: "anthropic structured", newP: newAnthropicTestProvider,
			status: http.StatusOK, body: anthropicMessage(line, "end_turn"), schema: coachLineSchema,
			wantIn: 50, wantModel: "claude-haiku-4-5-20251001",
		},
		{
			name: "anthropic truncated", newP: newAnthropicTestProvider,
			status: http.StatusOK, body: anthropicMessage(`{"say":"Wh`, "max_tokens"), schema: coachLineSchema,
			wantErr: new(*ErrMaxTokensExceeded),
		},
		{
			name: "anthropic rate limit", newP: newAnthropicTestProvider,
			status: http.StatusTooManyRequests, body: apiError("rate_limit_error"),
			wantErr: new(*ErrRateLimit),
		},
		{
			name: "anthropic overloaded", newP: newAnthropicTestProvider,
			status: http.StatusServiceUnavailable, body: apiError("overloaded_error"),
			wantErr: new(*ErrProviderUnavailable),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.newP(t, serveJSON(t, tt.status, tt.body))
			resp, err := p.Generate(t.Context(), coachRequest(tt.schema))

			if tt.wantErr != nil {
				if err == nil || !errors.As(err, tt.wantErr) {
					t.Fatalf("error = %T (%v), want %T", err, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Usage.InputTokens != tt.wantIn {
				t.Errorf("input tokens = %d, want %d", resp.Usage.InputTokens, tt.wantIn)
			}
			if resp.Model != tt.wantModel || resp.StopReason != StopEnd {
				t.Errorf("model/stop = %q/%q", resp.Model, resp.StopReason)
			}
			if string(resp.Content) != line {
				t.Errorf("content = %s", resp.Content)
			}
		})
	}
}

func TestOpenAIProvider_PlainTextWrapped(t *testing.T) {
	p := newOpenAITestProvider(t, serveJSON(t, http.StatusOK, openAICompletion("Read paragraph two again.", "stop")))
	resp, err := p.Generate(t.Context(), coachRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `"Read paragraph two again."` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Text() != "Read paragraph two again." {
		t.Errorf("text = %q", resp.Text())
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "anthropic/claude-3-haiku" {
		t.Errorf("model = %q, want pass-through", p.ModelID())
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"}); err == nil {
		t.Error("expected error for empty API key")
	}
	if LookupCost(p.ModelID()) == nil {
		t.Error("expected vendor-prefixed model to resolve pricing")
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		models map[string]string
		in     string
		want   string
	}{
		{anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
		{anthropicModels, "claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{openaiModels, "gpt-mini", "gpt-4.1-mini"},
		{geminiModels, "gemini-flash", "gemini-2.5-flash"},
		{geminiModels, "gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, tt.models); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type":        "object",
		"description": "one coach turn",
		"properties": map[string]any{
			"say":      map[string]any{"type": "string"},
			"phase":    map[string]any{"type": "integer"},
			"tone":     map[string]any{"type": "string", "enum": []any{"warm", "firm"}},
			"keywords": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"odd":      map[string]any{"type": "null"},
		},
		"required": []string{"say"},
	}

	got := buildGeminiSchema(def)
	want := &genai.Schema{
		Type:        genai.TypeObject,
		Description: "one coach turn",
		Properties: map[string]*genai.Schema{
			"say":      {Type: genai.TypeString},
			"phase":    {Type: genai.TypeInteger},
			"tone":     {Type: genai.TypeString, Enum: []string{"warm", "firm"}},
			"keywords": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"odd":      {Type: genai.TypeString},
		},
		Required: []string{"say"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}
