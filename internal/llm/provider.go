// Package llm is the provider abstraction behind the coach persona:
// Anthropic, OpenAI, Gemini and OpenRouter backends returning
// schema-validated JSON, with retry, timeout and request logging
// decorators.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Generate sends a prompt and returns the response. When the request
	// carries a Schema the content is JSON validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System sets the persona and constraints.
	System string

	// Messages is the conversation history, usually one user turn.
	Messages []Message

	// Schema, when set, selects the provider's structured output mode.
	Schema *Schema

	MaxTokens int

	// Temperature in 0.0 - 1.0. Zero means the provider default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "coach-line". It is the tool
	// or schema name on the wire and the validator cache key.
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response holds the LLM's output.
type Response struct {
	// Content is the validated JSON object when a Schema was given,
	// otherwise the text encoded as a JSON string.
	Content json.RawMessage

	Usage Usage

	// Model is the model that served the request.
	Model string

	StopReason string
}

// Text decodes a schemaless response back into plain text.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err != nil {
		return string(r.Content)
	}
	return s
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func textContent(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names are used as-is.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
