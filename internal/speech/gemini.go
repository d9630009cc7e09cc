package speech

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiTranscriber transcribes by sending the clip inline to a Gemini
// model.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

// NewGeminiTranscriber creates a transcriber.
func NewGeminiTranscriber(ctx context.Context, apiKey string, cfg Config) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiTranscriber{client: client, model: cfg.GeminiModel}, nil
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, audio Audio, language string) (string, error) {
	if len(audio.Data) == 0 {
		return "", ErrNoAudio
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, transcriptionContents(audio, language), nil)
	if err != nil {
		return "", fmt.Errorf("gemini transcription: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

func transcriptionContents(audio Audio, language string) []*genai.Content {
	mime := audio.MIMEType
	if mime == "" {
		mime = "audio/webm"
	}
	prompt := "Transcribe this recording verbatim. Reply with the transcript only."
	if language != "" {
		prompt = fmt.Sprintf("Transcribe this %s recording verbatim. Reply with the transcript only.", language)
	}
	return []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{Data: audio.Data, MIMEType: mime}},
		},
	}}
}
