package speech

import (
	"context"
	"errors"
	"os"
)

// Config holds transcription settings.
type Config struct {
	// Language is the ISO-639-1 hint passed to the transcriber.
	Language string
	// WhisperModel is the OpenAI transcription model.
	WhisperModel string
	// GeminiModel is the Gemini model used for transcription.
	GeminiModel string
}

// DefaultConfig returns English transcription defaults.
func DefaultConfig() Config {
	return Config{
		Language:     "en",
		WhisperModel: "whisper-1",
		GeminiModel:  "gemini-2.0-flash",
	}
}

// NewTranscriberFromEnv picks a transcriber from the configured API keys,
// preferring Gemini over Whisper.
func NewTranscriberFromEnv(ctx context.Context, cfg Config) (Transcriber, error) {
	if key := firstEnv("JARVIS_GEMINI_API_KEY", "GEMINI_API_KEY"); key != "" {
		return NewGeminiTranscriber(ctx, key, cfg)
	}
	if key := firstEnv("JARVIS_OPENAI_API_KEY", "OPENAI_API_KEY"); key != "" {
		return NewWhisperTranscriber(key, os.Getenv("JARVIS_OPENAI_BASE_URL"), cfg)
	}
	return nil, errors.New("no transcription key: set GEMINI_API_KEY or OPENAI_API_KEY")
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
