package jarvis

import "time"

// Config holds generation settings for the coach persona.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MnemonicMaxTokens bounds vocabulary hint generation.
	MnemonicMaxTokens int

	// FeedbackMaxTokens bounds the review summary.
	FeedbackMaxTokens int

	// LineTimeout caps how long a lesson waits for a coach line before
	// falling back to the scripted one.
	LineTimeout time.Duration
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         256,
		Temperature:       0.6,
		MnemonicMaxTokens: 160,
		FeedbackMaxTokens: 384,
		LineTimeout:       8 * time.Second,
	}
}
