package jarvis

import "github.com/abhisek/jarvis/internal/llm"

// CoachLineSchema defines the JSON schema for one coach utterance.
var CoachLineSchema = &llm.Schema{
	Name:        "coach-line",
	Description: "A short Socratic line the reading coach says to the student",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"say": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "What the coach says, 1-2 short sentences",
			},
			"task": map[string]any{
				"type": "string",
				"enum": []any{"highlight", "voice", "select", "gps", "review"},
			},
			"paragraph": map[string]any{
				"type":        "integer",
				"minimum":     -1,
				"description": "0-based paragraph to point at, or -1",
			},
		},
		"required":             []any{"say", "paragraph"},
		"additionalProperties": false,
	},
}

// MnemonicSchema defines the JSON schema for a vocabulary memory hint.
var MnemonicSchema = &llm.Schema{
	Name:        "vocab-mnemonic",
	Description: "A memory hint that helps a young reader remember a word",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mnemonic": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "One vivid sentence linking the word to its meaning",
			},
		},
		"required":             []any{"mnemonic"},
		"additionalProperties": false,
	},
}

// FeedbackSchema defines the JSON schema for the end-of-lesson review.
var FeedbackSchema = &llm.Schema{
	Name:        "lesson-feedback",
	Description: "End-of-lesson feedback for a young reader",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "2-3 sentence summary of how the lesson went",
			},
			"strengths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 things the student did well",
			},
			"next_steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 things to practise next time",
			},
		},
		"required":             []any{"summary", "strengths", "next_steps"},
		"additionalProperties": false,
	},
}
