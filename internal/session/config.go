package session

import (
	"time"

	"github.com/abhisek/jarvis/internal/skill"
)

// Config holds session settings.
type Config struct {
	// LookupLimit caps recorded word lookups outside the coaching stage.
	LookupLimit int

	// ShakeDuration is how long a rejected chunk keeps shaking.
	ShakeDuration time.Duration

	// Skill configures the skill flow and its verification quiz.
	Skill skill.Config

	// LookupConcurrency bounds in-flight vocabulary lookups.
	LookupConcurrency int

	// LookupTimeout bounds a whole vocabulary batch.
	LookupTimeout time.Duration
}

// DefaultConfig returns the standard lesson settings.
func DefaultConfig() Config {
	return Config{
		LookupLimit:       3,
		ShakeDuration:     500 * time.Millisecond,
		Skill:             skill.DefaultConfig(),
		LookupConcurrency: 4,
		LookupTimeout:     20 * time.Second,
	}
}
