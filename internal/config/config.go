// Package config loads process settings from JARVIS_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the jarvis commands.
type Config struct {
	// DBPath overrides the default database location when set.
	DBPath  string `env:"JARVIS_DB"`
	Verbose bool   `env:"JARVIS_VERBOSE"`

	APIBaseURL string        `env:"JARVIS_API_URL"     envDefault:"http://localhost:8000"`
	APITimeout time.Duration `env:"JARVIS_API_TIMEOUT" envDefault:"15s"`

	SyncAddr        string        `env:"JARVIS_SYNC_ADDR"        envDefault:":8080"`
	SyncURL         string        `env:"JARVIS_SYNC_URL"         envDefault:"ws://localhost:8080/ws"`
	Room            string        `env:"JARVIS_ROOM"             envDefault:"default"`
	ShutdownTimeout time.Duration `env:"JARVIS_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// LessonFile is a YAML lesson used instead of the built-in article.
	LessonFile string `env:"JARVIS_LESSON_FILE"`

	// SnapshotEvery is how many journaled actions pass between session
	// snapshots; SnapshotKeep is how many snapshots survive pruning.
	SnapshotEvery int `env:"JARVIS_SNAPSHOT_EVERY" envDefault:"50"`
	SnapshotKeep  int `env:"JARVIS_SNAPSHOT_KEEP"  envDefault:"5"`

	// CoachAI enables generated coach lines when an LLM provider is
	// configured.
	CoachAI bool `env:"JARVIS_COACH_AI" envDefault:"true"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse fills target from environment variables.
func Parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
