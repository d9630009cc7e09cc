// Package surgery implements the sentence-surgery flow: modifier chunks
// are removed to reveal the core sentence, with undo and a transient
// shake when a core chunk is clicked.
package surgery

import (
	"errors"

	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/role"
)

// Mode decides who may currently edit the sentence.
type Mode string

const (
	ModeObservation Mode = "observation"
	ModeTeacher     Mode = "teacher"
	ModeStudent     Mode = "student"
)

// Allows reports whether actor may remove or restore chunks in mode m.
func (m Mode) Allows(actor role.Role) bool {
	switch m {
	case ModeTeacher:
		return actor == role.Coach
	case ModeStudent:
		return actor == role.Student
	}
	return false
}

// Chunk is a sentence chunk with its removal and shake flags.
type Chunk struct {
	content.Chunk
	Removed bool `json:"isRemoved"`
	Shake   bool `json:"shake"`
}

// State is the surgery sub-state of a session.
type State struct {
	Mode   Mode     `json:"mode"`
	Chunks []Chunk  `json:"chunks"`
	Undo   []string `json:"undoStack"`
}

// Sentence joins the chunks that are still present.
func (s State) Sentence() string {
	var out []byte
	for _, c := range s.Chunks {
		if c.Removed {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, c.Text...)
	}
	return string(out)
}

var (
	ErrUnknownChunk  = errors.New("surgery: unknown chunk")
	ErrCoreChunk     = errors.New("surgery: core chunks cannot be removed")
	ErrModeForbids   = errors.New("surgery: mode does not allow this actor")
	ErrNothingToUndo = errors.New("surgery: nothing to undo")
	ErrInvalidMode   = errors.New("surgery: unknown mode")
)
