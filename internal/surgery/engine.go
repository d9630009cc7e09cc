package surgery

import (
	"slices"

	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/role"
)

// Engine holds surgery state. The owning session serializes access.
type Engine struct {
	st State

	// shakeGen counts shakes per chunk so a stale clear cannot end a
	// newer shake.
	shakeGen map[string]uint64
}

// New returns an engine in observation mode over chunks.
func New(chunks []content.Chunk) *Engine {
	e := &Engine{}
	e.Load(chunks)
	return e
}

// Load replaces the sentence and resets mode and history. Pending shake
// clears become stale.
func (e *Engine) Load(chunks []content.Chunk) {
	cs := make([]Chunk, len(chunks))
	for i, c := range chunks {
		cs[i] = Chunk{Chunk: c}
	}
	e.st = State{Mode: ModeObservation, Chunks: cs, Undo: []string{}}
	e.invalidateShakes()
}

func (e *Engine) invalidateShakes() {
	if e.shakeGen == nil {
		e.shakeGen = make(map[string]uint64)
	}
	for k := range e.shakeGen {
		e.shakeGen[k]++
	}
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	s := e.st
	s.Chunks = slices.Clone(e.st.Chunks)
	s.Undo = slices.Clone(e.st.Undo)
	return s
}

// Restore replaces the engine state with s. Shake flags are dropped and
// pending shake clears become stale.
func (e *Engine) Restore(s State) {
	e.st = s
	e.st.Chunks = slices.Clone(s.Chunks)
	for i := range e.st.Chunks {
		e.st.Chunks[i].Shake = false
	}
	if e.st.Undo == nil {
		e.st.Undo = []string{}
	}
	e.invalidateShakes()
}

func (e *Engine) find(id string) int {
	return slices.IndexFunc(e.st.Chunks, func(c Chunk) bool { return c.ID == id })
}

// SetMode changes who may edit.
func (e *Engine) SetMode(m Mode) error {
	switch m {
	case ModeObservation, ModeTeacher, ModeStudent:
		e.st.Mode = m
		return nil
	}
	return ErrInvalidMode
}

// CheckRemove reports why actor may not remove chunk id, if anything.
func (e *Engine) CheckRemove(id string, actor role.Role) error {
	i := e.find(id)
	if i < 0 {
		return ErrUnknownChunk
	}
	if !e.st.Mode.Allows(actor) {
		return ErrModeForbids
	}
	if e.st.Chunks[i].Type == content.ChunkCore {
		return ErrCoreChunk
	}
	return nil
}

// Remove strikes modifier chunk id. Removing an already removed chunk is a
// no-op.
func (e *Engine) Remove(id string, actor role.Role) error {
	if err := e.CheckRemove(id, actor); err != nil {
		return err
	}
	c := &e.st.Chunks[e.find(id)]
	if c.Removed {
		return nil
	}
	c.Removed = true
	e.st.Undo = append(e.st.Undo, id)
	return nil
}

// RestoreChunk puts chunk id back.
func (e *Engine) RestoreChunk(id string, actor role.Role) error {
	i := e.find(id)
	if i < 0 {
		return ErrUnknownChunk
	}
	if !e.st.Mode.Allows(actor) {
		return ErrModeForbids
	}
	e.restore(i)
	return nil
}

func (e *Engine) restore(i int) {
	c := &e.st.Chunks[i]
	if !c.Removed {
		return
	}
	c.Removed = false
	if j := slices.Index(e.st.Undo, c.ID); j >= 0 {
		e.st.Undo = slices.Delete(e.st.Undo, j, j+1)
	}
}

// RestoreSentence puts every chunk back and clears the undo history.
func (e *Engine) RestoreSentence() {
	for i := range e.st.Chunks {
		e.st.Chunks[i].Removed = false
	}
	e.st.Undo = []string{}
}

// Undo restores the most recently removed chunk and returns its id.
func (e *Engine) Undo() (string, error) {
	n := len(e.st.Undo)
	if n == 0 {
		return "", ErrNothingToUndo
	}
	id := e.st.Undo[n-1]
	if i := e.find(id); i >= 0 {
		e.restore(i)
	} else {
		e.st.Undo = e.st.Undo[:n-1]
	}
	return id, nil
}

// TriggerShake flags chunk id as shaking and returns the generation a
// later ClearShake must present.
func (e *Engine) TriggerShake(id string) (uint64, error) {
	i := e.find(id)
	if i < 0 {
		return 0, ErrUnknownChunk
	}
	e.shakeGen[id]++
	e.st.Chunks[i].Shake = true
	return e.shakeGen[id], nil
}

// ClearShake ends the shake started with generation gen. It reports false
// when a newer shake has superseded it.
func (e *Engine) ClearShake(id string, gen uint64) bool {
	i := e.find(id)
	if i < 0 || e.shakeGen[id] != gen {
		return false
	}
	e.st.Chunks[i].Shake = false
	return true
}
