package surgery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/role"
)

func newStudentEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(content.DefaultChunks())
	require.NoError(t, e.SetMode(ModeStudent))
	return e
}

func TestEngine_RemoveModifiers(t *testing.T) {
	e := newStudentEngine(t)
	require.NoError(t, e.Remove("m1", role.Student))
	require.NoError(t, e.Remove("m2", role.Student))

	st := e.State()
	assert.Equal(t, "The coach won awards.", st.Sentence())
	assert.Equal(t, []string{"m1", "m2"}, st.Undo)

	// Removing twice does not grow the history.
	require.NoError(t, e.Remove("m2", role.Student))
	assert.Len(t, e.State().Undo, 2)
}

func TestEngine_CoreChunkNeverRemoved(t *testing.T) {
	e := newStudentEngine(t)
	err := e.Remove("c2", role.Student)
	require.ErrorIs(t, err, ErrCoreChunk)
	for _, c := range e.State().Chunks {
		assert.False(t, c.Removed, "chunk %s removed", c.ID)
	}
}

func TestEngine_ModePolicy(t *testing.T) {
	tests := []struct {
		mode  Mode
		actor role.Role
		ok    bool
	}{
		{ModeObservation, role.Coach, false},
		{ModeObservation, role.Student, false},
		{ModeTeacher, role.Coach, true},
		{ModeTeacher, role.Student, false},
		{ModeStudent, role.Student, true},
		{ModeStudent, role.Coach, false},
		{ModeStudent, role.None, false},
	}
	for _, tt := range tests {
		e := New(content.DefaultChunks())
		require.NoError(t, e.SetMode(tt.mode))
		err := e.Remove("m1", tt.actor)
		if tt.ok {
			assert.NoError(t, err, "%s/%s", tt.mode, tt.actor)
		} else {
			assert.ErrorIs(t, err, ErrModeForbids, "%s/%s", tt.mode, tt.actor)
		}
	}
}

func TestEngine_UndoAndRestore(t *testing.T) {
	e := newStudentEngine(t)
	require.NoError(t, e.Remove("m1", role.Student))
	require.NoError(t, e.Remove("m2", role.Student))

	id, err := e.Undo()
	require.NoError(t, err)
	assert.Equal(t, "m2", id)
	assert.Equal(t, []string{"m1"}, e.State().Undo)

	require.NoError(t, e.RestoreChunk("m1", role.Student))
	assert.Empty(t, e.State().Undo)
	_, err = e.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)

	require.NoError(t, e.Remove("m1", role.Student))
	e.RestoreSentence()
	st := e.State()
	assert.Empty(t, st.Undo)
	assert.Equal(t, "The coach that trained our team for three years won many national awards.", st.Sentence())
}

func TestEngine_ShakeGenerations(t *testing.T) {
	e := New(content.DefaultChunks())
	first, err := e.TriggerShake("c1")
	require.NoError(t, err)
	second, err := e.TriggerShake("c1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// The first timer fires late and must not end the second shake.
	assert.False(t, e.ClearShake("c1", first))
	assert.True(t, e.State().Chunks[0].Shake)

	assert.True(t, e.ClearShake("c1", second))
	assert.False(t, e.State().Chunks[0].Shake)

	_, err = e.TriggerShake("zz")
	assert.ErrorIs(t, err, ErrUnknownChunk)
}

func TestEngine_RestoreDropsShake(t *testing.T) {
	e := New(content.DefaultChunks())
	gen, err := e.TriggerShake("c1")
	require.NoError(t, err)
	saved := e.State()
	require.True(t, saved.Chunks[0].Shake)

	other := New(content.DefaultChunks())
	other.Restore(saved)
	assert.False(t, other.State().Chunks[0].Shake)
	assert.True(t, saved.Chunks[0].Shake)

	e.Restore(saved)
	assert.False(t, e.ClearShake("c1", gen))
	assert.False(t, e.State().Chunks[0].Shake)
}

func TestEngine_Errors(t *testing.T) {
	e := newStudentEngine(t)
	assert.ErrorIs(t, e.Remove("nope", role.Student), ErrUnknownChunk)
	assert.ErrorIs(t, e.RestoreChunk("nope", role.Student), ErrUnknownChunk)
	assert.ErrorIs(t, e.SetMode("chaos"), ErrInvalidMode)
}
