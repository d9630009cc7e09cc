package vocab

import (
	"maps"
	"slices"

	"github.com/abhisek/jarvis/internal/content"
)

// Engine holds vocabulary flow state. Methods that can finish the flow
// report it through their completed result; the caller decides what
// happens next.
type Engine struct {
	st State
}

// New returns an engine with an empty list.
func New() *Engine {
	e := &Engine{}
	e.Load(nil)
	return e
}

// Load replaces the word list and restarts the flow. Every word starts
// unseen.
func (e *Engine) Load(items []content.VocabItem) {
	status := make(map[string]Status, len(items))
	for _, item := range items {
		status[item.Word] = StatusUnseen
	}
	e.st = State{
		List:           slices.Clone(items),
		Status:         status,
		Step:           StepFlashcards,
		ExitPassStep:   ExitCheck,
		RemedialQueue:  []string{},
		Playback:       PlaybackNone,
		RecordingState: RecordingIdle,
	}
	if e.st.List == nil {
		e.st.List = []content.VocabItem{}
	}
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	s := e.st
	s.List = slices.Clone(e.st.List)
	s.Status = maps.Clone(e.st.Status)
	s.RemedialQueue = slices.Clone(e.st.RemedialQueue)
	if e.st.RecordingScore != nil {
		v := *e.st.RecordingScore
		s.RecordingScore = &v
	}
	return s
}

// Restore replaces the engine state with s.
func (e *Engine) Restore(s State) {
	e.st = s
	if e.st.Status == nil {
		e.st.Status = map[string]Status{}
	}
	if e.st.List == nil {
		e.st.List = []content.VocabItem{}
	}
	if e.st.RemedialQueue == nil {
		e.st.RemedialQueue = []string{}
	}
}

// Current returns the card being shown.
func (e *Engine) Current() (content.VocabItem, bool) {
	if e.st.CurrentIndex < 0 || e.st.CurrentIndex >= len(e.st.List) {
		return content.VocabItem{}, false
	}
	return e.st.List[e.st.CurrentIndex], true
}

func (e *Engine) resetCard() {
	e.st.CardFlipped = false
	e.st.SyllableMode = false
	e.st.Playback = PlaybackNone
	e.st.SpeakEnabled = false
	e.st.RecordingState = RecordingIdle
	e.st.RecordingScore = nil
}

// NextCard moves to the next flashcard, or to the exit test after the
// last one.
func (e *Engine) NextCard() {
	e.resetCard()
	if e.st.CurrentIndex+1 < len(e.st.List) {
		e.st.CurrentIndex++
		return
	}
	e.st.Step = StepExitPass
	e.st.ExitPassStep = ExitCheck
}

func (e *Engine) FlipCard(v bool) { e.st.CardFlipped = v }

func (e *Engine) SetSyllableMode(v bool) { e.st.SyllableMode = v }

func (e *Engine) SetSpeakEnabled(v bool) { e.st.SpeakEnabled = v }

func (e *Engine) SetReviewingWord(w string) { e.st.ReviewingWord = w }

// SetPlayback records which pronunciation is playing.
func (e *Engine) SetPlayback(p Playback) error {
	switch p {
	case PlaybackNone, PlaybackStudent, PlaybackStandard:
		e.st.Playback = p
		return nil
	}
	return ErrInvalidPlayback
}

// SetRecording records the pronunciation attempt state and, once
// finished, its score.
func (e *Engine) SetRecording(rs RecordingState, score *int) error {
	switch rs {
	case RecordingIdle, RecordingActive, RecordingAssessing, RecordingFinished:
	default:
		return ErrInvalidRecording
	}
	e.st.RecordingState = rs
	e.st.RecordingScore = score
	if rs == RecordingFinished {
		e.st.SpeakEnabled = true
	}
	return nil
}

// ToggleCheck flips word between mastered and learning.
func (e *Engine) ToggleCheck(word string) error {
	cur, ok := e.st.Status[word]
	if !ok {
		return ErrUnknownWord
	}
	if cur == StatusMastered {
		e.st.Status[word] = StatusLearning
	} else {
		e.st.Status[word] = StatusMastered
	}
	return nil
}

// SubmitExitPass grades the exit test. It reports completed when every
// word is mastered; otherwise the unmastered words become the remedial
// queue.
func (e *Engine) SubmitExitPass() (completed bool, err error) {
	if e.st.ExitPassStep == ExitDone {
		return false, ErrExitPassDone
	}
	if e.st.ExitPassStep == ExitRemedial && e.st.RemedialIndex < len(e.st.RemedialQueue) {
		return false, ErrRemedialInProgress
	}

	var queue []string
	for _, item := range e.st.List {
		if e.st.Status[item.Word] != StatusMastered {
			queue = append(queue, item.Word)
		}
	}

	e.st.Step = StepExitPass
	if len(queue) == 0 {
		e.st.ExitPassStep = ExitDone
		e.st.RemedialQueue = []string{}
		e.st.RemedialIndex = 0
		return true, nil
	}
	e.st.ExitPassStep = ExitRemedial
	e.st.RemedialQueue = queue
	e.st.RemedialIndex = 0
	return false, nil
}

// CompleteRemedialWord masters the current remedial word and moves on. It
// reports completed once the queue is exhausted.
func (e *Engine) CompleteRemedialWord() (completed bool, err error) {
	if e.st.ExitPassStep != ExitRemedial || e.st.RemedialIndex >= len(e.st.RemedialQueue) {
		return false, ErrNotInRemedial
	}
	e.st.Status[e.st.RemedialQueue[e.st.RemedialIndex]] = StatusMastered
	e.st.RemedialIndex++
	e.resetCard()
	if e.st.RemedialIndex >= len(e.st.RemedialQueue) {
		e.st.ExitPassStep = ExitDone
		return true, nil
	}
	return false, nil
}
