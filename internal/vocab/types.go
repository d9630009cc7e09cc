// Package vocab implements the vocabulary flow: C-E-O flashcards, the
// exit test and the remedial loop over words the student has not mastered.
package vocab

import (
	"errors"

	"github.com/abhisek/jarvis/internal/content"
)

// Status is a word's mastery status.
type Status string

const (
	StatusUnseen   Status = "unseen"
	StatusLearning Status = "learning"
	StatusMastered Status = "mastered"
)

// Step is the top-level phase of the vocabulary flow.
type Step string

const (
	StepFlashcards Step = "flashcards"
	StepExitPass   Step = "exitpass"
)

// ExitPassStep is the phase within the exit test.
type ExitPassStep string

const (
	ExitCheck    ExitPassStep = "check"
	ExitRemedial ExitPassStep = "remedial"
	ExitDone     ExitPassStep = "done"
)

// Playback tells which pronunciation is playing.
type Playback string

const (
	PlaybackNone     Playback = "none"
	PlaybackStudent  Playback = "student"
	PlaybackStandard Playback = "standard"
)

// RecordingState tracks the student's pronunciation attempt.
type RecordingState string

const (
	RecordingIdle      RecordingState = "idle"
	RecordingActive    RecordingState = "recording"
	RecordingAssessing RecordingState = "assessing"
	RecordingFinished  RecordingState = "finished"
)

// State is the vocabulary sub-state of a session.
type State struct {
	List          []content.VocabItem `json:"list"`
	Status        map[string]Status   `json:"status"`
	CurrentIndex  int                 `json:"currentIndex"`
	Step          Step                `json:"step"`
	ExitPassStep  ExitPassStep        `json:"exitPassStep"`
	RemedialQueue []string            `json:"remedialQueue"`
	RemedialIndex int                 `json:"remedialIndex"`

	CardFlipped    bool           `json:"cardFlipped"`
	SyllableMode   bool           `json:"syllableMode"`
	Playback       Playback       `json:"audioPlayback"`
	SpeakEnabled   bool           `json:"speakEnabled"`
	RecordingState RecordingState `json:"recordingState"`
	RecordingScore *int           `json:"recordingScore"`
	ReviewingWord  string         `json:"reviewingWord,omitempty"`
}

// Mastered returns the number of mastered words.
func (s State) Mastered() int {
	n := 0
	for _, item := range s.List {
		if s.Status[item.Word] == StatusMastered {
			n++
		}
	}
	return n
}

var (
	ErrUnknownWord        = errors.New("vocab: word not in list")
	ErrNotInRemedial      = errors.New("vocab: not in remedial step")
	ErrRemedialInProgress = errors.New("vocab: remedial queue not finished")
	ErrExitPassDone       = errors.New("vocab: exit pass already completed")
	ErrInvalidPlayback    = errors.New("vocab: unknown playback mode")
	ErrInvalidRecording   = errors.New("vocab: unknown recording state")
)
