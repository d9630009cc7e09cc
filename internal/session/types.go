package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/skill"
	"github.com/abhisek/jarvis/internal/surgery"
	"github.com/abhisek/jarvis/internal/vocab"
)

// Speaker identifies who wrote a chat message.
type Speaker string

const (
	SpeakerJarvis  Speaker = "jarvis"
	SpeakerStudent Speaker = "student"
	SpeakerCoach   Speaker = "coach"
)

// SpeakerFor maps a participant role to its chat speaker.
func SpeakerFor(r role.Role) Speaker {
	if r == role.Coach {
		return SpeakerCoach
	}
	return SpeakerStudent
}

// Message is an entry in the lesson chat log. Messages are never edited.
type Message struct {
	ID        string    `json:"id"`
	Role      Speaker   `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Highlight is a span the student marked while reading.
type Highlight struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	Color          string `json:"color"`
	ParagraphIndex int    `json:"paragraphIndex"`
	StartOffset    int    `json:"startOffset"`
	Length         int    `json:"length"`
}

func (h Highlight) end() int { return h.StartOffset + h.Length }

// Lookup is a word the student looked up.
type Lookup struct {
	Word      string    `json:"word"`
	Context   string    `json:"context"`
	VersionID int       `json:"versionId"`
	At        time.Time `json:"timestamp"`
}

// QuizAnswer is the student's answer to one comprehension question.
type QuizAnswer struct {
	QuestionID int    `json:"questionId"`
	OptionID   string `json:"optionId"`
	IsUnsure   bool   `json:"isUnsure"`
}

// Battle is the reading-stage sub-state.
type Battle struct {
	Lookups        []Lookup     `json:"lookups"`
	Highlights     []Highlight  `json:"highlights"`
	QuizAnswers    []QuizAnswer `json:"quizAnswers"`
	ScrollProgress float64      `json:"scrollProgress"`
}

// LoadState tracks the article fetch.
type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadLoaded  LoadState = "loaded"
	LoadFailed  LoadState = "failed"
)

// State is a point-in-time copy of a session.
type State struct {
	ID       string     `json:"id"`
	Role     role.Role  `json:"role"`
	ViewMode role.Role  `json:"viewMode"`
	Stage    role.Stage `json:"currentStage"`
	Messages []Message  `json:"messages"`

	Muted           bool `json:"isMuted"`
	HasRemoteStream bool `json:"hasRemoteStream"`

	Article   content.Article `json:"articleData"`
	LoadState LoadState       `json:"loadState"`
	LoadError string          `json:"loadError,omitempty"`

	Battle       Battle         `json:"battle"`
	Coaching     coaching.State `json:"coaching"`
	Skill        skill.State    `json:"skill"`
	Vocab        vocab.State    `json:"vocab"`
	VocabLoading bool           `json:"vocabLoading"`
	Surgery      surgery.State  `json:"surgery"`
}

var (
	ErrRoleAlreadySet  = errors.New("session: role already set")
	ErrInvalidRole     = errors.New("session: invalid role")
	ErrInvalidStage    = errors.New("session: invalid stage")
	ErrWrongStage      = errors.New("session: action not allowed in the current stage")
	ErrInvalidSpeaker  = errors.New("session: invalid message role")
	ErrUnknownAction   = errors.New("session: unknown action")
	ErrUnknownQuestion = errors.New("session: unknown question")
	ErrNoContentSource = errors.New("session: no content source configured")
	ErrInvalidSpan     = errors.New("session: highlight span must have positive length")
	ErrClosed          = errors.New("session: closed")

	// errIgnored marks an action that was valid but had no effect; it is
	// neither reported nor replicated.
	errIgnored = errors.New("ignored")
)

// ActionError reports a rejected action. The session state is unchanged.
type ActionError struct {
	Kind Kind
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
