// Package coaching implements the six-phase Socratic remediation flow: a
// phase counter plus the publish/receive/complete handshake for the task
// the coach hands to the student.
package coaching

import "errors"

// TaskType identifies the kind of work a coach assigns. The empty value
// means no task is active.
type TaskType string

const (
	TaskNone      TaskType = ""
	TaskHighlight TaskType = "highlight"
	TaskVoice     TaskType = "voice"
	TaskSelect    TaskType = "select"
	TaskGPS       TaskType = "gps"
	TaskReview    TaskType = "review"
)

// Valid reports whether t is a publishable task type.
func (t TaskType) Valid() bool {
	switch t {
	case TaskHighlight, TaskVoice, TaskSelect, TaskGPS, TaskReview:
		return true
	}
	return false
}

const (
	// MaxPhase is the final coaching phase.
	MaxPhase = 6

	// MaxWrongAttempts is how many wrong reselects a student gets before
	// the coach reveals the answer.
	MaxWrongAttempts = 2
)

var phaseNames = [...]string{"Not started", "Diagnosis", "Recall", "Guide", "Locate", "Match", "Review"}

var phaseTasks = [...]TaskType{TaskNone, TaskVoice, TaskGPS, TaskHighlight, TaskHighlight, TaskSelect, TaskReview}

// PhaseName returns the display name of phase p.
func PhaseName(p int) string {
	if p < 0 || p > MaxPhase {
		return "Unknown"
	}
	return phaseNames[p]
}

// TaskForPhase returns the task a coach normally publishes in phase p.
func TaskForPhase(p int) TaskType {
	if p < 0 || p > MaxPhase {
		return TaskNone
	}
	return phaseTasks[p]
}

// Highlight is a span marked in a paragraph.
type Highlight struct {
	ParagraphIndex int    `json:"paragraphIndex"`
	StartOffset    int    `json:"startOffset"`
	EndOffset      int    `json:"endOffset"`
	Text           string `json:"text"`
}

// State is the coaching sub-state of a session.
type State struct {
	Phase         int      `json:"phase"`
	TaskType      TaskType `json:"taskType"`
	TaskTarget    string   `json:"taskTarget,omitempty"`
	TaskReceived  bool     `json:"taskReceived"`
	TaskCompleted bool     `json:"taskCompleted"`

	TeacherHighlights []Highlight `json:"teacherHighlights"`
	StudentHighlights []Highlight `json:"studentHighlights"`

	GPSCardReceived    bool   `json:"gpsCardReceived"`
	StudentVoiceAnswer string `json:"studentVoiceAnswer,omitempty"`
	ReselectedAnswer   string `json:"reselectedAnswer,omitempty"`
	WrongAttempts      int    `json:"wrongAttempts"`

	// QuestionID is the wrong quiz question being corrected, 0 if none.
	QuestionID int `json:"questionId"`
	// FocusParagraph is the paragraph the coach pointed at, -1 if none.
	FocusParagraph int  `json:"focusParagraph"`
	Recording      bool `json:"isRecording"`
}

var (
	ErrInvalidPhase      = errors.New("coaching: phase out of range")
	ErrPhaseRegression   = errors.New("coaching: phase cannot move backward")
	ErrTaskInFlight      = errors.New("coaching: current task not completed")
	ErrInvalidTaskType   = errors.New("coaching: unknown task type")
	ErrNoActiveTask      = errors.New("coaching: no active task")
	ErrTaskNotReceived   = errors.New("coaching: task not received")
	ErrAttemptsExhausted = errors.New("coaching: no reselect attempts left")
)
