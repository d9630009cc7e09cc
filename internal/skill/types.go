// Package skill implements the GPS skill-acquisition flow: the teaching
// nodes, the equip/confirm/demo gates with separate teacher and student
// step counters, and the verification quiz.
package skill

import "errors"

// Nodes of the skill flow.
const (
	NodeWaiting   = 0
	NodeOverload  = 1
	NodeEquipDemo = 2
	NodeQuiz      = 3
	NodeReserved  = 4
	NodeComplete  = 5
)

// MaxDemoStep is the number of GPS demo steps: circle keywords, scan for
// the source, lock the answer.
const MaxDemoStep = 3

// Quiz is the verification quiz sub-state.
type Quiz struct {
	HighlightedWords []string `json:"highlightedWords"`
	SelectedAnswer   string   `json:"selectedAnswer,omitempty"`
	AnswerCorrect    *bool    `json:"answerCorrect"`
	CurrentIndex     int      `json:"currentIndex"`
	Results          []bool   `json:"results"`
	Completed        bool     `json:"completed"`
	WrongAttempt     string   `json:"wrongAttempt,omitempty"`
}

// Score returns the number of correct results.
func (q Quiz) Score() int {
	n := 0
	for _, ok := range q.Results {
		if ok {
			n++
		}
	}
	return n
}

// State is the skill sub-state of a session.
type State struct {
	Node             int  `json:"skillNode"`
	HasEquipped      bool `json:"studentHasEquipped"`
	ConfirmedFormula bool `json:"studentConfirmedFormula"`
	StudentDemoStep  int  `json:"studentDemoStep"`
	DemoTeacherStep  int  `json:"demoTeacherStep"`
	Quiz             Quiz `json:"quiz"`
}

var (
	ErrInvalidNode         = errors.New("skill: node out of range")
	ErrInvalidStep         = errors.New("skill: demo step out of range")
	ErrNotEquipped         = errors.New("skill: student has not equipped the method")
	ErrFormulaNotConfirmed = errors.New("skill: student has not confirmed the formula")
	ErrStepLocked          = errors.New("skill: demo step not unlocked by coach")
	ErrDemoIncomplete      = errors.New("skill: demo not finished")
	ErrQuizCompleted       = errors.New("skill: quiz already completed")
)
