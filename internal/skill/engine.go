package skill

import "slices"

// Engine holds skill flow state. The owning session serializes access.
type Engine struct {
	cfg Config
	st  State
}

// New returns an engine waiting at node 0.
func New(cfg Config) *Engine {
	if cfg.QuizLength <= 0 {
		cfg.QuizLength = DefaultConfig().QuizLength
	}
	e := &Engine{cfg: cfg}
	e.Reset()
	return e
}

// Reset returns the engine to its initial state.
func (e *Engine) Reset() {
	e.st = State{Quiz: freshQuiz()}
}

func freshQuiz() Quiz {
	return Quiz{HighlightedWords: []string{}, Results: []bool{}}
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	s := e.st
	s.Quiz.HighlightedWords = slices.Clone(e.st.Quiz.HighlightedWords)
	s.Quiz.Results = slices.Clone(e.st.Quiz.Results)
	if e.st.Quiz.AnswerCorrect != nil {
		v := *e.st.Quiz.AnswerCorrect
		s.Quiz.AnswerCorrect = &v
	}
	return s
}

// Restore replaces the engine state with s.
func (e *Engine) Restore(s State) {
	e.st = s
	if e.st.Quiz.HighlightedWords == nil {
		e.st.Quiz.HighlightedWords = []string{}
	}
	if e.st.Quiz.Results == nil {
		e.st.Quiz.Results = []bool{}
	}
}

// SetNode moves the flow to node n. Leaving the equip/demo node requires
// the student to have performed every demo step.
func (e *Engine) SetNode(n int) error {
	if n < NodeWaiting || n > NodeComplete {
		return ErrInvalidNode
	}
	if e.st.Node == NodeEquipDemo && n > NodeEquipDemo && e.st.StudentDemoStep < MaxDemoStep {
		return ErrDemoIncomplete
	}
	e.st.Node = n
	return nil
}

// Equip records that the student picked up the GPS method.
func (e *Engine) Equip() {
	e.st.HasEquipped = true
}

// ConfirmFormula records that the student confirmed the formula card.
func (e *Engine) ConfirmFormula() error {
	if !e.st.HasEquipped {
		return ErrNotEquipped
	}
	e.st.ConfirmedFormula = true
	return nil
}

// UnlockDemoStep sets how many demo steps the coach has unlocked.
func (e *Engine) UnlockDemoStep(step int) error {
	if step < 0 || step > MaxDemoStep {
		return ErrInvalidStep
	}
	e.st.DemoTeacherStep = step
	return nil
}

// PerformDemoStep sets how many demo steps the student has performed. The
// student can never get ahead of the coach.
func (e *Engine) PerformDemoStep(step int) error {
	if step < 0 || step > MaxDemoStep {
		return ErrInvalidStep
	}
	if !e.st.HasEquipped {
		return ErrNotEquipped
	}
	if !e.st.ConfirmedFormula {
		return ErrFormulaNotConfirmed
	}
	if step > e.st.DemoTeacherStep {
		return ErrStepLocked
	}
	e.st.StudentDemoStep = step
	return nil
}

// StartQuiz resets the verification quiz to its first question.
func (e *Engine) StartQuiz() {
	e.st.Quiz = freshQuiz()
}

// ToggleHighlight adds word to the current question's highlighted set, or
// removes it if already present.
func (e *Engine) ToggleHighlight(word string) error {
	if e.st.Quiz.Completed {
		return ErrQuizCompleted
	}
	words := e.st.Quiz.HighlightedWords
	if i := slices.Index(words, word); i >= 0 {
		e.st.Quiz.HighlightedWords = slices.Delete(words, i, i+1)
		return nil
	}
	e.st.Quiz.HighlightedWords = append(words, word)
	return nil
}

// SelectAnswer records the student's choice for the current question.
func (e *Engine) SelectAnswer(option string, correct bool) error {
	if e.st.Quiz.Completed {
		return ErrQuizCompleted
	}
	e.st.Quiz.SelectedAnswer = option
	e.st.Quiz.AnswerCorrect = &correct
	return nil
}

// SetWrongAttempt records the latest wrong option for the coach's alert.
func (e *Engine) SetWrongAttempt(option string) {
	e.st.Quiz.WrongAttempt = option
}

// NextQuestion records the current result and moves on. After the last
// question the quiz is completed and the index stays on the last question.
func (e *Engine) NextQuestion() error {
	q := &e.st.Quiz
	if q.Completed {
		return ErrQuizCompleted
	}
	q.Results = append(q.Results, q.AnswerCorrect != nil && *q.AnswerCorrect)
	q.HighlightedWords = []string{}
	q.SelectedAnswer = ""
	q.AnswerCorrect = nil
	q.WrongAttempt = ""

	if len(q.Results) >= e.cfg.QuizLength {
		q.Completed = true
		return nil
	}
	q.CurrentIndex++
	return nil
}
