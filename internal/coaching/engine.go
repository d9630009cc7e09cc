package coaching

// Engine holds coaching state. It is not safe for concurrent use; the
// owning session serializes access.
type Engine struct {
	st State
}

// New returns an engine at phase 0.
func New() *Engine {
	e := &Engine{}
	e.st = initialState([]Highlight{})
	return e
}

func initialState(studentHighlights []Highlight) State {
	return State{
		TeacherHighlights: []Highlight{},
		StudentHighlights: studentHighlights,
		FocusParagraph:    -1,
	}
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	s := e.st
	s.TeacherHighlights = append([]Highlight{}, e.st.TeacherHighlights...)
	s.StudentHighlights = append([]Highlight{}, e.st.StudentHighlights...)
	return s
}

// Restore replaces the engine state with s.
func (e *Engine) Restore(s State) {
	e.st = s
	if e.st.TeacherHighlights == nil {
		e.st.TeacherHighlights = []Highlight{}
	}
	if e.st.StudentHighlights == nil {
		e.st.StudentHighlights = []Highlight{}
	}
}

func (e *Engine) taskInFlight() bool {
	return e.st.TaskType != TaskNone && !e.st.TaskCompleted
}

// SetPhase moves to phase p and discards the finished task. Phases never
// move backward and a published task must be completed first.
func (e *Engine) SetPhase(p int) error {
	if p < 0 || p > MaxPhase {
		return ErrInvalidPhase
	}
	if p < e.st.Phase {
		return ErrPhaseRegression
	}
	if e.taskInFlight() {
		return ErrTaskInFlight
	}
	e.st.Phase = p
	e.clearTask()
	return nil
}

// Advance moves to the next phase, staying at MaxPhase once reached.
func (e *Engine) Advance() error {
	return e.SetPhase(min(e.st.Phase+1, MaxPhase))
}

func (e *Engine) clearTask() {
	e.st.TaskType = TaskNone
	e.st.TaskTarget = ""
	e.st.TaskReceived = false
	e.st.TaskCompleted = false
}

// Publish assigns a new task and drops the student's work on the previous
// one.
func (e *Engine) Publish(t TaskType, target string) error {
	if !t.Valid() {
		return ErrInvalidTaskType
	}
	e.st.TaskType = t
	e.st.TaskTarget = target
	e.st.TaskReceived = false
	e.st.TaskCompleted = false
	e.st.StudentHighlights = []Highlight{}
	return nil
}

// Receive marks the active task as seen by the student. Receiving twice is
// a no-op.
func (e *Engine) Receive() error {
	if e.st.TaskType == TaskNone {
		return ErrNoActiveTask
	}
	e.st.TaskReceived = true
	return nil
}

// Complete marks the active task done. The student must have received it.
func (e *Engine) Complete() error {
	if e.st.TaskType == TaskNone {
		return ErrNoActiveTask
	}
	if !e.st.TaskReceived {
		return ErrTaskNotReceived
	}
	e.st.TaskCompleted = true
	return nil
}

func (e *Engine) AddTeacherHighlight(h Highlight) {
	e.st.TeacherHighlights = append(e.st.TeacherHighlights, h)
}

func (e *Engine) AddStudentHighlight(h Highlight) {
	e.st.StudentHighlights = append(e.st.StudentHighlights, h)
}

// ClearTeacherHighlights drops the coach's annotations.
func (e *Engine) ClearTeacherHighlights() {
	e.st.TeacherHighlights = []Highlight{}
}

func (e *Engine) SetGPSCardReceived(v bool) {
	e.st.GPSCardReceived = v
}

func (e *Engine) SetVoiceAnswer(text string) {
	e.st.StudentVoiceAnswer = text
}

func (e *Engine) SetRecording(v bool) {
	e.st.Recording = v
}

func (e *Engine) SetFocusParagraph(i int) {
	e.st.FocusParagraph = i
}

// SetQuestion selects the quiz question under correction and resets the
// reselect attempt counter.
func (e *Engine) SetQuestion(id int) {
	e.st.QuestionID = id
	e.st.ReselectedAnswer = ""
	e.st.WrongAttempts = 0
}

// Reselect records the student's new answer to the question under
// correction and reports whether it matches correct.
func (e *Engine) Reselect(option, correct string) (bool, error) {
	if e.st.WrongAttempts >= MaxWrongAttempts {
		return false, ErrAttemptsExhausted
	}
	e.st.ReselectedAnswer = option
	if option == correct {
		return true, nil
	}
	e.st.WrongAttempts++
	return false, nil
}

// Reset returns to phase 0. Student highlights survive.
func (e *Engine) Reset() {
	kept := e.st.StudentHighlights
	if kept == nil {
		kept = []Highlight{}
	}
	e.st = initialState(kept)
}
