// Package jarvis is the AI coach that talks inside a lesson. It writes the
// Socratic line for each coaching phase, adds memory hints to vocabulary
// cards and summarises the lesson for review. Every call has a scripted
// fallback so a lesson never stalls on the model.
package jarvis

import (
	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/session"
)

// ScriptInput is what the coach knows when writing a line.
type ScriptInput struct {
	Phase         int
	Task          coaching.TaskType
	ArticleTitle  string
	Question      *content.Question
	Selected      string
	Evidence      []string
	VoiceAnswer   string
	WrongAttempts int
}

// Line is one generated coach utterance.
type Line struct {
	Say  string `json:"say"`
	Task string `json:"task,omitempty"`
	// Paragraph is a 0-based paragraph to point at, -1 for none.
	Paragraph int `json:"paragraph"`

	// Scripted is set when the line came from the fallback script.
	Scripted bool `json:"-"`
}

// Feedback is the review-stage summary spoken to the student.
type Feedback struct {
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	NextSteps []string `json:"next_steps"`
	Scripted  bool     `json:"-"`
}

// ScriptFor derives the coach's view from a session snapshot. It uses
// the question under correction, or the first wrong one.
func ScriptFor(st session.State) ScriptInput {
	c := st.Coaching
	in := ScriptInput{
		Phase:         c.Phase,
		Task:          c.TaskType,
		ArticleTitle:  st.Article.Title,
		VoiceAnswer:   c.StudentVoiceAnswer,
		WrongAttempts: c.WrongAttempts,
	}
	if in.Task == coaching.TaskNone {
		in.Task = coaching.TaskForPhase(c.Phase)
	}

	qid := c.QuestionID
	if qid == 0 {
		if wrong := st.WrongQuestions(); len(wrong) > 0 {
			qid = wrong[0]
		}
	}
	q, ok := st.Article.Question(qid)
	if !ok {
		return in
	}
	in.Question = &q
	for _, r := range st.AnalyzeQuiz() {
		if r.QuestionID == qid {
			in.Selected = r.Selected
		}
	}
	for _, p := range q.RelatedParagraphs {
		if p >= 0 && p < len(st.Article.Paragraphs) {
			in.Evidence = append(in.Evidence, st.Article.Paragraphs[p])
		}
	}
	return in
}
