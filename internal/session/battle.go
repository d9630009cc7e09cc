package session

import "slices"

// markSpan toggles h in hs. A highlight at the identical position is
// removed; otherwise every overlapping highlight in the same paragraph is
// dropped and h is added.
func markSpan(hs []Highlight, h Highlight) []Highlight {
	out := make([]Highlight, 0, len(hs)+1)
	toggled := false
	for _, o := range hs {
		if o.ParagraphIndex != h.ParagraphIndex {
			out = append(out, o)
			continue
		}
		if o.StartOffset == h.StartOffset && o.Length == h.Length {
			toggled = true
			continue
		}
		if o.StartOffset < h.end() && h.StartOffset < o.end() {
			continue
		}
		out = append(out, o)
	}
	if toggled {
		// Toggling off only removes the identical span.
		return slices.DeleteFunc(slices.Clone(hs), func(o Highlight) bool {
			return o.ParagraphIndex == h.ParagraphIndex && o.StartOffset == h.StartOffset && o.Length == h.Length
		})
	}
	return append(out, h)
}

func upsertAnswer(answers []QuizAnswer, ans QuizAnswer) []QuizAnswer {
	out := slices.Clone(answers)
	for i := range out {
		if out[i].QuestionID == ans.QuestionID {
			out[i] = ans
			return out
		}
	}
	return append(out, ans)
}

// AnswerStatus grades one comprehension answer.
type AnswerStatus string

const (
	AnswerCorrect AnswerStatus = "correct"
	AnswerWrong   AnswerStatus = "wrong"
	// AnswerGuessed is a correct answer the student marked as unsure.
	AnswerGuessed AnswerStatus = "guessed"
)

// QuizResult joins a question with the student's answer.
type QuizResult struct {
	QuestionID int          `json:"questionId"`
	Selected   string       `json:"selected,omitempty"`
	Correct    string       `json:"correct"`
	Status     AnswerStatus `json:"status"`
}

// AnalyzeQuiz grades every article question in order. Unanswered
// questions are wrong.
func (st State) AnalyzeQuiz() []QuizResult {
	answers := make(map[int]QuizAnswer, len(st.Battle.QuizAnswers))
	for _, a := range st.Battle.QuizAnswers {
		answers[a.QuestionID] = a
	}
	out := make([]QuizResult, 0, len(st.Article.Quiz))
	for _, q := range st.Article.Quiz {
		r := QuizResult{QuestionID: q.ID, Correct: q.CorrectOption, Status: AnswerWrong}
		if a, ok := answers[q.ID]; ok {
			r.Selected = a.OptionID
			if a.OptionID == q.CorrectOption {
				r.Status = AnswerCorrect
				if a.IsUnsure {
					r.Status = AnswerGuessed
				}
			}
		}
		out = append(out, r)
	}
	return out
}

// WrongQuestions returns the ids of questions that need coaching: wrong or
// guessed answers.
func (st State) WrongQuestions() []int {
	var ids []int
	for _, r := range st.AnalyzeQuiz() {
		if r.Status != AnswerCorrect {
			ids = append(ids, r.QuestionID)
		}
	}
	return ids
}
