package session

import (
	"time"

	"github.com/abhisek/jarvis/internal/role"
)

// Report summarises a lesson for the review stage.
type Report struct {
	SessionID     string       `json:"sessionId"`
	ArticleTitle  string       `json:"articleTitle"`
	VersionID     int          `json:"versionId,omitempty"`
	Stage         role.Stage   `json:"stage"`
	LookedUp      []string     `json:"lookedUp"`
	Quiz          []QuizResult `json:"quiz"`
	QuizCorrect   int          `json:"quizCorrect"`
	SkillScore    int          `json:"skillScore"`
	SkillTotal    int          `json:"skillTotal"`
	VocabMastered int          `json:"vocabMastered"`
	VocabTotal    int          `json:"vocabTotal"`
	ChunksRemoved int          `json:"chunksRemoved"`
	CoachingPhase int          `json:"coachingPhase"`
	Messages      int          `json:"messages"`
	GeneratedAt   time.Time    `json:"generatedAt"`
}

// Report builds a summary of the current state.
func (s *Session) Report() Report {
	st := s.Snapshot()
	r := Report{
		SessionID:     st.ID,
		ArticleTitle:  st.Article.Title,
		VersionID:     st.Article.VersionID,
		Stage:         st.Stage,
		LookedUp:      make([]string, 0, len(st.Battle.Lookups)),
		Quiz:          st.AnalyzeQuiz(),
		SkillScore:    st.Skill.Quiz.Score(),
		SkillTotal:    len(st.Skill.Quiz.Results),
		VocabMastered: st.Vocab.Mastered(),
		VocabTotal:    len(st.Vocab.List),
		CoachingPhase: st.Coaching.Phase,
		Messages:      len(st.Messages),
		GeneratedAt:   s.now(),
	}
	for _, l := range st.Battle.Lookups {
		r.LookedUp = append(r.LookedUp, l.Word)
	}
	for _, q := range r.Quiz {
		if q.Status != AnswerWrong {
			r.QuizCorrect++
		}
	}
	for _, c := range st.Surgery.Chunks {
		if c.Removed {
			r.ChunksRemoved++
		}
	}
	return r
}
