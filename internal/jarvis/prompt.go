package jarvis

import (
	"fmt"
	"strings"

	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/session"
)

const coachSystemPrompt = `You are Jarvis, a warm reading coach for children learning English. You never give the answer away. You ask one short question at a time that sends the student back to the text.`

func buildLineUserMessage(in ScriptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Article: %s\n", in.ArticleTitle)
	fmt.Fprintf(&b, "Coaching phase: %d (%s)\n", in.Phase, coaching.PhaseName(in.Phase))
	if in.Task != coaching.TaskNone {
		fmt.Fprintf(&b, "Task for the student: %s\n", in.Task)
	}

	if in.Question != nil {
		fmt.Fprintf(&b, "\nQuestion: %s\n", in.Question.Prompt)
		for _, o := range in.Question.Options {
			fmt.Fprintf(&b, "%s. %s\n", o.ID, o.Text)
		}
		if in.Selected != "" {
			fmt.Fprintf(&b, "Student chose: %s\n", in.Selected)
		} else {
			b.WriteString("Student did not answer.\n")
		}
		fmt.Fprintf(&b, "Correct answer (do not reveal): %s\n", in.Question.CorrectOption)
	}

	if len(in.Evidence) > 0 {
		b.WriteString("\nEvidence paragraphs:\n")
		for i, p := range in.Evidence {
			idx := i
			if in.Question != nil && i < len(in.Question.RelatedParagraphs) {
				idx = in.Question.RelatedParagraphs[i]
			}
			fmt.Fprintf(&b, "[%d] %s\n", idx, p)
		}
	}

	if in.VoiceAnswer != "" {
		fmt.Fprintf(&b, "\nStudent said: %q\n", in.VoiceAnswer)
	}
	if in.WrongAttempts > 0 {
		fmt.Fprintf(&b, "Wrong reselects so far: %d of %d\n", in.WrongAttempts, coaching.MaxWrongAttempts)
	}

	b.WriteString(`
Instructions:
Write the coach's next line for this phase. Keep it under 30 words, friendly and simple.
Point at one evidence paragraph by its index when it helps, otherwise use -1.
Never state the correct option letter.`)

	return b.String()
}

const mnemonicSystemPrompt = `You write memory hints for English vocabulary for children aged 8-12. A hint is one vivid, funny or visual sentence.`

func buildMnemonicUserMessage(word, definition, sentence string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word: %s\n", word)
	if definition != "" {
		fmt.Fprintf(&b, "Meaning: %s\n", definition)
	}
	if sentence != "" {
		fmt.Fprintf(&b, "Seen in: %s\n", sentence)
	}
	b.WriteString("\nWrite one memory hint. Plain text, no emoji.")
	return b.String()
}

const feedbackSystemPrompt = `You are Jarvis, a reading coach, writing end-of-lesson feedback a child reads aloud with their coach. Be specific and kind.`

func buildFeedbackUserMessage(r session.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Article: %s\n", r.ArticleTitle)
	fmt.Fprintf(&b, "Comprehension: %d of %d correct\n", r.QuizCorrect, len(r.Quiz))
	for _, q := range r.Quiz {
		fmt.Fprintf(&b, "- Q%d: %s\n", q.QuestionID, q.Status)
	}
	if r.SkillTotal > 0 {
		fmt.Fprintf(&b, "Skill practice: %d of %d\n", r.SkillScore, r.SkillTotal)
	}
	if r.VocabTotal > 0 {
		fmt.Fprintf(&b, "Words mastered: %d of %d\n", r.VocabMastered, r.VocabTotal)
	}
	if len(r.LookedUp) > 0 {
		fmt.Fprintf(&b, "Words looked up: %s\n", strings.Join(r.LookedUp, ", "))
	}
	if r.ChunksRemoved > 0 {
		fmt.Fprintf(&b, "Sentence chunks removed: %d\n", r.ChunksRemoved)
	}

	b.WriteString(`
Instructions:
Summarise the lesson in 2-3 sentences, list 1-3 strengths and 1-3 next steps.
Each list entry is 5-10 words.`)

	return b.String()
}
