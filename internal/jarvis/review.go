package jarvis

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/llm"
	"github.com/abhisek/jarvis/internal/session"
)

// Review writes end-of-lesson feedback for r, falling back to a scripted
// summary when generation fails.
func (c *Coach) Review(ctx context.Context, r session.Report) (Feedback, error) {
	if err := ctx.Err(); err != nil {
		return Feedback{}, err
	}
	if c.provider == nil {
		return scriptedFeedback(r), nil
	}

	req := llm.Request{
		System: feedbackSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildFeedbackUserMessage(r)},
		},
		Schema:      FeedbackSchema,
		MaxTokens:   c.cfg.FeedbackMaxTokens,
		Temperature: c.cfg.Temperature,
	}
	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeFeedback), req)
	if err != nil {
		if ctx.Err() != nil {
			return Feedback{}, ctx.Err()
		}
		c.log.Warn("feedback fell back to script", zap.Error(err))
		return scriptedFeedback(r), nil
	}

	var out Feedback
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		c.log.Warn("feedback parse failed", zap.Error(err))
		return scriptedFeedback(r), nil
	}
	return out, nil
}

func scriptedFeedback(r session.Report) Feedback {
	f := Feedback{
		Summary:  fmt.Sprintf("You finished %q and got %d of %d questions right.", r.ArticleTitle, r.QuizCorrect, len(r.Quiz)),
		Scripted: true,
	}
	if r.QuizCorrect == len(r.Quiz) && len(r.Quiz) > 0 {
		f.Strengths = append(f.Strengths, "Answered every comprehension question correctly")
	}
	if r.VocabTotal > 0 && r.VocabMastered == r.VocabTotal {
		f.Strengths = append(f.Strengths, "Mastered every new word")
	}
	if r.ChunksRemoved > 0 {
		f.Strengths = append(f.Strengths, "Found the core of a long sentence")
	}
	if r.QuizCorrect < len(r.Quiz) {
		f.NextSteps = append(f.NextSteps, "Go back to the text before choosing an answer")
	}
	if len(r.LookedUp) > 0 {
		f.NextSteps = append(f.NextSteps, "Review the words you looked up today")
	}
	if len(f.Strengths) == 0 {
		f.Strengths = []string{"Stayed with a hard article to the end"}
	}
	if len(f.NextSteps) == 0 {
		f.NextSteps = []string{"Try the next level up"}
	}
	return f
}
