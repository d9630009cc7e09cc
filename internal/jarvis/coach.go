package jarvis

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/llm"
	"github.com/abhisek/jarvis/internal/session"
)

// Lesson is the part of a session the coach talks into.
type Lesson interface {
	Snapshot() session.State
	AddMessage(speaker session.Speaker, text string) error
}

// Coach generates the coach persona's lines. A nil provider makes every
// call fall back to the scripted lines.
type Coach struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// New creates a Coach.
func New(provider llm.Provider, cfg Config, log *zap.Logger) *Coach {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coach{provider: provider, cfg: cfg, log: log.Named("jarvis")}
}

// Line writes the coach's next line for in. Generation failures are
// logged and answered with the scripted line, so the error is only
// non-nil when ctx itself is done.
func (c *Coach) Line(ctx context.Context, in ScriptInput) (Line, error) {
	if err := ctx.Err(); err != nil {
		return Line{}, err
	}
	if c.provider == nil {
		return scriptedLine(in), nil
	}

	genCtx := llm.WithPurpose(ctx, llm.PurposeCoachScript)
	if c.cfg.LineTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(genCtx, c.cfg.LineTimeout)
		defer cancel()
	}

	line, err := c.generateLine(genCtx, in)
	if err != nil {
		if ctx.Err() != nil {
			return Line{}, ctx.Err()
		}
		c.log.Warn("coach line fell back to script",
			zap.Int("phase", in.Phase),
			zap.Error(err))
		return scriptedLine(in), nil
	}
	return line, nil
}

func (c *Coach) generateLine(ctx context.Context, in ScriptInput) (Line, error) {
	req := llm.Request{
		System: coachSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildLineUserMessage(in)},
		},
		Schema:      CoachLineSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return Line{}, fmt.Errorf("coach line generation: %w", err)
	}

	var out Line
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Line{}, fmt.Errorf("parse coach line: %w", err)
	}
	if out.Task == "" {
		out.Task = string(in.Task)
	}
	if !validParagraph(in, out.Paragraph) {
		out.Paragraph = -1
	}
	return out, nil
}

// validParagraph accepts -1 or one of the question's evidence paragraphs.
func validParagraph(in ScriptInput, p int) bool {
	if p == -1 {
		return true
	}
	if in.Question == nil {
		return false
	}
	for _, rp := range in.Question.RelatedParagraphs {
		if rp == p {
			return true
		}
	}
	return false
}

// Narrate writes the line for the lesson's current state and posts it to
// the lesson chat as Jarvis.
func (c *Coach) Narrate(ctx context.Context, lesson Lesson) (Line, error) {
	line, err := c.Line(ctx, ScriptFor(lesson.Snapshot()))
	if err != nil {
		return Line{}, err
	}
	if err := lesson.AddMessage(session.SpeakerJarvis, line.Say); err != nil {
		return Line{}, fmt.Errorf("post coach line: %w", err)
	}
	return line, nil
}

func scriptedLine(in ScriptInput) Line {
	l := Line{Task: string(in.Task), Paragraph: -1, Scripted: true}
	if in.Question != nil && len(in.Question.RelatedParagraphs) > 0 && in.Phase >= 3 {
		l.Paragraph = in.Question.RelatedParagraphs[0]
	}

	switch in.Phase {
	case 0:
		l.Say = "Let's look at a question you missed, together."
	case 1:
		l.Say = "Tell me in your own words: why did you pick that answer?"
	case 2:
		l.Say = "Where in the article did you read about this? Check your GPS card."
	case 3:
		l.Say = "Read this paragraph again slowly. Which sentence talks about the question?"
	case 4:
		l.Say = "Highlight the exact words that answer the question."
	case 5:
		l.Say = "Compare your highlight with the options. Which one says the same thing?"
		if in.WrongAttempts >= coaching.MaxWrongAttempts && in.Question != nil {
			l.Say = fmt.Sprintf("The answer is %s. Look at how the highlighted words say it.", in.Question.CorrectOption)
		}
	default:
		l.Say = "Great work! Say in one sentence why the answer is right."
	}
	return l
}
