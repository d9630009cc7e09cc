package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/surgery"
	"github.com/abhisek/jarvis/internal/vocab"
)

// SetRole fixes this replica's role. Setting the same role again is a
// no-op; changing it is rejected.
func (s *Session) SetRole(r role.Role) error {
	return s.do(KindSetRole, roleArgs{Role: r})
}

func (s *Session) SetMuted(muted bool) error {
	return s.do(KindSetMuted, boolArgs{Value: muted})
}

// SetStage moves the lesson to stage. Entering vocab starts the
// vocabulary flow.
func (s *Session) SetStage(stage role.Stage) error {
	return s.do(KindSetStage, stageArgs{Stage: stage})
}

// AdvanceStage moves to the next stage. It is a no-op at review.
func (s *Session) AdvanceStage() error {
	return s.do(KindAdvanceStage, nil)
}

// Reset returns every sub-state to its defaults. The role and the loaded
// article are kept.
func (s *Session) Reset() error {
	return s.do(KindReset, nil)
}

// Restore replaces the session state with a stored snapshot.
func (s *Session) Restore(st State) error {
	return s.do(KindRestore, restoreArgs{State: st})
}

// AddMessage appends a chat message with a fresh id and timestamp.
func (s *Session) AddMessage(speaker Speaker, text string) error {
	return s.do(KindAddMessage, Message{
		ID:        uuid.NewString(),
		Role:      speaker,
		Text:      text,
		Timestamp: s.now(),
	})
}

// LoadArticle fetches an article version. On failure the current article
// is kept and the load state becomes failed.
func (s *Session) LoadArticle(ctx context.Context, articleID int, level string) error {
	if s.content == nil {
		return ErrNoContentSource
	}
	if err := s.do(KindContentLoading, nil); err != nil {
		return err
	}
	a, err := s.content.FetchArticleVersion(ctx, articleID, level)
	if err != nil {
		s.log.Warn("fetch article version",
			zap.Int("article", articleID),
			zap.String("level", level),
			zap.Error(err))
		if derr := s.do(KindContentFailed, stringArgs{Value: err.Error()}); derr != nil {
			return errors.Join(err, derr)
		}
		return fmt.Errorf("fetch article %d/%s: %w", articleID, level, err)
	}
	return s.do(KindContentLoaded, articleArgs{Article: a})
}

// AddLookup records a looked-up word. It reports false when the lookup was
// ignored because the cap was reached or the word was already recorded;
// neither applies in the coaching stage.
func (s *Session) AddLookup(word, sentence string, versionID int) (bool, error) {
	err := s.act(KindAddLookup, lookupArgs{Word: word, Context: sentence, VersionID: versionID})
	if errors.Is(err, errIgnored) {
		return false, nil
	}
	return err == nil, err
}

// AddHighlight appends h, assigning an id when empty, and returns the id.
func (s *Session) AddHighlight(h Highlight) (string, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return h.ID, s.do(KindAddHighlight, highlightArgs{Highlight: h})
}

func (s *Session) RemoveHighlight(id string) error {
	return s.do(KindRemoveHighlight, stringArgs{Value: id})
}

// MarkSpan toggles a highlight over a paragraph span, replacing any
// overlapping highlights.
func (s *Session) MarkSpan(paragraph, start, length int, text, color string) error {
	return s.do(KindMarkSpan, highlightArgs{Highlight: Highlight{
		ID:             uuid.NewString(),
		Text:           text,
		Color:          color,
		ParagraphIndex: paragraph,
		StartOffset:    start,
		Length:         length,
	}})
}

// SetQuizAnswer records an answer, replacing any earlier answer to the
// same question.
func (s *Session) SetQuizAnswer(questionID int, optionID string, unsure bool) error {
	return s.do(KindQuizAnswer, QuizAnswer{QuestionID: questionID, OptionID: optionID, IsUnsure: unsure})
}

func (s *Session) SetScrollProgress(p float64) error {
	return s.do(KindScroll, scrollArgs{Progress: p})
}

func (s *Session) SetCoachingPhase(p int) error {
	return s.do(KindCoachingPhase, intArgs{Value: p})
}

func (s *Session) AdvanceCoachingPhase() error {
	return s.do(KindCoachingAdvance, nil)
}

func (s *Session) PublishCoachingTask(t coaching.TaskType, target string) error {
	return s.do(KindCoachingPublish, publishArgs{Type: t, Target: target})
}

func (s *Session) ReceiveCoachingTask() error {
	return s.do(KindCoachingReceive, nil)
}

func (s *Session) CompleteCoachingTask() error {
	return s.do(KindCoachingComplete, nil)
}

func (s *Session) AddTeacherHighlight(h coaching.Highlight) error {
	return s.do(KindTeacherHighlight, coachingHighlightArgs{Highlight: h})
}

func (s *Session) AddStudentHighlight(h coaching.Highlight) error {
	return s.do(KindStudentHighlight, coachingHighlightArgs{Highlight: h})
}

func (s *Session) ClearTeacherHighlights() error {
	return s.do(KindClearTeacherHighlights, nil)
}

func (s *Session) SetGPSCardReceived(v bool) error {
	return s.do(KindGPSCard, boolArgs{Value: v})
}

func (s *Session) SetStudentVoiceAnswer(text string) error {
	return s.do(KindVoiceAnswer, stringArgs{Value: text})
}

func (s *Session) SetCoachingRecording(v bool) error {
	return s.do(KindCoachingRecording, boolArgs{Value: v})
}

func (s *Session) SetFocusParagraph(i int) error {
	return s.do(KindFocusParagraph, intArgs{Value: i})
}

// SetCorrectionQuestion selects the wrong question the coaching flow works
// on.
func (s *Session) SetCorrectionQuestion(id int) error {
	return s.do(KindCorrectionQuestion, intArgs{Value: id})
}

// ReselectAnswer records the student's new answer to the question under
// correction.
func (s *Session) ReselectAnswer(optionID string) error {
	return s.do(KindReselect, stringArgs{Value: optionID})
}

// ResetCoaching returns coaching to phase 0, keeping student highlights.
func (s *Session) ResetCoaching() error {
	return s.do(KindCoachingReset, nil)
}

func (s *Session) SetSkillNode(n int) error {
	return s.do(KindSkillNode, intArgs{Value: n})
}

func (s *Session) EquipSkill() error {
	return s.do(KindSkillEquip, nil)
}

func (s *Session) ConfirmFormula() error {
	return s.do(KindSkillConfirm, nil)
}

// UnlockDemoStep is the coach releasing demo step n.
func (s *Session) UnlockDemoStep(n int) error {
	return s.do(KindSkillUnlockStep, intArgs{Value: n})
}

// PerformDemoStep is the student finishing demo step n.
func (s *Session) PerformDemoStep(n int) error {
	return s.do(KindSkillPerformStep, intArgs{Value: n})
}

func (s *Session) StartSkillQuiz() error {
	return s.do(KindSkillStartQuiz, nil)
}

func (s *Session) ToggleSkillQuizWord(word string) error {
	return s.do(KindSkillToggleWord, stringArgs{Value: word})
}

func (s *Session) SetSkillQuizAnswer(optionID string, correct bool) error {
	return s.do(KindSkillSelect, skillSelectArgs{OptionID: optionID, Correct: correct})
}

func (s *Session) SetSkillQuizWrongAttempt(optionID string) error {
	return s.do(KindSkillWrong, stringArgs{Value: optionID})
}

func (s *Session) NextQuizQuestion() error {
	return s.do(KindSkillNext, nil)
}

func (s *Session) NextVocabCard() error {
	return s.do(KindVocabNext, nil)
}

func (s *Session) FlipVocabCard(v bool) error {
	return s.do(KindVocabFlip, boolArgs{Value: v})
}

func (s *Session) SetSyllableMode(v bool) error {
	return s.do(KindVocabSyllables, boolArgs{Value: v})
}

func (s *Session) SetSpeakEnabled(v bool) error {
	return s.do(KindVocabSpeak, boolArgs{Value: v})
}

func (s *Session) SetAudioPlayback(p vocab.Playback) error {
	return s.do(KindVocabPlayback, playbackArgs{Playback: p})
}

// PlayStandardAudio plays the current card's pronunciation through the
// Player. The playback flag returns to none when it ends.
func (s *Session) PlayStandardAudio() error {
	return s.do(KindVocabPlayStandard, nil)
}

func (s *Session) SetVocabRecording(rs vocab.RecordingState, score *int) error {
	return s.do(KindVocabRecording, recordingArgs{State: rs, Score: score})
}

func (s *Session) ToggleVocabCheck(word string) error {
	return s.do(KindVocabToggle, stringArgs{Value: word})
}

// SubmitExitPass grades the exit test. With every word mastered the lesson
// moves to surgery.
func (s *Session) SubmitExitPass() error {
	return s.do(KindVocabSubmit, nil)
}

// CompleteRemedialWord masters the current remedial word. After the last
// one the lesson moves to surgery.
func (s *Session) CompleteRemedialWord() error {
	return s.do(KindVocabRemedial, nil)
}

func (s *Session) SetReviewingWord(word string) error {
	return s.do(KindVocabReviewing, stringArgs{Value: word})
}

func (s *Session) SetSurgeryMode(m surgery.Mode) error {
	return s.do(KindSurgeryMode, surgeryModeArgs{Mode: m})
}

// RemoveChunk strikes a modifier chunk. Clicking a core chunk shakes it
// and returns surgery.ErrCoreChunk.
func (s *Session) RemoveChunk(id string) error {
	err := s.do(KindSurgeryRemove, stringArgs{Value: id})
	if errors.Is(err, surgery.ErrCoreChunk) {
		if serr := s.TriggerChunkShake(id); serr != nil {
			return errors.Join(err, serr)
		}
	}
	return err
}

func (s *Session) RestoreChunk(id string) error {
	return s.do(KindSurgeryRestore, stringArgs{Value: id})
}

func (s *Session) RestoreSentence() error {
	return s.do(KindSurgeryRestoreAll, nil)
}

// UndoChunk restores the most recently removed chunk.
func (s *Session) UndoChunk() error {
	return s.do(KindSurgeryUndo, nil)
}

// TriggerChunkShake shakes a chunk; it clears itself after the configured
// duration unless shaken again.
func (s *Session) TriggerChunkShake(id string) error {
	return s.do(KindSurgeryShake, shakeArgs{ID: id})
}
