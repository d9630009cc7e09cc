package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/surgery"
	"github.com/abhisek/jarvis/internal/vocab"
)

// Kind names a session action.
type Kind string

const (
	KindSetRole      Kind = "role.set"
	KindSetMuted     Kind = "media.muted"
	KindRemoteStream Kind = "media.stream"
	KindRestore      Kind = "session.restore"
	KindReset        Kind = "session.reset"
	KindSetStage     Kind = "stage.set"
	KindAdvanceStage Kind = "stage.advance"
	KindAddMessage   Kind = "message.add"

	KindContentLoading Kind = "content.loading"
	KindContentLoaded  Kind = "content.loaded"
	KindContentFailed  Kind = "content.failed"

	KindAddLookup       Kind = "battle.lookup"
	KindAddHighlight    Kind = "battle.highlight_add"
	KindRemoveHighlight Kind = "battle.highlight_remove"
	KindMarkSpan        Kind = "battle.mark_span"
	KindQuizAnswer      Kind = "battle.quiz_answer"
	KindScroll          Kind = "battle.scroll"

	KindCoachingPhase          Kind = "coaching.set_phase"
	KindCoachingAdvance        Kind = "coaching.advance"
	KindCoachingPublish        Kind = "coaching.publish"
	KindCoachingReceive        Kind = "coaching.receive"
	KindCoachingComplete       Kind = "coaching.complete"
	KindTeacherHighlight       Kind = "coaching.teacher_highlight"
	KindStudentHighlight       Kind = "coaching.student_highlight"
	KindClearTeacherHighlights Kind = "coaching.clear_teacher_highlights"
	KindGPSCard                Kind = "coaching.gps_card"
	KindVoiceAnswer            Kind = "coaching.voice_answer"
	KindCoachingRecording      Kind = "coaching.recording"
	KindFocusParagraph         Kind = "coaching.focus"
	KindCorrectionQuestion     Kind = "coaching.question"
	KindReselect               Kind = "coaching.reselect"
	KindCoachingReset          Kind = "coaching.reset"

	KindSkillNode        Kind = "skill.set_node"
	KindSkillEquip       Kind = "skill.equip"
	KindSkillConfirm     Kind = "skill.confirm_formula"
	KindSkillUnlockStep  Kind = "skill.unlock_step"
	KindSkillPerformStep Kind = "skill.perform_step"
	KindSkillStartQuiz   Kind = "skill.start_quiz"
	KindSkillToggleWord  Kind = "skill.toggle_word"
	KindSkillSelect      Kind = "skill.select"
	KindSkillWrong       Kind = "skill.wrong_attempt"
	KindSkillNext        Kind = "skill.next_question"

	KindVocabLoad          Kind = "vocab.load"
	KindVocabNext          Kind = "vocab.next"
	KindVocabFlip          Kind = "vocab.flip"
	KindVocabSyllables     Kind = "vocab.syllables"
	KindVocabSpeak         Kind = "vocab.speak"
	KindVocabPlayback      Kind = "vocab.playback"
	KindVocabPlayStandard  Kind = "vocab.play_standard"
	KindVocabPlaybackEnded Kind = "vocab.playback_ended"
	KindVocabRecording     Kind = "vocab.recording"
	KindVocabToggle        Kind = "vocab.toggle"
	KindVocabSubmit        Kind = "vocab.submit_exit_pass"
	KindVocabRemedial      Kind = "vocab.complete_remedial"
	KindVocabReviewing     Kind = "vocab.reviewing"

	KindSurgeryMode       Kind = "surgery.mode"
	KindSurgeryRemove     Kind = "surgery.remove"
	KindSurgeryRestore    Kind = "surgery.restore"
	KindSurgeryRestoreAll Kind = "surgery.restore_all"
	KindSurgeryUndo       Kind = "surgery.undo"
	KindSurgeryShake      Kind = "surgery.shake"
	KindSurgeryClearShake Kind = "surgery.clear_shake"
)

// Replicated reports whether actions of kind k are shared with the other
// replica. Role, media and shake-clear actions describe one client only.
func (k Kind) Replicated() bool {
	switch k {
	case KindSetRole, KindSetMuted, KindRemoteStream, KindRestore, KindSurgeryClearShake:
		return false
	}
	return true
}

// Action is one state transition, in a form that can be journaled and sent
// to another replica. Ids and timestamps are fixed when the action is
// built so every replica applies identical values.
type Action struct {
	Kind  Kind            `json:"kind"`
	Actor role.Role       `json:"actor"`
	Args  json.RawMessage `json:"args,omitempty"`
	At    time.Time       `json:"at"`
}

// NewAction builds an action with args encoded as JSON.
func NewAction(kind Kind, actor role.Role, args any, at time.Time) (Action, error) {
	a := Action{Kind: kind, Actor: actor, At: at}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return Action{}, fmt.Errorf("encode %s args: %w", kind, err)
		}
		a.Args = raw
	}
	return a, nil
}

func decodeArgs[T any](a Action) (T, error) {
	var v T
	if len(a.Args) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(a.Args, &v); err != nil {
		return v, fmt.Errorf("decode %s args: %w", a.Kind, err)
	}
	return v, nil
}

type roleArgs struct {
	Role role.Role `json:"role"`
}

type boolArgs struct {
	Value bool `json:"value"`
}

type intArgs struct {
	Value int `json:"value"`
}

type stringArgs struct {
	Value string `json:"value"`
}

type stageArgs struct {
	Stage role.Stage `json:"stage"`
}

type articleArgs struct {
	Article content.Article `json:"article"`
}

type lookupArgs struct {
	Word      string `json:"word"`
	Context   string `json:"context"`
	VersionID int    `json:"versionId"`
}

type highlightArgs struct {
	Highlight Highlight `json:"highlight"`
}

type scrollArgs struct {
	Progress float64 `json:"progress"`
}

type publishArgs struct {
	Type   coaching.TaskType `json:"type"`
	Target string            `json:"target,omitempty"`
}

type coachingHighlightArgs struct {
	Highlight coaching.Highlight `json:"highlight"`
}

type skillSelectArgs struct {
	OptionID string `json:"optionId"`
	Correct  bool   `json:"correct"`
}

type vocabLoadArgs struct {
	Items []content.VocabItem `json:"items"`
}

type playbackArgs struct {
	Playback vocab.Playback `json:"playback"`
}

type recordingArgs struct {
	State vocab.RecordingState `json:"state"`
	Score *int                 `json:"score,omitempty"`
}

type surgeryModeArgs struct {
	Mode surgery.Mode `json:"mode"`
}

type shakeArgs struct {
	ID  string `json:"id"`
	Gen uint64 `json:"gen,omitempty"`
}

type restoreArgs struct {
	State State `json:"state"`
}
