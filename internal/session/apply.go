package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/surgery"
	"github.com/abhisek/jarvis/internal/vocab"
)

// effects are the side effects of an applied action. They run after the
// state change is visible to watchers.
type effects struct {
	loadVocab *vocabLoad
	play      *content.VocabItem
	shake     *shakeArgs
}

type vocabLoad struct {
	gen     uint64
	lookups []Lookup
}

// apply performs a on the session. It must leave the state untouched
// when it returns an error. Callers hold s.mu.
func (s *Session) apply(a Action, origin Origin) (effects, error) {
	if origin == OriginRemote && !a.Kind.Replicated() {
		return effects{}, fmt.Errorf("%w: %s is local only", ErrUnknownAction, a.Kind)
	}

	switch a.Kind {
	case KindSetRole:
		args, err := decodeArgs[roleArgs](a)
		if err != nil {
			return effects{}, err
		}
		return effects{}, s.setRoleLocked(args.Role)

	case KindSetMuted:
		args, err := decodeArgs[boolArgs](a)
		if err != nil {
			return effects{}, err
		}
		s.st.muted = args.Value
		return effects{}, nil

	case KindRestore:
		args, err := decodeArgs[restoreArgs](a)
		if err != nil {
			return effects{}, err
		}
		s.restoreLocked(args.State)
		return effects{}, nil

	case KindReset:
		s.resetLocked()
		return effects{}, nil

	case KindSetStage:
		args, err := decodeArgs[stageArgs](a)
		if err != nil {
			return effects{}, err
		}
		if args.Stage.Index() < 0 {
			return effects{}, ErrInvalidStage
		}
		return s.enterStageLocked(args.Stage), nil

	case KindAdvanceStage:
		next := s.st.stage.Next()
		if next == s.st.stage {
			return effects{}, errIgnored
		}
		return s.enterStageLocked(next), nil

	case KindAddMessage:
		m, err := decodeArgs[Message](a)
		if err != nil {
			return effects{}, err
		}
		switch m.Role {
		case SpeakerJarvis, SpeakerStudent, SpeakerCoach:
		default:
			return effects{}, ErrInvalidSpeaker
		}
		s.st.messages = append(s.st.messages, m)
		return effects{}, nil

	case KindContentLoading:
		s.st.loadState = LoadLoading
		s.st.loadError = ""
		return effects{}, nil

	case KindContentLoaded:
		args, err := decodeArgs[articleArgs](a)
		if err != nil {
			return effects{}, err
		}
		s.st.article = args.Article
		s.st.loadState = LoadLoaded
		s.st.loadError = ""
		s.surgery.Load(chunksFor(args.Article))
		return effects{}, nil

	case KindContentFailed:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return effects{}, err
		}
		s.st.loadState = LoadFailed
		s.st.loadError = args.Value
		return effects{}, nil
	}

	if strings.HasPrefix(string(a.Kind), "battle.") {
		return effects{}, s.applyBattle(a)
	}
	if strings.HasPrefix(string(a.Kind), "coaching.") {
		return effects{}, s.applyCoaching(a)
	}
	if strings.HasPrefix(string(a.Kind), "skill.") {
		return effects{}, s.applySkill(a)
	}
	if strings.HasPrefix(string(a.Kind), "vocab.") {
		return s.applyVocab(a)
	}
	if strings.HasPrefix(string(a.Kind), "surgery.") {
		return s.applySurgery(a)
	}
	return effects{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}

func (s *Session) setRoleLocked(r role.Role) error {
	if !r.Valid() {
		return ErrInvalidRole
	}
	if s.st.role == r {
		return errIgnored
	}
	if s.st.role != role.None {
		return ErrRoleAlreadySet
	}
	s.st.role = r
	s.st.viewMode = role.Student
	if r == role.Coach {
		s.st.viewMode = role.Coach
	}
	return nil
}

// enterStageLocked is the stage controller. Entering vocab starts the
// vocabulary flow from the recorded lookups.
func (s *Session) enterStageLocked(st role.Stage) effects {
	s.st.stage = st
	if st != role.StageVocab {
		return effects{}
	}

	s.vocabGen++
	words := uniqueLookups(s.st.battle.Lookups)
	if len(words) == 0 {
		s.vocab.Load(content.DefaultVocabList())
		s.st.vocabLoading = false
		return effects{}
	}
	s.vocab.Load(nil)
	s.st.vocabLoading = true
	return effects{loadVocab: &vocabLoad{gen: s.vocabGen, lookups: words}}
}

func uniqueLookups(lookups []Lookup) []Lookup {
	var out []Lookup
	seen := make(map[string]bool)
	for _, l := range lookups {
		key := strings.ToLower(l.Word)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

func (s *Session) resetLocked() {
	s.st = core{
		role:      s.st.role,
		viewMode:  s.st.viewMode,
		stage:     role.StageWarmUp,
		messages:  []Message{},
		muted:     s.st.muted,
		article:   s.st.article,
		loadState: s.st.loadState,
		loadError: s.st.loadError,
		battle:    emptyBattle(),
	}
	s.coaching = coaching.New()
	s.skill.Reset()
	s.vocab.Load(nil)
	s.surgery.Load(chunksFor(s.st.article))
	s.vocabGen++
	s.stopTimersLocked()
}

func (s *Session) restoreLocked(st State) {
	r, vm := s.st.role, s.st.viewMode
	if r == role.None {
		r, vm = st.Role, st.ViewMode
	}
	b := st.Battle
	if b.Lookups == nil {
		b.Lookups = []Lookup{}
	}
	if b.Highlights == nil {
		b.Highlights = []Highlight{}
	}
	if b.QuizAnswers == nil {
		b.QuizAnswers = []QuizAnswer{}
	}
	msgs := st.Messages
	if msgs == nil {
		msgs = []Message{}
	}
	s.st = core{
		role:         r,
		viewMode:     vm,
		stage:        st.Stage,
		messages:     msgs,
		muted:        s.st.muted,
		article:      st.Article,
		loadState:    st.LoadState,
		loadError:    st.LoadError,
		battle:       b,
		vocabLoading: false,
	}
	s.coaching.Restore(st.Coaching)
	s.skill.Restore(st.Skill)
	s.vocab.Restore(st.Vocab)
	s.surgery.Restore(st.Surgery)
	s.vocabGen++
	s.stopTimersLocked()
}

func (s *Session) applyBattle(a Action) error {
	b := &s.st.battle
	switch a.Kind {
	case KindAddLookup:
		args, err := decodeArgs[lookupArgs](a)
		if err != nil {
			return err
		}
		if s.st.stage != role.StageCoaching {
			if len(b.Lookups) >= s.cfg.LookupLimit {
				return errIgnored
			}
			if slices.ContainsFunc(b.Lookups, func(l Lookup) bool { return strings.EqualFold(l.Word, args.Word) }) {
				return errIgnored
			}
		}
		b.Lookups = append(b.Lookups, Lookup{Word: args.Word, Context: args.Context, VersionID: args.VersionID, At: a.At})
		return nil

	case KindAddHighlight:
		args, err := decodeArgs[highlightArgs](a)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(b.Highlights, func(h Highlight) bool { return h.ID == args.Highlight.ID }) {
			return errIgnored
		}
		b.Highlights = append(b.Highlights, args.Highlight)
		return nil

	case KindRemoveHighlight:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(b.Highlights, func(h Highlight) bool { return h.ID == args.Value })
		if i < 0 {
			return errIgnored
		}
		b.Highlights = slices.Delete(slices.Clone(b.Highlights), i, i+1)
		return nil

	case KindMarkSpan:
		args, err := decodeArgs[highlightArgs](a)
		if err != nil {
			return err
		}
		if args.Highlight.Length <= 0 {
			return ErrInvalidSpan
		}
		b.Highlights = markSpan(b.Highlights, args.Highlight)
		return nil

	case KindQuizAnswer:
		ans, err := decodeArgs[QuizAnswer](a)
		if err != nil {
			return err
		}
		if _, ok := s.st.article.Question(ans.QuestionID); !ok {
			return ErrUnknownQuestion
		}
		b.QuizAnswers = upsertAnswer(b.QuizAnswers, ans)
		return nil

	case KindScroll:
		args, err := decodeArgs[scrollArgs](a)
		if err != nil {
			return err
		}
		b.ScrollProgress = min(max(args.Progress, 0), 100)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}

func (s *Session) applyCoaching(a Action) error {
	e := s.coaching
	switch a.Kind {
	case KindCoachingPhase:
		args, err := decodeArgs[intArgs](a)
		if err != nil {
			return err
		}
		return e.SetPhase(args.Value)
	case KindCoachingAdvance:
		return e.Advance()
	case KindCoachingPublish:
		args, err := decodeArgs[publishArgs](a)
		if err != nil {
			return err
		}
		return e.Publish(args.Type, args.Target)
	case KindCoachingReceive:
		return e.Receive()
	case KindCoachingComplete:
		return e.Complete()
	case KindTeacherHighlight, KindStudentHighlight:
		args, err := decodeArgs[coachingHighlightArgs](a)
		if err != nil {
			return err
		}
		if a.Kind == KindTeacherHighlight {
			e.AddTeacherHighlight(args.Highlight)
		} else {
			e.AddStudentHighlight(args.Highlight)
		}
		return nil
	case KindClearTeacherHighlights:
		e.ClearTeacherHighlights()
		return nil
	case KindGPSCard:
		args, err := decodeArgs[boolArgs](a)
		if err != nil {
			return err
		}
		e.SetGPSCardReceived(args.Value)
		return nil
	case KindVoiceAnswer:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return err
		}
		e.SetVoiceAnswer(args.Value)
		return nil
	case KindCoachingRecording:
		args, err := decodeArgs[boolArgs](a)
		if err != nil {
			return err
		}
		e.SetRecording(args.Value)
		return nil
	case KindFocusParagraph:
		args, err := decodeArgs[intArgs](a)
		if err != nil {
			return err
		}
		e.SetFocusParagraph(args.Value)
		return nil
	case KindCorrectionQuestion:
		args, err := decodeArgs[intArgs](a)
		if err != nil {
			return err
		}
		if _, ok := s.st.article.Question(args.Value); !ok {
			return ErrUnknownQuestion
		}
		e.SetQuestion(args.Value)
		return nil
	case KindReselect:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return err
		}
		q, ok := s.st.article.Question(e.State().QuestionID)
		if !ok {
			return ErrUnknownQuestion
		}
		_, err = e.Reselect(args.Value, q.CorrectOption)
		return err
	case KindCoachingReset:
		e.Reset()
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}

func (s *Session) applySkill(a Action) error {
	e := s.skill
	switch a.Kind {
	case KindSkillNode, KindSkillUnlockStep, KindSkillPerformStep:
		args, err := decodeArgs[intArgs](a)
		if err != nil {
			return err
		}
		switch a.Kind {
		case KindSkillNode:
			return e.SetNode(args.Value)
		case KindSkillUnlockStep:
			return e.UnlockDemoStep(args.Value)
		default:
			return e.PerformDemoStep(args.Value)
		}
	case KindSkillEquip:
		e.Equip()
		return nil
	case KindSkillConfirm:
		return e.ConfirmFormula()
	case KindSkillStartQuiz:
		e.StartQuiz()
		return nil
	case KindSkillToggleWord:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return err
		}
		return e.ToggleHighlight(args.Value)
	case KindSkillSelect:
		args, err := decodeArgs[skillSelectArgs](a)
		if err != nil {
			return err
		}
		return e.SelectAnswer(args.OptionID, args.Correct)
	case KindSkillWrong:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return err
		}
		e.SetWrongAttempt(args.Value)
		return nil
	case KindSkillNext:
		return e.NextQuestion()
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}

func (s *Session) applyVocab(a Action) (effects, error) {
	e := s.vocab
	switch a.Kind {
	case KindVocabLoad:
		args, err := decodeArgs[vocabLoadArgs](a)
		if err != nil {
			return effects{}, err
		}
		e.Load(args.Items)
		s.st.vocabLoading = false
		return effects{}, nil

	case KindVocabNext:
		e.NextCard()
		return effects{}, nil

	case KindVocabFlip, KindVocabSyllables, KindVocabSpeak:
		args, err := decodeArgs[boolArgs](a)
		if err != nil {
			return effects{}, err
		}
		switch a.Kind {
		case KindVocabFlip:
			e.FlipCard(args.Value)
		case KindVocabSyllables:
			e.SetSyllableMode(args.Value)
		default:
			e.SetSpeakEnabled(args.Value)
		}
		return effects{}, nil

	case KindVocabPlayback:
		args, err := decodeArgs[playbackArgs](a)
		if err != nil {
			return effects{}, err
		}
		return effects{}, e.SetPlayback(args.Playback)

	case KindVocabPlayStandard:
		item, ok := e.Current()
		if !ok {
			return effects{}, errIgnored
		}
		if err := e.SetPlayback(vocab.PlaybackStandard); err != nil {
			return effects{}, err
		}
		return effects{play: &item}, nil

	case KindVocabPlaybackEnded:
		return effects{}, e.SetPlayback(vocab.PlaybackNone)

	case KindVocabRecording:
		args, err := decodeArgs[recordingArgs](a)
		if err != nil {
			return effects{}, err
		}
		return effects{}, e.SetRecording(args.State, args.Score)

	case KindVocabToggle:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return effects{}, err
		}
		return effects{}, e.ToggleCheck(args.Value)

	case KindVocabSubmit, KindVocabRemedial:
		if s.st.stage != role.StageVocab {
			return effects{}, ErrWrongStage
		}
		var done bool
		var err error
		if a.Kind == KindVocabSubmit {
			done, err = e.SubmitExitPass()
		} else {
			done, err = e.CompleteRemedialWord()
		}
		if err != nil {
			return effects{}, err
		}
		if done {
			return s.enterStageLocked(role.StageSurgery), nil
		}
		return effects{}, nil

	case KindVocabReviewing:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return effects{}, err
		}
		e.SetReviewingWord(args.Value)
		return effects{}, nil
	}
	return effects{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}

func (s *Session) applySurgery(a Action) (effects, error) {
	e := s.surgery
	switch a.Kind {
	case KindSurgeryMode:
		args, err := decodeArgs[surgeryModeArgs](a)
		if err != nil {
			return effects{}, err
		}
		return effects{}, e.SetMode(args.Mode)

	case KindSurgeryRemove, KindSurgeryRestore:
		args, err := decodeArgs[stringArgs](a)
		if err != nil {
			return effects{}, err
		}
		if a.Kind == KindSurgeryRemove {
			return effects{}, e.Remove(args.Value, a.Actor)
		}
		return effects{}, e.RestoreChunk(args.Value, a.Actor)

	case KindSurgeryRestoreAll:
		e.RestoreSentence()
		return effects{}, nil

	case KindSurgeryUndo:
		if !e.State().Mode.Allows(a.Actor) {
			return effects{}, surgery.ErrModeForbids
		}
		_, err := e.Undo()
		return effects{}, err

	case KindSurgeryShake:
		args, err := decodeArgs[shakeArgs](a)
		if err != nil {
			return effects{}, err
		}
		gen, err := e.TriggerShake(args.ID)
		if err != nil {
			return effects{}, err
		}
		return effects{shake: &shakeArgs{ID: args.ID, Gen: gen}}, nil

	case KindSurgeryClearShake:
		args, err := decodeArgs[shakeArgs](a)
		if err != nil {
			return effects{}, err
		}
		if !e.ClearShake(args.ID, args.Gen) {
			return effects{}, errIgnored
		}
		return effects{}, nil
	}
	return effects{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}
