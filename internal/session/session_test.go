package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/skill"
	"github.com/abhisek/jarvis/internal/surgery"
	"github.com/abhisek/jarvis/internal/vocab"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestSession(t *testing.T, r role.Role, opts ...Option) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ShakeDuration = 20 * time.Millisecond
	s := New(cfg, opts...)
	t.Cleanup(s.Close)
	if r != role.None {
		require.NoError(t, s.SetRole(r))
	}
	return s
}

type fakeLookup struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
	gate  chan struct{}
}

func (f *fakeLookup) LookupWord(ctx context.Context, word, sentence string, versionID int) (content.VocabItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, word)
	f.mu.Unlock()
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return content.VocabItem{}, ctx.Err()
		}
	}
	if f.fail[word] {
		return content.VocabItem{}, errors.New("lookup service down")
	}
	return content.VocabItem{Word: word, Syllables: []string{word}, Definition: "def of " + word, ContextSentence: sentence}, nil
}

func TestSetRole(t *testing.T) {
	s := newTestSession(t, role.None)
	require.NoError(t, s.SetRole(role.Coach))
	st := s.Snapshot()
	assert.Equal(t, role.Coach, st.Role)
	assert.Equal(t, role.Coach, st.ViewMode)

	require.NoError(t, s.SetRole(role.Coach), "same role is idempotent")
	require.ErrorIs(t, s.SetRole(role.Student), ErrRoleAlreadySet)
	require.ErrorIs(t, newTestSession(t, role.None).SetRole(role.None), ErrInvalidRole)

	st2 := newTestSession(t, role.Student).Snapshot()
	assert.Equal(t, role.Student, st2.ViewMode)
}

func TestQuizAnswerUpsert(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.SetQuizAnswer(1, "B", false))
	require.NoError(t, s.SetQuizAnswer(1, "B", false))
	require.NoError(t, s.SetQuizAnswer(2, "A", true))
	require.NoError(t, s.SetQuizAnswer(1, "C", true))

	want := []QuizAnswer{
		{QuestionID: 1, OptionID: "C", IsUnsure: true},
		{QuestionID: 2, OptionID: "A", IsUnsure: true},
	}
	if diff := cmp.Diff(want, s.Snapshot().Battle.QuizAnswers); diff != "" {
		t.Errorf("quiz answers (-want +got):\n%s", diff)
	}

	var ae *ActionError
	err := s.SetQuizAnswer(99, "A", false)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindQuizAnswer, ae.Kind)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestLookupCap(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.SetStage(role.StageBattle))

	words := []string{"seismic", "morphed", "elusive", "affluent"}
	for i, w := range words {
		ok, err := s.AddLookup(w, "", 1)
		require.NoError(t, err)
		assert.Equal(t, i < 3, ok, "lookup %q", w)
	}
	assert.Len(t, s.Snapshot().Battle.Lookups, 3)

	require.NoError(t, s.SetStage(role.StageCoaching))
	ok, err := s.AddLookup("affluent", "", 1)
	require.NoError(t, err)
	assert.True(t, ok, "coaching stage bypasses the cap")
	assert.Len(t, s.Snapshot().Battle.Lookups, 4)
}

func TestLookupDedupOutsideCoaching(t *testing.T) {
	s := newTestSession(t, role.Student)
	ok, _ := s.AddLookup("Seismic", "", 1)
	require.True(t, ok)
	ok, _ = s.AddLookup("seismic", "", 1)
	assert.False(t, ok)
	assert.Len(t, s.Snapshot().Battle.Lookups, 1)
}

func TestHighlightToggle(t *testing.T) {
	s := newTestSession(t, role.Student)
	id, err := s.AddHighlight(Highlight{Text: "foo", Color: "yellow"})
	require.NoError(t, err)
	require.Len(t, s.Snapshot().Battle.Highlights, 1)

	require.NoError(t, s.RemoveHighlight(id))
	assert.Empty(t, s.Snapshot().Battle.Highlights)
}

func TestMarkSpan(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.MarkSpan(0, 10, 5, "years", "yellow"))
	require.NoError(t, s.MarkSpan(0, 30, 4, "what", "yellow"))
	require.NoError(t, s.MarkSpan(1, 12, 6, "cost", "yellow"))

	// Overlaps the first span only: it replaces it.
	require.NoError(t, s.MarkSpan(0, 12, 8, "ars, the", "green"))
	hs := s.Snapshot().Battle.Highlights
	require.Len(t, hs, 3)
	texts := []string{hs[0].Text, hs[1].Text, hs[2].Text}
	assert.ElementsMatch(t, []string{"what", "cost", "ars, the"}, texts)

	// Identical position toggles off.
	require.NoError(t, s.MarkSpan(0, 12, 8, "ars, the", "green"))
	assert.Len(t, s.Snapshot().Battle.Highlights, 2)

	assert.ErrorIs(t, s.MarkSpan(0, 1, 0, "", ""), ErrInvalidSpan)
}

func TestScrollProgressClamps(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.SetScrollProgress(140))
	assert.Equal(t, 100.0, s.Snapshot().Battle.ScrollProgress)
	require.NoError(t, s.SetScrollProgress(-3))
	assert.Equal(t, 0.0, s.Snapshot().Battle.ScrollProgress)
}

func TestCoachingHappyPath(t *testing.T) {
	s := newTestSession(t, role.Coach)
	require.NoError(t, s.SetStage(role.StageCoaching))

	require.NoError(t, s.AdvanceCoachingPhase())
	c := s.Snapshot().Coaching
	assert.Equal(t, 1, c.Phase)
	assert.Equal(t, coaching.TaskNone, c.TaskType)

	require.NoError(t, s.PublishCoachingTask(coaching.TaskVoice, ""))
	require.NoError(t, s.ReceiveCoachingTask())
	require.NoError(t, s.CompleteCoachingTask())
	c = s.Snapshot().Coaching
	assert.True(t, c.TaskReceived)
	assert.True(t, c.TaskCompleted)

	require.NoError(t, s.AdvanceCoachingPhase())
	c = s.Snapshot().Coaching
	assert.Equal(t, 2, c.Phase)
	assert.Equal(t, coaching.TaskNone, c.TaskType)
	assert.False(t, c.TaskReceived)
	assert.False(t, c.TaskCompleted)
}

func TestRejectedActionIsNotObserved(t *testing.T) {
	s := newTestSession(t, role.Coach)
	var changes []Change
	stop := s.Watch(func(ch Change) { changes = append(changes, ch) })
	defer stop()

	before := s.Snapshot()
	err := s.CompleteCoachingTask()
	require.ErrorIs(t, err, coaching.ErrNoActiveTask)
	assert.Empty(t, changes)
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
}

func TestReselectAnswer(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.ErrorIs(t, s.ReselectAnswer("A"), ErrUnknownQuestion)

	require.NoError(t, s.SetCorrectionQuestion(1))
	require.NoError(t, s.ReselectAnswer("A"))
	require.NoError(t, s.ReselectAnswer("C"))
	require.ErrorIs(t, s.ReselectAnswer("B"), coaching.ErrAttemptsExhausted)
	assert.Equal(t, 2, s.Snapshot().Coaching.WrongAttempts)
}

func TestSkillQuizThroughSession(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.StartSkillQuiz())
	for range 5 {
		require.NoError(t, s.SetSkillQuizAnswer("B", true))
		require.NoError(t, s.NextQuizQuestion())
	}
	require.ErrorIs(t, s.NextQuizQuestion(), skill.ErrQuizCompleted)
	q := s.Snapshot().Skill.Quiz
	assert.True(t, q.Completed)
	assert.Len(t, q.Results, 5)
	assert.Equal(t, 4, q.CurrentIndex)
}

func TestVocabDefaultsWithoutLookups(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.SetStage(role.StageVocab))
	st := s.Snapshot()
	assert.False(t, st.VocabLoading)
	require.Len(t, st.Vocab.List, len(content.RequiredVocab))
	assert.Equal(t, "obsessed", st.Vocab.List[0].Word)
}

func TestVocabLoadsLookupsWithFallback(t *testing.T) {
	lk := &fakeLookup{fail: map[string]bool{"morphed": true}}
	s := newTestSession(t, role.Student, WithVocabLookup(lk))
	for _, w := range []string{"seismic", "morphed", "elusive"} {
		_, err := s.AddLookup(w, "context for "+w, 7)
		require.NoError(t, err)
	}

	require.NoError(t, s.SetStage(role.StageVocab))
	s.Wait()

	st := s.Snapshot()
	assert.False(t, st.VocabLoading)
	require.Len(t, st.Vocab.List, 3)
	assert.Equal(t, []string{"seismic", "morphed", "elusive"},
		[]string{st.Vocab.List[0].Word, st.Vocab.List[1].Word, st.Vocab.List[2].Word})
	assert.Equal(t, content.PlaceholderVocabItem("morphed"), st.Vocab.List[1])
	assert.Equal(t, "def of seismic", st.Vocab.List[0].Definition)
	assert.Equal(t, vocab.StatusUnseen, st.Vocab.Status["elusive"])
}

func TestVocabLoadDiscardedAfterReset(t *testing.T) {
	lk := &fakeLookup{gate: make(chan struct{})}
	s := newTestSession(t, role.Student, WithVocabLookup(lk))
	_, err := s.AddLookup("seismic", "", 1)
	require.NoError(t, err)
	require.NoError(t, s.SetStage(role.StageVocab))
	require.True(t, s.Snapshot().VocabLoading)

	require.NoError(t, s.Reset())
	close(lk.gate)
	s.Wait()

	st := s.Snapshot()
	assert.Equal(t, role.StageWarmUp, st.Stage)
	assert.Empty(t, st.Vocab.List)
	assert.False(t, st.VocabLoading)
}

func TestRemedialSingleWord(t *testing.T) {
	s := newTestSession(t, role.Student, WithVocabLookup(&fakeLookup{}))
	_, _ = s.AddLookup("A", "", 1)
	_, _ = s.AddLookup("B", "", 1)
	require.NoError(t, s.SetStage(role.StageVocab))
	s.Wait()

	require.NoError(t, s.ToggleVocabCheck("A"))
	require.NoError(t, s.ToggleVocabCheck("A"))
	require.NoError(t, s.ToggleVocabCheck("B"))
	st := s.Snapshot().Vocab
	require.Equal(t, vocab.StatusLearning, st.Status["A"])
	require.Equal(t, vocab.StatusMastered, st.Status["B"])

	require.NoError(t, s.SubmitExitPass())
	st = s.Snapshot().Vocab
	assert.Equal(t, vocab.ExitRemedial, st.ExitPassStep)
	assert.Equal(t, []string{"A"}, st.RemedialQueue)
	assert.Equal(t, 0, st.RemedialIndex)

	require.NoError(t, s.CompleteRemedialWord())
	snap := s.Snapshot()
	assert.Equal(t, vocab.StatusMastered, snap.Vocab.Status["A"])
	assert.Equal(t, role.StageSurgery, snap.Stage)
}

func TestVocabAllMasteredGoesToSurgery(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.SetStage(role.StageVocab))
	for _, w := range content.RequiredVocab {
		require.NoError(t, s.ToggleVocabCheck(w))
	}
	require.NoError(t, s.SubmitExitPass())
	st := s.Snapshot()
	assert.Equal(t, role.StageSurgery, st.Stage)
	assert.Equal(t, vocab.ExitDone, st.Vocab.ExitPassStep)
}

func TestWatcherReadsWhileActionPending(t *testing.T) {
	s := newTestSession(t, role.Student)

	entered := make(chan struct{})
	release := make(chan struct{})
	read := make(chan State, 1)
	var once sync.Once
	cancel := s.Watch(func(c Change) {
		if c.Action.Kind != KindSetStage {
			return
		}
		first := false
		once.Do(func() { first = true })
		if !first {
			return
		}
		close(entered)
		<-release
		read <- s.Snapshot()
	})
	defer cancel()

	errs := make(chan error, 2)
	go func() { errs <- s.SetStage(role.StageSkill) }()
	<-entered
	go func() { errs <- s.SetStage(role.StageBattle) }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case st := <-read:
		assert.Equal(t, role.StageSkill, st.Stage)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher blocked reading the session")
	}
	for range 2 {
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("action did not complete")
		}
	}
	assert.Equal(t, role.StageBattle, s.Snapshot().Stage)
}

func TestVocabActionsOutsideVocabStage(t *testing.T) {
	s := newTestSession(t, role.Student)

	require.ErrorIs(t, s.SubmitExitPass(), ErrWrongStage)
	require.ErrorIs(t, s.CompleteRemedialWord(), ErrWrongStage)
	assert.Equal(t, role.StageWarmUp, s.Snapshot().Stage)

	require.NoError(t, s.SetStage(role.StageVocab))
	for _, w := range content.RequiredVocab {
		require.NoError(t, s.ToggleVocabCheck(w))
	}
	require.NoError(t, s.SubmitExitPass())
	require.NoError(t, s.SetStage(role.StageReview))

	require.ErrorIs(t, s.SubmitExitPass(), ErrWrongStage)
	assert.Equal(t, role.StageReview, s.Snapshot().Stage)
}

func TestCoreChunkShakesAndClears(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.SetSurgeryMode(surgery.ModeStudent))

	err := s.RemoveChunk("c1")
	require.ErrorIs(t, err, surgery.ErrCoreChunk)
	st := s.Snapshot().Surgery
	require.False(t, st.Chunks[0].Removed)
	require.True(t, st.Chunks[0].Shake)

	require.Eventually(t, func() bool {
		return !s.Snapshot().Surgery.Chunks[0].Shake
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.RemoveChunk("m1"))
	require.NoError(t, s.UndoChunk())
	assert.False(t, s.Snapshot().Surgery.Chunks[1].Removed)
}

func TestRestoreMidShakeClearsShake(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShakeDuration = time.Minute
	s := New(cfg)
	t.Cleanup(s.Close)
	require.NoError(t, s.SetRole(role.Student))
	require.NoError(t, s.SetSurgeryMode(surgery.ModeStudent))
	require.ErrorIs(t, s.RemoveChunk("c1"), surgery.ErrCoreChunk)

	saved := s.Snapshot()
	require.True(t, saved.Surgery.Chunks[0].Shake)

	require.NoError(t, s.Restore(saved))
	assert.False(t, s.Snapshot().Surgery.Chunks[0].Shake)
	assert.Equal(t, surgery.ModeStudent, s.Snapshot().Surgery.Mode)
}

func TestSurgeryModePolicy(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.ErrorIs(t, s.RemoveChunk("m1"), surgery.ErrModeForbids)
	require.NoError(t, s.SetSurgeryMode(surgery.ModeTeacher))
	require.ErrorIs(t, s.RemoveChunk("m1"), surgery.ErrModeForbids)
	require.NoError(t, s.SetSurgeryMode(surgery.ModeStudent))
	require.NoError(t, s.RemoveChunk("m1"))
}

type fakeContent struct {
	article content.Article
	err     error
}

func (f fakeContent) FetchArticleVersion(context.Context, int, string) (content.Article, error) {
	return f.article, f.err
}

func TestLoadArticle(t *testing.T) {
	article := content.Article{
		VersionID:  12,
		Title:      "Night Court",
		Paragraphs: []string{"p"},
		Surgeries: []content.Surgery{{Chunks: []content.Chunk{
			{ID: "chunk-0", Text: "Kids", Type: content.ChunkCore},
			{ID: "chunk-1", Text: "who stay late", Type: content.ChunkModifier},
		}}},
	}
	s := newTestSession(t, role.Coach, WithContentSource(fakeContent{article: article}))
	require.NoError(t, s.LoadArticle(t.Context(), 3, "B1"))
	st := s.Snapshot()
	assert.Equal(t, LoadLoaded, st.LoadState)
	assert.Equal(t, "Night Court", st.Article.Title)
	require.Len(t, st.Surgery.Chunks, 2)
	assert.Equal(t, "chunk-1", st.Surgery.Chunks[1].ID)

	failing := newTestSession(t, role.Coach, WithContentSource(fakeContent{err: errors.New("503")}))
	require.Error(t, failing.LoadArticle(t.Context(), 3, "B1"))
	st = failing.Snapshot()
	assert.Equal(t, LoadFailed, st.LoadState)
	assert.Equal(t, content.DefaultArticle().Title, st.Article.Title)

	require.ErrorIs(t, newTestSession(t, role.Coach).LoadArticle(t.Context(), 1, "A1"), ErrNoContentSource)
}

type fakePlayer struct {
	mu     sync.Mutex
	played []string
}

func (p *fakePlayer) Play(_ context.Context, item content.VocabItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, item.Word)
	return errors.New("speaker unplugged")
}

func TestPlayStandardAudio(t *testing.T) {
	p := &fakePlayer{}
	s := newTestSession(t, role.Student, WithPlayer(p))
	require.NoError(t, s.SetStage(role.StageVocab))
	require.NoError(t, s.PlayStandardAudio())
	s.Wait()

	assert.Equal(t, vocab.PlaybackNone, s.Snapshot().Vocab.Playback)
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, []string{"obsessed"}, p.played)
}

// link forwards local replicated actions from src to dst.
func link(t *testing.T, src, dst *Session) {
	t.Helper()
	stop := src.Watch(func(ch Change) {
		if ch.Origin != OriginLocal || !ch.Action.Kind.Replicated() {
			return
		}
		if err := dst.Apply(ch.Action); err != nil {
			t.Errorf("apply %s on replica: %v", ch.Action.Kind, err)
		}
	})
	t.Cleanup(stop)
}

func TestReplicasConverge(t *testing.T) {
	coach := newTestSession(t, role.Coach, WithID("room"))
	student := newTestSession(t, role.Student, WithID("room"))
	link(t, coach, student)
	link(t, student, coach)

	require.NoError(t, coach.SetStage(role.StageBattle))
	_, err := student.AddLookup("seismic", "a seismic shift", 1)
	require.NoError(t, err)
	require.NoError(t, student.SetQuizAnswer(1, "A", false))
	require.NoError(t, coach.AddMessage(SpeakerCoach, "Look at paragraph two."))

	require.NoError(t, coach.SetStage(role.StageCoaching))
	require.NoError(t, coach.SetCoachingPhase(1))
	require.NoError(t, coach.PublishCoachingTask(coaching.TaskVoice, ""))
	require.NoError(t, student.ReceiveCoachingTask())
	require.NoError(t, student.SetStudentVoiceAnswer("because of injuries"))
	require.NoError(t, student.CompleteCoachingTask())

	require.NoError(t, coach.SetSurgeryMode(surgery.ModeStudent))
	require.NoError(t, student.RemoveChunk("m2"))
	require.ErrorIs(t, coach.RemoveChunk("m1"), surgery.ErrModeForbids)

	a, b := coach.Snapshot(), student.Snapshot()
	opts := cmp.Options{cmpopts.IgnoreFields(State{}, "Role", "ViewMode")}
	if diff := cmp.Diff(a, b, opts); diff != "" {
		t.Errorf("replicas diverged (-coach +student):\n%s", diff)
	}
	assert.True(t, a.Coaching.TaskCompleted)
	assert.Equal(t, "Look at paragraph two.", b.Messages[0].Text)
	assert.Equal(t, []int{1, 2, 3}, a.WrongQuestions())
}

func TestApplyRejectsLocalOnlyKinds(t *testing.T) {
	s := newTestSession(t, role.Student)
	a, err := NewAction(KindSetRole, role.Coach, roleArgs{Role: role.Coach}, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, s.Apply(a), ErrUnknownAction)
	assert.Equal(t, role.Student, s.Snapshot().Role)

	require.ErrorIs(t, s.Apply(Action{Kind: "bogus.kind"}), ErrUnknownAction)
}

func TestWatchOrderAndCancel(t *testing.T) {
	s := newTestSession(t, role.Coach)
	var kinds []Kind
	stop := s.Watch(func(ch Change) { kinds = append(kinds, ch.Action.Kind) })
	require.NoError(t, s.SetStage(role.StageSkill))
	require.NoError(t, s.AddMessage(SpeakerJarvis, "hi"))
	stop()
	require.NoError(t, s.AdvanceStage())
	assert.Equal(t, []Kind{KindSetStage, KindAddMessage}, kinds)
}

func TestAnalyzeQuiz(t *testing.T) {
	s := newTestSession(t, role.Student)
	require.NoError(t, s.SetQuizAnswer(1, "B", false))
	require.NoError(t, s.SetQuizAnswer(2, "C", true))
	got := s.Snapshot().AnalyzeQuiz()
	want := []QuizResult{
		{QuestionID: 1, Selected: "B", Correct: "B", Status: AnswerCorrect},
		{QuestionID: 2, Selected: "C", Correct: "C", Status: AnswerGuessed},
		{QuestionID: 3, Correct: "B", Status: AnswerWrong},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AnalyzeQuiz (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{2, 3}, s.Snapshot().WrongQuestions())
}

func TestResetKeepsRoleAndArticle(t *testing.T) {
	s := newTestSession(t, role.Coach)
	require.NoError(t, s.SetStage(role.StageCoaching))
	require.NoError(t, s.AddMessage(SpeakerCoach, "hello"))
	require.NoError(t, s.AddStudentHighlight(coaching.Highlight{Text: "x"}))
	require.NoError(t, s.Reset())

	st := s.Snapshot()
	assert.Equal(t, role.Coach, st.Role)
	assert.Equal(t, role.StageWarmUp, st.Stage)
	assert.Empty(t, st.Messages)
	assert.Empty(t, st.Coaching.StudentHighlights)
	assert.Equal(t, content.DefaultArticle().Title, st.Article.Title)
}

func TestRestoreAndReport(t *testing.T) {
	src := newTestSession(t, role.Student)
	_, _ = src.AddLookup("seismic", "", 1)
	require.NoError(t, src.SetQuizAnswer(1, "B", false))
	require.NoError(t, src.SetSurgeryMode(surgery.ModeStudent))
	require.NoError(t, src.RemoveChunk("m1"))

	dst := newTestSession(t, role.None)
	require.NoError(t, dst.Restore(src.Snapshot()))
	r := dst.Report()
	assert.Equal(t, []string{"seismic"}, r.LookedUp)
	assert.Equal(t, 1, r.QuizCorrect)
	assert.Equal(t, 1, r.ChunksRemoved)
	assert.Equal(t, role.Student, dst.Snapshot().Role)
}

func TestClosedSessionRejectsActions(t *testing.T) {
	s := New(DefaultConfig())
	s.Close()
	assert.ErrorIs(t, s.SetStage(role.StageSkill), ErrClosed)
}
