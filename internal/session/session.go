// Package session is the shared lesson state of one client replica. It
// owns the coaching, skill, vocabulary and surgery engines, multiplexes
// them by stage, and applies every mutation as a replicable Action.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/coaching"
	"github.com/abhisek/jarvis/internal/content"
	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/skill"
	"github.com/abhisek/jarvis/internal/surgery"
	"github.com/abhisek/jarvis/internal/vocab"
)

// Origin tells where an applied action came from.
type Origin string

const (
	// OriginLocal actions were dispatched on this replica.
	OriginLocal Origin = "local"
	// OriginRemote actions were received from the other replica.
	OriginRemote Origin = "remote"
	// OriginTimer actions were produced by a scheduled transition.
	OriginTimer Origin = "timer"
)

// Change is delivered to watchers after every applied action.
type Change struct {
	Action Action
	Origin Origin
	State  State
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards logs.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithContentSource sets where article versions are fetched from.
func WithContentSource(c ContentSource) Option {
	return func(s *Session) { s.content = c }
}

// WithVocabLookup sets the word lookup used when entering the vocab stage.
func WithVocabLookup(l VocabLookup) Option {
	return func(s *Session) { s.lookup = l }
}

// WithPlayer sets the audio player for standard pronunciations.
func WithPlayer(p Player) Option {
	return func(s *Session) { s.player = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the session id. The default is a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session is a single client's replica of the lesson state. All methods
// are safe for concurrent use; actions are applied one at a time.
type Session struct {
	cfg     Config
	id      string
	log     *zap.Logger
	content ContentSource
	lookup  VocabLookup
	player  Player
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards everything below and serializes actions.
	mu       sync.Mutex
	closed   bool
	st       core
	coaching *coaching.Engine
	skill    *skill.Engine
	vocab    *vocab.Engine
	surgery  *surgery.Engine
	stream   any
	// vocabGen invalidates vocabulary loads started before a reset or a
	// later entry into the vocab stage.
	vocabGen uint64
	timers   map[string]*time.Timer

	// notifyMu keeps watcher delivery in apply order. It is always taken
	// before mu.
	notifyMu sync.Mutex
	watchMu  sync.Mutex
	watchers map[int]func(Change)
	nextID   int
}

// core holds the top-level fields that are not owned by an engine.
type core struct {
	role         role.Role
	viewMode     role.Role
	stage        role.Stage
	messages     []Message
	muted        bool
	article      content.Article
	loadState    LoadState
	loadError    string
	battle       Battle
	vocabLoading bool
}

// New creates a session at the warm-up stage with the built-in lesson.
func New(cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:      cfg,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
		watchers: make(map[int]func(Change)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.log = s.log.With(zap.String("session", s.id))
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.st = core{
		stage:     role.StageWarmUp,
		messages:  []Message{},
		article:   content.DefaultArticle(),
		loadState: LoadIdle,
		battle:    emptyBattle(),
	}
	s.coaching = coaching.New()
	s.skill = skill.New(cfg.Skill)
	s.vocab = vocab.New()
	s.surgery = surgery.New(chunksFor(s.st.article))
	return s
}

func emptyBattle() Battle {
	return Battle{
		Lookups:     []Lookup{},
		Highlights:  []Highlight{},
		QuizAnswers: []QuizAnswer{},
	}
}

// chunksFor returns the surgery sentence of a.
func chunksFor(a content.Article) []content.Chunk {
	if len(a.Surgeries) > 0 && len(a.Surgeries[0].Chunks) > 0 {
		return a.Surgeries[0].Chunks
	}
	return content.DefaultChunks()
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Watch registers fn to receive every applied change, in apply order. fn
// runs on the dispatching goroutine while other actions wait their turn.
// It may read the session (Snapshot, Report) but must not dispatch
// actions itself; hand that work to another goroutine instead. The
// returned func unregisters.
func (s *Session) Watch(fn func(Change)) (cancel func()) {
	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.watchMu.Unlock()
	return func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	}
}

func (s *Session) watcherList() []func(Change) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	ids := make([]int, 0, len(s.watchers))
	for id := range s.watchers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Change), len(ids))
	for i, id := range ids {
		out[i] = s.watchers[id]
	}
	return out
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	b := s.st.battle
	return State{
		ID:              s.id,
		Role:            s.st.role,
		ViewMode:        s.st.viewMode,
		Stage:           s.st.stage,
		Messages:        slices.Clone(s.st.messages),
		Muted:           s.st.muted,
		HasRemoteStream: s.stream != nil,
		Article:         s.st.article,
		LoadState:       s.st.loadState,
		LoadError:       s.st.loadError,
		Battle: Battle{
			Lookups:        slices.Clone(b.Lookups),
			Highlights:     slices.Clone(b.Highlights),
			QuizAnswers:    slices.Clone(b.QuizAnswers),
			ScrollProgress: b.ScrollProgress,
		},
		Coaching:     s.coaching.State(),
		Skill:        s.skill.State(),
		Vocab:        s.vocab.State(),
		VocabLoading: s.st.vocabLoading,
		Surgery:      s.surgery.State(),
	}
}

// RemoteStream returns the media handle set by SetRemoteStream.
func (s *Session) RemoteStream() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

// SetRemoteStream stores an externally managed media handle. The session
// never inspects it.
func (s *Session) SetRemoteStream(h any) error {
	a := Action{Kind: KindRemoteStream, Actor: s.actor(), At: s.now()}
	return s.public(s.commit(a, OriginLocal, func() (effects, error) {
		s.stream = h
		return effects{}, nil
	}))
}

// Dispatch applies a locally issued action.
func (s *Session) Dispatch(a Action) error {
	return s.public(s.dispatch(a, OriginLocal))
}

// Apply applies an action received from the other replica. Local side
// effects such as fetching and audio playback are skipped.
func (s *Session) Apply(a Action) error {
	return s.public(s.dispatch(a, OriginRemote))
}

func (s *Session) public(err error) error {
	if errors.Is(err, errIgnored) {
		return nil
	}
	return err
}

func (s *Session) dispatch(a Action, origin Origin) error {
	return s.commit(a, origin, func() (effects, error) {
		return s.apply(a, origin)
	})
}

// commit runs mutate under the session lock and, if it succeeds, delivers
// the change to watchers and starts its side effects.
func (s *Session) commit(a Action, origin Origin, mutate func() (effects, error)) error {
	s.notifyMu.Lock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.notifyMu.Unlock()
		return ErrClosed
	}
	eff, err := mutate()
	if err != nil {
		s.mu.Unlock()
		s.notifyMu.Unlock()
		if errors.Is(err, errIgnored) {
			return err
		}
		s.log.Debug("action rejected",
			zap.String("kind", string(a.Kind)),
			zap.String("origin", string(origin)),
			zap.Error(err))
		return &ActionError{Kind: a.Kind, Err: err}
	}
	ch := Change{Action: a, Origin: origin, State: s.snapshotLocked()}
	s.scheduleLocked(eff, origin)
	s.mu.Unlock()

	for _, fn := range s.watcherList() {
		fn(ch)
	}
	s.notifyMu.Unlock()

	if origin == OriginLocal {
		s.runLocal(eff)
	}
	return nil
}

// Wait blocks until background work (vocabulary loads, playback) is done.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels background work, stops pending timers and waits for
// everything to finish. Later actions fail with ErrClosed.
func (s *Session) Close() {
	s.cancel()
	s.mu.Lock()
	s.closed = true
	s.stopTimersLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Session) actor() role.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.role
}

// act builds and dispatches a local action for the current role.
func (s *Session) act(kind Kind, args any) error {
	a, err := NewAction(kind, s.actor(), args, s.now())
	if err != nil {
		return err
	}
	return s.dispatch(a, OriginLocal)
}

// do is act for callers that treat an ignored action as success.
func (s *Session) do(kind Kind, args any) error {
	return s.public(s.act(kind, args))
}
