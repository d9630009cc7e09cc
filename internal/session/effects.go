package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/jarvis/internal/content"
)

// scheduleLocked registers the background work of eff. Shake timers run on
// every replica; fetching and playback belong to the issuing replica only.
// Callers hold s.mu.
func (s *Session) scheduleLocked(eff effects, origin Origin) {
	if eff.shake != nil {
		s.scheduleShakeClearLocked(eff.shake.ID, eff.shake.Gen)
	}
	if origin != OriginLocal {
		return
	}
	if eff.loadVocab != nil {
		s.wg.Add(1)
	}
	if eff.play != nil {
		s.wg.Add(1)
	}
}

// runLocal starts the work counted by scheduleLocked.
func (s *Session) runLocal(eff effects) {
	if eff.loadVocab != nil {
		go s.loadVocab(*eff.loadVocab)
	}
	if eff.play != nil {
		go s.play(*eff.play)
	}
}

func (s *Session) scheduleShakeClearLocked(id string, gen uint64) {
	if old, ok := s.timers[id]; ok && old.Stop() {
		s.wg.Done()
	}
	s.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(s.cfg.ShakeDuration, func() {
		defer s.wg.Done()
		s.mu.Lock()
		if s.timers[id] == t {
			delete(s.timers, id)
		}
		s.mu.Unlock()

		a, _ := NewAction(KindSurgeryClearShake, "", shakeArgs{ID: id, Gen: gen}, s.now())
		if err := s.dispatch(a, OriginTimer); err != nil && !errors.Is(err, errIgnored) && !errors.Is(err, ErrClosed) {
			s.log.Warn("clear shake", zap.String("chunk", id), zap.Error(err))
		}
	})
	s.timers[id] = t
}

func (s *Session) stopTimersLocked() {
	for id, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, id)
	}
}

// loadVocab looks up every word concurrently and dispatches the cards in
// lookup order. A failed lookup yields a placeholder card.
func (s *Session) loadVocab(l vocabLoad) {
	defer s.wg.Done()

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.cfg.LookupTimeout > 0 {
		ctx, cancel = context.WithTimeout(s.ctx, s.cfg.LookupTimeout)
	} else {
		ctx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()

	items := make([]content.VocabItem, len(l.lookups))
	var g errgroup.Group
	g.SetLimit(max(1, s.cfg.LookupConcurrency))
	for i, lk := range l.lookups {
		g.Go(func() error {
			items[i] = s.lookupWord(ctx, lk)
			return nil
		})
	}
	_ = g.Wait()

	a, err := NewAction(KindVocabLoad, s.actor(), vocabLoadArgs{Items: items}, s.now())
	if err != nil {
		s.log.Warn("encode vocabulary", zap.Error(err))
		return
	}
	err = s.commit(a, OriginLocal, func() (effects, error) {
		if s.vocabGen != l.gen {
			return effects{}, errIgnored
		}
		return s.apply(a, OriginLocal)
	})
	switch {
	case errors.Is(err, errIgnored):
		s.log.Debug("discarded stale vocabulary load")
	case errors.Is(err, ErrClosed):
	case err != nil:
		s.log.Warn("apply vocabulary", zap.Error(err))
	}
}

func (s *Session) lookupWord(ctx context.Context, l Lookup) content.VocabItem {
	if s.lookup == nil {
		return content.DefaultVocabItem(l.Word)
	}
	item, err := s.lookup.LookupWord(ctx, l.Word, l.Context, l.VersionID)
	if err != nil {
		s.log.Warn("word lookup failed, using placeholder", zap.String("word", l.Word), zap.Error(err))
		return content.PlaceholderVocabItem(l.Word)
	}
	if item.Word == "" {
		item.Word = l.Word
	}
	return item
}

// play is fire-and-forget: failures are logged and playback ends either way.
func (s *Session) play(item content.VocabItem) {
	defer s.wg.Done()
	if s.player != nil {
		if err := s.player.Play(s.ctx, item); err != nil {
			s.log.Warn("audio playback", zap.String("word", item.Word), zap.Error(err))
		}
	}
	if err := s.act(KindVocabPlaybackEnded, nil); err != nil && !errors.Is(err, ErrClosed) {
		s.log.Warn("end playback", zap.Error(err))
	}
}
