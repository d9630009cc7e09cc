package cmd

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/session"
	"github.com/abhisek/jarvis/internal/store"
)

// journal persists applied session changes off the dispatch path and
// snapshots the state every few entries.
type journal struct {
	sessionID string
	entries   store.JournalRepo
	snapshots store.SnapshotRepo
	every     int
	keep      int
	log       *zap.Logger

	mu      sync.Mutex
	closed  bool
	pending chan session.Change
	done    chan struct{}
}

func newJournal(sessionID string, st *store.Store, every, keep int, log *zap.Logger) *journal {
	return &journal{
		sessionID: sessionID,
		entries:   st.JournalRepo(),
		snapshots: st.SnapshotRepo(),
		every:     every,
		keep:      keep,
		log:       log.Named("journal"),
		pending:   make(chan session.Change, 256),
		done:      make(chan struct{}),
	}
}

// observe is the session watcher. It never blocks the dispatcher; changes
// that do not fit the buffer are dropped with a warning.
func (j *journal) observe(c session.Change) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.pending <- c:
	default:
		j.log.Warn("journal backlog full, dropping change", zap.String("kind", string(c.Action.Kind)))
	}
}

func (j *journal) run(ctx context.Context) {
	defer close(j.done)
	ctx = context.WithoutCancel(ctx)
	written := 0
	for c := range j.pending {
		seq, err := j.entries.Append(ctx, store.JournalEntry{
			SessionID: j.sessionID,
			Kind:      string(c.Action.Kind),
			Actor:     c.Action.Actor.String(),
			Origin:    string(c.Origin),
			Args:      c.Action.Args,
			At:        c.Action.At,
		})
		if err != nil {
			j.log.Warn("append journal entry", zap.Error(err))
			continue
		}
		written++
		if j.every > 0 && written%j.every == 0 {
			j.snapshot(ctx, seq, c.State)
		}
	}
}

func (j *journal) snapshot(ctx context.Context, seq int64, st session.State) {
	data, err := json.Marshal(st)
	if err != nil {
		j.log.Warn("encode snapshot", zap.Error(err))
		return
	}
	snap := &store.Snapshot{SessionID: j.sessionID, Sequence: seq, TakenAt: time.Now(), Data: data}
	if err := j.snapshots.Save(ctx, snap); err != nil {
		j.log.Warn("save snapshot", zap.Error(err))
		return
	}
	if j.keep > 0 {
		if err := j.snapshots.Prune(ctx, j.sessionID, j.keep); err != nil {
			j.log.Warn("prune snapshots", zap.Error(err))
		}
	}
	j.log.Debug("snapshot saved", zap.Int64("sequence", seq))
}

// close stops accepting changes and waits for the backlog to drain.
func (j *journal) close() {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.pending)
	}
	j.mu.Unlock()
	<-j.done
}

// restoreLatest loads the newest snapshot of the session into sess. It
// reports false when none exists.
func restoreLatest(ctx context.Context, sess *session.Session, snaps store.SnapshotRepo) (bool, error) {
	snap, err := snaps.Latest(ctx, sess.ID())
	if err != nil || snap == nil {
		return false, err
	}
	var st session.State
	if err := json.Unmarshal(snap.Data, &st); err != nil {
		return false, err
	}
	return true, sess.Restore(st)
}
