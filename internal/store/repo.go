package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts filters and pages journal reads.
type QueryOpts struct {
	Limit int   // max results (0 = unlimited)
	After int64 // sequence > After
}

// JournalEntry is one applied session action.
type JournalEntry struct {
	Sequence  int64
	SessionID string
	Kind      string
	Actor     string
	Origin    string
	Args      json.RawMessage
	At        time.Time
}

// JournalRepo is the append-only log of applied actions.
type JournalRepo interface {
	// Append stores the entry and returns its assigned sequence.
	Append(ctx context.Context, e JournalEntry) (int64, error)

	// List returns a session's entries in sequence order.
	List(ctx context.Context, sessionID string, opts QueryOpts) ([]JournalEntry, error)

	// Sessions returns the distinct session ids, most recent first.
	Sessions(ctx context.Context) ([]string, error)
}

// Snapshot is a serialized session state at a journal position.
type Snapshot struct {
	ID        int
	SessionID string
	Sequence  int64
	TakenAt   time.Time
	Data      json.RawMessage
}

// SnapshotRepo manages session snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot of a session, or nil if none
	// exist.
	Latest(ctx context.Context, sessionID string) (*Snapshot, error)

	// Prune deletes all but the keep most recent snapshots of a session.
	Prune(ctx context.Context, sessionID string, keep int) error
}

// Report is a stored review summary. Data holds the full summary JSON.
type Report struct {
	ID           int
	SessionID    string
	ArticleTitle string
	QuizCorrect  int
	QuizTotal    int
	CreatedAt    time.Time
	Data         json.RawMessage
}

// ReportRepo stores review reports.
type ReportRepo interface {
	Save(ctx context.Context, r *Report) error
	// Recent returns up to limit reports, newest first.
	Recent(ctx context.Context, limit int) ([]Report, error)
}

// LLMEvent captures a single LLM API call.
type LLMEvent struct {
	Sequence     int64
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	CostUSD      float64
	CreatedAt    time.Time
}

// LLMUsage aggregates LLM calls per purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// LLMEventRepo records LLM calls.
type LLMEventRepo interface {
	AppendLLMRequest(ctx context.Context, e LLMEvent) error
	// Recent returns up to limit events, newest first. An empty purpose
	// matches every event.
	Recent(ctx context.Context, limit int, purpose string) ([]LLMEvent, error)
	// Get returns the event with the given sequence, or nil.
	Get(ctx context.Context, seq int64) (*LLMEvent, error)
	// Usage sums the recorded calls grouped by purpose.
	Usage(ctx context.Context) ([]LLMUsage, error)
}
