package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/jarvis/internal/store"
)

// LoggingProvider records every request in the LLM event log.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.LLMEventRepo
	log      *zap.Logger
	now      func() time.Time
}

// WithLogging wraps p so each Generate call is appended to events.
func WithLogging(p Provider, providerName string, events store.LLMEventRepo, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{
		inner:    p,
		provider: providerName,
		events:   events,
		log:      log.Named("llm"),
		now:      time.Now,
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)

	e := store.LLMEvent{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   l.now().Sub(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
		CreatedAt:   start,
	}
	if resp != nil {
		e.InputTokens = resp.Usage.InputTokens
		e.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			e.Model = resp.Model
		}
		e.ResponseBody = string(resp.Content)
	}
	if cost := LookupCost(e.Model); cost != nil {
		e.CostUSD = cost.Cost(e.InputTokens, e.OutputTokens)
	}
	if err != nil {
		e.ErrorMessage = err.Error()
	}

	l.log.Debug("llm request",
		zap.String("purpose", e.Purpose),
		zap.String("model", e.Model),
		zap.Int64("latency_ms", e.LatencyMs),
		zap.Bool("success", e.Success))

	// A failed append never fails the request. Use a context that survives
	// the caller's cancellation so timeouts are still recorded.
	if logErr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), e); logErr != nil {
		l.log.Warn("record LLM request event", zap.Error(logErr))
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders a request as readable text for `jarvis llm view`.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
