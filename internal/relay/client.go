package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/session"
)

// Replica is the session a Client keeps in step with its room.
type Replica interface {
	Apply(a session.Action) error
	Restore(st session.State) error
	Watch(fn func(session.Change)) (cancel func())
}

// ClientConfig configures a replica connection.
type ClientConfig struct {
	URL      string
	Origin   string
	Room     string
	Role     role.Role
	Protocol string

	ReconnectDelay time.Duration
	// MaxReconnects is how many reconnects follow a lost connection
	// before Run gives up. A successful join resets the count.
	MaxReconnects int
	PingInterval  time.Duration
	WriteTimeout  time.Duration
	OutboxSize    int
}

// DefaultClientConfig returns the client defaults for url.
func DefaultClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:            url,
		Origin:         "http://localhost/",
		Room:           "default",
		Protocol:       ProtocolVersion,
		ReconnectDelay: 3 * time.Second,
		MaxReconnects:  10,
		PingInterval:   30 * time.Second,
		WriteTimeout:   10 * time.Second,
		OutboxSize:     1024,
	}
}

// Client connects one replica to a relay room.
type Client struct {
	cfg     ClientConfig
	replica Replica
	log     *zap.Logger

	outbox    chan Frame
	connected atomic.Bool

	mu       sync.Mutex
	clientID string
}

// NewClient creates a client for replica.
func NewClient(cfg ClientConfig, replica Replica, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = 1
	}
	return &Client{
		cfg:     cfg,
		replica: replica,
		log:     log.Named("relay").With(zap.String("room", cfg.Room), zap.String("role", cfg.Role.String())),
		outbox:  make(chan Frame, cfg.OutboxSize),
	}
}

// Connected reports whether the client has joined and replayed the room.
func (c *Client) Connected() bool { return c.connected.Load() }

// ClientID returns the id the relay assigned on the last join.
func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// Resync asks the relay for the full room log.
func (c *Client) Resync() error { return c.enqueue(newFrame(FrameRequestFullState, nil)) }

// ResetRoom clears the room log and resets every replica in the room.
func (c *Client) ResetRoom() error { return c.enqueue(newFrame(FrameResetRoom, nil)) }

func (c *Client) enqueue(f Frame) error {
	if !c.connected.Load() {
		return errors.New("relay: not connected")
	}
	select {
	case c.outbox <- f:
		return nil
	default:
		return errors.New("relay: outbox full")
	}
}

// forward sends locally applied actions to the room. Actions taken while
// offline are not queued; the room log replaces them on rejoin.
func (c *Client) forward(ch session.Change) {
	if ch.Origin != session.OriginLocal || !ch.Action.Kind.Replicated() {
		return
	}
	if err := c.enqueue(newFrame(FrameAction, ActionPayload{Action: ch.Action})); err != nil {
		c.log.Warn("action not sent", zap.String("kind", string(ch.Action.Kind)), zap.Error(err))
	}
}

// Run keeps the replica joined until ctx ends. It returns nil on
// cancellation, ErrProtocolMismatch when the relay rejects the protocol,
// and an error once reconnects are exhausted.
func (c *Client) Run(ctx context.Context) error {
	stop := c.replica.Watch(c.forward)
	defer stop()

	failures := 0
	for {
		joined, err := c.serve(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrProtocolMismatch) {
			return err
		}
		if joined {
			failures = 0
		}
		failures++
		if failures > c.cfg.MaxReconnects {
			return fmt.Errorf("relay: gave up after %d reconnect attempts: %w", c.cfg.MaxReconnects, err)
		}
		c.log.Warn("relay connection lost",
			zap.Error(err),
			zap.Int("attempt", failures),
			zap.Duration("retry_in", c.cfg.ReconnectDelay))

		t := time.NewTimer(c.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func dial(ctx context.Context, cfg ClientConfig) (*websocket.Conn, error) {
	wcfg, err := websocket.NewConfig(cfg.URL, cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("relay config: %w", err)
	}
	conn, err := wcfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}
	return conn, nil
}

func (c *Client) send(conn *websocket.Conn, f Frame) error {
	return writeFrame(conn, c.cfg.WriteTimeout, f)
}

func writeFrame(conn *websocket.Conn, timeout time.Duration, f Frame) error {
	if timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	if err := websocket.JSON.Send(conn, f); err != nil {
		return fmt.Errorf("write %s: %w", f.Type, err)
	}
	return nil
}

// serve runs one connection. joined reports whether the room log was
// received before the connection ended.
func (c *Client) serve(ctx context.Context) (joined bool, err error) {
	conn, err := dial(ctx, c.cfg)
	if err != nil {
		return false, err
	}
	defer func() { _ = conn.Close() }()

	// Frames queued for an earlier connection belong to a state the
	// room log is about to replace.
	for len(c.outbox) > 0 {
		<-c.outbox
	}

	join := JoinPayload{Room: c.cfg.Room, Role: c.cfg.Role, Protocol: c.cfg.Protocol}
	if err := c.send(conn, newFrame(FrameJoin, join)); err != nil {
		return false, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		_ = conn.Close()
		return nil
	})
	g.Go(func() error { return c.writeLoop(gctx, conn) })
	g.Go(func() error { return c.readLoop(conn, &joined) })

	err = g.Wait()
	c.connected.Store(false)
	return joined, err
}

func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn) error {
	var tick <-chan time.Time
	if c.cfg.PingInterval > 0 {
		ticker := time.NewTicker(c.cfg.PingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-c.outbox:
			if err := c.send(conn, f); err != nil {
				return err
			}
		case <-tick:
			if err := c.send(conn, newFrame(FramePing, nil)); err != nil {
				return err
			}
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn, joined *bool) error {
	for {
		var f Frame
		if err := websocket.JSON.Receive(conn, &f); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if err := c.handle(f, joined); err != nil {
			return err
		}
	}
}

func (c *Client) handle(f Frame, joined *bool) error {
	switch f.Type {
	case FrameWelcome:
		var w WelcomePayload
		if err := json.Unmarshal(f.Payload, &w); err != nil {
			return fmt.Errorf("decode welcome: %w", err)
		}
		c.mu.Lock()
		c.clientID = w.ClientID
		c.mu.Unlock()
		c.log.Info("joined room", zap.String("client", w.ClientID), zap.Int("clients", w.ConnectedClients))

	case FrameFullState:
		var fs FullStatePayload
		if err := json.Unmarshal(f.Payload, &fs); err != nil {
			return fmt.Errorf("decode full state: %w", err)
		}
		c.replay(fs)
		*joined = true
		c.connected.Store(true)

	case FrameAction:
		var ap ActionPayload
		if err := json.Unmarshal(f.Payload, &ap); err != nil {
			c.log.Warn("bad action frame", zap.Error(err))
			return nil
		}
		if ap.SenderID == c.ClientID() {
			return nil
		}
		c.apply(ap.Action)

	case FrameRoomReset:
		c.log.Info("room reset")
		c.apply(session.Action{Kind: session.KindReset, At: time.Now()})

	case FramePong:

	case FrameError:
		var e ErrorPayload
		_ = json.Unmarshal(f.Payload, &e)
		if e.Code == CodeProtocolMismatch {
			return fmt.Errorf("%w: %s", ErrProtocolMismatch, e.Message)
		}
		c.log.Warn("relay error", zap.String("code", e.Code), zap.String("message", e.Message))

	default:
		c.log.Debug("ignoring frame", zap.String("type", f.Type))
	}
	return nil
}

// replay resets the replica and applies the room log in order.
func (c *Client) replay(fs FullStatePayload) {
	c.apply(session.Action{Kind: session.KindReset, At: time.Now()})
	if fs.Base != nil {
		if err := c.replica.Restore(*fs.Base); err != nil {
			c.log.Warn("restore room base", zap.Error(err))
		}
	}
	for _, a := range fs.Actions {
		c.apply(a)
	}
	c.log.Debug("replayed room log", zap.Bool("base", fs.Base != nil), zap.Int("actions", len(fs.Actions)))
}

func (c *Client) apply(a session.Action) {
	if err := c.replica.Apply(a); err != nil {
		c.log.Debug("remote action rejected", zap.String("kind", string(a.Kind)), zap.Error(err))
	}
}

// ResetRoom joins cfg.Room as cfg.Role, clears its log and returns once the relay
// confirms the reset.
func ResetRoom(ctx context.Context, cfg ClientConfig) error {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := writeFrame(conn, cfg.WriteTimeout, newFrame(FrameJoin, JoinPayload{Room: cfg.Room, Role: cfg.Role, Protocol: cfg.Protocol})); err != nil {
		return err
	}

	sentReset := false
	for {
		var f Frame
		if err := websocket.JSON.Receive(conn, &f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		switch f.Type {
		case FrameError:
			var e ErrorPayload
			_ = json.Unmarshal(f.Payload, &e)
			if e.Code == CodeProtocolMismatch {
				return fmt.Errorf("%w: %s", ErrProtocolMismatch, e.Message)
			}
			return fmt.Errorf("relay error %s: %s", e.Code, e.Message)
		case FrameFullState:
			if !sentReset {
				if err := writeFrame(conn, cfg.WriteTimeout, newFrame(FrameResetRoom, nil)); err != nil {
					return err
				}
				sentReset = true
			}
		case FrameRoomReset:
			if sentReset {
				return nil
			}
		}
	}
}
