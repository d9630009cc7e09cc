package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/session"
)

// HubConfig bounds what a hub keeps and accepts.
type HubConfig struct {
	// MaxRoomActions bounds each room's action log. Past it the oldest
	// half is folded into the room's base state, which full_state sends
	// ahead of the remaining actions.
	MaxRoomActions int

	// Session configures the replica that holds a room's folded state. It
	// must match the clients' session config.
	Session session.Config

	// MaxFrameBytes caps one incoming frame.
	MaxFrameBytes int

	// MaxDecodeErrors closes a connection after that many consecutive
	// undecodable frames.
	MaxDecodeErrors int

	// WriteTimeout bounds each frame written to a peer.
	WriteTimeout time.Duration
}

// DefaultHubConfig returns the relay defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		MaxRoomActions:  5000,
		Session:         session.DefaultConfig(),
		MaxFrameBytes:   1 << 20,
		MaxDecodeErrors: 5,
		WriteTimeout:    10 * time.Second,
	}
}

// Hub owns the rooms and the connected peers.
type Hub struct {
	cfg     HubConfig
	log     *zap.Logger
	started time.Time

	mu     sync.Mutex
	rooms  map[string]*room
	peers  map[*peer]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub(cfg HubConfig, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		cfg:     cfg,
		log:     log.Named("relay"),
		started: time.Now(),
		rooms:   make(map[string]*room),
		peers:   make(map[*peer]struct{}),
	}
}

// Handler serves the WebSocket endpoint at /ws and the health probe at
// /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.serveHealth)

	ws := websocket.Server{Handler: h.serveConn}
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ws.ServeHTTP(w, r)
	})
	return mux
}

type healthResponse struct {
	Status        string  `json:"status"`
	Service       string  `json:"service"`
	Clients       int     `json:"clients"`
	Rooms         int     `json:"rooms"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

func (h *Hub) serveHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := healthResponse{
		Status:        "ok",
		Service:       "jarvis-relay",
		Clients:       len(h.peers),
		Rooms:         len(h.rooms),
		UptimeSeconds: time.Since(h.started).Seconds(),
	}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(resp)
}

// Clients returns the number of open connections.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Close disconnects every peer and stops the rooms' base replicas. Room
// logs are kept.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	rooms := make([]*room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	for _, p := range peers {
		_ = p.conn.Close()
	}
	for _, r := range rooms {
		r.close()
	}
}

func (h *Hub) room(name string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[name]
	if !ok {
		r = newRoom(name, h.cfg, h.log)
		h.rooms[name] = r
	}
	return r
}

func (h *Hub) register(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p] = struct{}{}
	return true
}

func (h *Hub) unregister(p *peer) {
	h.mu.Lock()
	delete(h.peers, p)
	h.mu.Unlock()
}

type peer struct {
	id      string
	role    role.Role
	room    *room
	conn    *websocket.Conn
	timeout time.Duration

	mu sync.Mutex
}

func (p *peer) send(f Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timeout > 0 {
		_ = p.conn.SetWriteDeadline(time.Now().Add(p.timeout))
	}
	return websocket.JSON.Send(p.conn, f)
}

func (h *Hub) serveConn(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()
	conn.MaxPayloadBytes = h.cfg.MaxFrameBytes

	p := &peer{
		id:      strings.SplitN(uuid.NewString(), "-", 2)[0],
		conn:    conn,
		timeout: h.cfg.WriteTimeout,
	}
	if !h.register(p) {
		return
	}
	defer h.unregister(p)
	defer func() {
		if p.room != nil {
			p.room.leave(p)
		}
	}()

	log := h.log.With(zap.String("client", p.id))
	log.Debug("client connected", zap.String("remote", conn.Request().RemoteAddr))

	decodeErrors := 0
	for {
		var f Frame
		if err := websocket.JSON.Receive(conn, &f); err != nil {
			if !decodeError(err) {
				if !errors.Is(err, io.EOF) {
					log.Debug("read failed", zap.Error(err))
				}
				log.Debug("client disconnected", zap.String("role", p.role.String()))
				return
			}
			decodeErrors++
			_ = p.send(errorFrame(CodeInvalidArgument, "invalid frame"))
			if decodeErrors >= h.cfg.MaxDecodeErrors {
				log.Warn("closing client after repeated invalid frames")
				return
			}
			continue
		}
		decodeErrors = 0
		h.handle(p, f, log)
	}
}

func decodeError(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.Is(err, websocket.ErrFrameTooLarge) || errors.As(err, &syntax) || errors.As(err, &typ)
}

func (h *Hub) handle(p *peer, f Frame, log *zap.Logger) {
	switch f.Type {
	case FrameJoin:
		h.handleJoin(p, f, log)
	case FramePing:
		_ = p.send(newFrame(FramePong, nil))
	case FrameAction, FrameRequestFullState, FrameResetRoom:
		if p.room == nil {
			_ = p.send(errorFrame(CodeForbidden, "join a room first"))
			return
		}
		switch f.Type {
		case FrameAction:
			h.handleAction(p, f)
		case FrameRequestFullState:
			p.room.sendFullState(p)
		case FrameResetRoom:
			n := p.room.reset(p)
			log.Info("room reset", zap.String("room", p.room.name), zap.Int("notified", n))
		}
	default:
		_ = p.send(errorFrame(CodeInvalidArgument, fmt.Sprintf("unsupported frame type %q", f.Type)))
	}
}

func (h *Hub) handleJoin(p *peer, f Frame, log *zap.Logger) {
	var jp JoinPayload
	if err := json.Unmarshal(f.Payload, &jp); err != nil {
		_ = p.send(errorFrame(CodeInvalidArgument, "invalid join payload"))
		return
	}
	if !Compatible(jp.Protocol) {
		log.Warn("protocol mismatch", zap.String("protocol", jp.Protocol))
		_ = p.send(errorFrame(CodeProtocolMismatch,
			fmt.Sprintf("relay speaks %s, client sent %q", ProtocolVersion, jp.Protocol)))
		return
	}
	name := strings.TrimSpace(jp.Room)
	if name == "" {
		_ = p.send(errorFrame(CodeInvalidArgument, "room is required"))
		return
	}
	if !jp.Role.Valid() {
		_ = p.send(errorFrame(CodeInvalidArgument, "role must be student or coach"))
		return
	}

	next := h.room(name)
	if p.room != nil && p.room != next {
		p.room.leave(p)
	}
	p.role = jp.Role
	p.room = next
	next.join(p)
	log.Info("client joined", zap.String("room", name), zap.String("role", p.role.String()))
}

func (h *Hub) handleAction(p *peer, f Frame) {
	var ap ActionPayload
	if err := json.Unmarshal(f.Payload, &ap); err != nil {
		_ = p.send(errorFrame(CodeInvalidArgument, "invalid action payload"))
		return
	}
	if ap.Action.Kind == "" || !ap.Action.Kind.Replicated() {
		_ = p.send(errorFrame(CodeInvalidArgument, fmt.Sprintf("action %q is not replicated", ap.Action.Kind)))
		return
	}
	p.room.broadcast(p, ap.Action)
}

// room holds one lesson's ordered action log. Frames to its peers are
// written under mu so every peer sees actions in log order.
type room struct {
	name string
	max  int
	cfg  session.Config
	log  *zap.Logger

	mu sync.Mutex

	// base is a replica with every folded action applied. It is nil
	// until the log first overflows.
	base    *session.Session
	actions []session.Action
	peers   map[*peer]struct{}
	closed  bool
}

func newRoom(name string, cfg HubConfig, log *zap.Logger) *room {
	return &room{
		name:  name,
		max:   cfg.MaxRoomActions,
		cfg:   cfg.Session,
		log:   log.With(zap.String("room", name)),
		peers: make(map[*peer]struct{}),
	}
}

func (r *room) appendLocked(a session.Action) {
	r.actions = append(r.actions, a)
	if r.closed || r.max <= 0 || len(r.actions) <= r.max {
		return
	}
	if r.base == nil {
		r.base = session.New(r.cfg, session.WithLogger(r.log), session.WithID("room-"+r.name))
	}
	n := len(r.actions) - r.max/2
	for _, old := range r.actions[:n] {
		if err := r.base.Apply(old); err != nil {
			r.log.Debug("folded action rejected", zap.String("kind", string(old.Kind)), zap.Error(err))
		}
	}
	r.actions = append([]session.Action(nil), r.actions[n:]...)
	r.log.Debug("compacted room log", zap.Int("folded", n), zap.Int("kept", len(r.actions)))
}

func (r *room) fullStateLocked() FullStatePayload {
	fs := FullStatePayload{Actions: r.actions}
	if r.base != nil {
		st := r.base.Snapshot()
		fs.Base = &st
	}
	return fs
}

func (r *room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.base != nil {
		r.base.Close()
	}
}

func (r *room) join(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p] = struct{}{}
	_ = p.send(newFrame(FrameWelcome, WelcomePayload{
		ClientID:         p.id,
		ConnectedClients: len(r.peers),
		Protocol:         ProtocolVersion,
	}))
	_ = p.send(newFrame(FrameFullState, r.fullStateLocked()))
}

func (r *room) leave(p *peer) {
	r.mu.Lock()
	delete(r.peers, p)
	r.mu.Unlock()
}

func (r *room) sendFullState(p *peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = p.send(newFrame(FrameFullState, r.fullStateLocked()))
}

func (r *room) broadcast(from *peer, a session.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.appendLocked(a)

	f := newFrame(FrameAction, ActionPayload{SenderID: from.id, SenderRole: from.role, Action: a})
	for p := range r.peers {
		if p != from {
			_ = p.send(f)
		}
	}
}

// reset clears the log and notifies every peer, the sender included.
func (r *room) reset(from *peer) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = nil
	if r.base != nil {
		r.base.Close()
		r.base = nil
	}
	f := newFrame(FrameRoomReset, ResetPayload{SenderID: from.id, SenderRole: from.role})
	for p := range r.peers {
		_ = p.send(f)
	}
	return len(r.peers)
}

// Actions returns a copy of the room's unfolded log, for tests and
// inspection.
func (h *Hub) Actions(name string) []session.Action {
	h.mu.Lock()
	r, ok := h.rooms[name]
	h.mu.Unlock()
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.Action(nil), r.actions...)
}

// BaseState returns the room's folded state, or false when nothing has
// been folded yet.
func (h *Hub) BaseState(name string) (session.State, bool) {
	h.mu.Lock()
	r, ok := h.rooms[name]
	h.mu.Unlock()
	if !ok {
		return session.State{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.base == nil {
		return session.State{}, false
	}
	return r.base.Snapshot(), true
}
