package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/net/websocket"

	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestHub(t *testing.T, cfg HubConfig) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(cfg, nil)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialRaw(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, err := websocket.Dial(wsURL(srv), "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeRaw(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, websocket.JSON.Send(conn, newFrame(typ, payload)))
}

func readRaw(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	require.NoError(t, websocket.JSON.Receive(conn, &f))
	return f
}

func decode[T any](t *testing.T, f Frame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Payload, &v))
	return v
}

// joinRaw joins room and returns the welcome and the replayed log.
func joinRaw(t *testing.T, conn *websocket.Conn, room string, r role.Role) (WelcomePayload, []session.Action) {
	t.Helper()
	writeRaw(t, conn, FrameJoin, JoinPayload{Room: room, Role: r, Protocol: ProtocolVersion})
	w := readRaw(t, conn)
	require.Equal(t, FrameWelcome, w.Type)
	fs := readRaw(t, conn)
	require.Equal(t, FrameFullState, fs.Type)
	return decode[WelcomePayload](t, w), decode[FullStatePayload](t, fs).Actions
}

// syncRaw waits until the hub has processed everything conn sent before.
func syncRaw(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	writeRaw(t, conn, FramePing, nil)
	require.Equal(t, FramePong, readRaw(t, conn).Type)
}

func testAction(t *testing.T, stage role.Stage) session.Action {
	t.Helper()
	a, err := session.NewAction(session.KindSetStage, role.Coach, map[string]any{"stage": stage}, time.Now())
	require.NoError(t, err)
	return a
}

func TestHealth(t *testing.T) {
	_, srv := newTestHub(t, DefaultHubConfig())
	conn := dialRaw(t, srv)
	joinRaw(t, conn, "r1", role.Student)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var h healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "jarvis-relay", h.Service)
	assert.Equal(t, 1, h.Clients)
	assert.Equal(t, 1, h.Rooms)
}

func TestJoinSendsWelcomeAndEmptyLog(t *testing.T) {
	_, srv := newTestHub(t, DefaultHubConfig())
	conn := dialRaw(t, srv)

	w, actions := joinRaw(t, conn, "r1", role.Coach)
	assert.NotEmpty(t, w.ClientID)
	assert.Equal(t, 1, w.ConnectedClients)
	assert.Equal(t, ProtocolVersion, w.Protocol)
	assert.Empty(t, actions)
}

func TestJoinRejections(t *testing.T) {
	tests := []struct {
		name string
		join JoinPayload
		code string
	}{
		{"major mismatch", JoinPayload{Room: "r", Role: role.Coach, Protocol: "v2.0.0"}, CodeProtocolMismatch},
		{"missing protocol", JoinPayload{Room: "r", Role: role.Coach}, CodeProtocolMismatch},
		{"missing room", JoinPayload{Role: role.Coach, Protocol: ProtocolVersion}, CodeInvalidArgument},
		{"bad role", JoinPayload{Room: "r", Role: "parent", Protocol: ProtocolVersion}, CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestHub(t, DefaultHubConfig())
			conn := dialRaw(t, srv)

			writeRaw(t, conn, FrameJoin, tt.join)
			f := readRaw(t, conn)
			require.Equal(t, FrameError, f.Type)
			assert.Equal(t, tt.code, decode[ErrorPayload](t, f).Code)

			writeRaw(t, conn, FrameAction, ActionPayload{Action: testAction(t, role.StageSkill)})
			f = readRaw(t, conn)
			require.Equal(t, FrameError, f.Type)
			assert.Equal(t, CodeForbidden, decode[ErrorPayload](t, f).Code, "unjoined peers cannot send actions")
		})
	}
}

func TestCompatibleMinorVersions(t *testing.T) {
	assert.True(t, Compatible("v1.4.2"))
	assert.True(t, Compatible(ProtocolVersion))
	assert.False(t, Compatible("1.0.0"))
	assert.False(t, Compatible("v0.9.0"))
}

func TestActionBroadcastSkipsSender(t *testing.T) {
	_, srv := newTestHub(t, DefaultHubConfig())
	coach := dialRaw(t, srv)
	student := dialRaw(t, srv)
	cw, _ := joinRaw(t, coach, "r1", role.Coach)
	joinRaw(t, student, "r1", role.Student)

	sent := testAction(t, role.StageBattle)
	writeRaw(t, coach, FrameAction, ActionPayload{Action: sent})

	f := readRaw(t, student)
	require.Equal(t, FrameAction, f.Type)
	got := decode[ActionPayload](t, f)
	assert.Equal(t, cw.ClientID, got.SenderID)
	assert.Equal(t, role.Coach, got.SenderRole)
	assert.Equal(t, sent.Kind, got.Action.Kind)
	assert.JSONEq(t, string(sent.Args), string(got.Action.Args))

	// The next frame the sender sees is its pong, not an echo.
	syncRaw(t, coach)

	late := dialRaw(t, srv)
	_, actions := joinRaw(t, late, "r1", role.Student)
	require.Len(t, actions, 1)
	assert.Equal(t, session.KindSetStage, actions[0].Kind)
}

func TestRoomsAreIsolated(t *testing.T) {
	_, srv := newTestHub(t, DefaultHubConfig())
	a := dialRaw(t, srv)
	b := dialRaw(t, srv)
	joinRaw(t, a, "r1", role.Coach)
	joinRaw(t, b, "r2", role.Student)

	writeRaw(t, a, FrameAction, ActionPayload{Action: testAction(t, role.StageSkill)})
	syncRaw(t, a)
	syncRaw(t, b)

	c := dialRaw(t, srv)
	_, actions := joinRaw(t, c, "r2", role.Coach)
	assert.Empty(t, actions)
}

func scrollAction(t *testing.T, p float64) session.Action {
	t.Helper()
	a, err := session.NewAction(session.KindScroll, role.Student, map[string]any{"progress": p}, time.Now())
	require.NoError(t, err)
	return a
}

func TestRoomLogFoldsIntoBase(t *testing.T) {
	cfg := DefaultHubConfig()
	cfg.MaxRoomActions = 4
	hub, srv := newTestHub(t, cfg)
	conn := dialRaw(t, srv)
	joinRaw(t, conn, "r1", role.Coach)

	writeRaw(t, conn, FrameAction, ActionPayload{Action: testAction(t, role.StageBattle)})
	for i := 1; i <= 10; i++ {
		writeRaw(t, conn, FrameAction, ActionPayload{Action: scrollAction(t, float64(i*10))})
	}
	syncRaw(t, conn)

	log := hub.Actions("r1")
	assert.LessOrEqual(t, len(log), 4)
	assert.JSONEq(t, `{"progress":100}`, string(log[len(log)-1].Args))

	base, ok := hub.BaseState("r1")
	require.True(t, ok)
	assert.Equal(t, role.StageBattle, base.Stage)

	writeRaw(t, conn, FrameRequestFullState, nil)
	f := readRaw(t, conn)
	require.Equal(t, FrameFullState, f.Type)
	fs := decode[FullStatePayload](t, f)
	require.NotNil(t, fs.Base)
	assert.Equal(t, role.StageBattle, fs.Base.Stage)
	assert.Len(t, fs.Actions, len(log))

	writeRaw(t, conn, FrameResetRoom, nil)
	require.Equal(t, FrameRoomReset, readRaw(t, conn).Type)
	_, ok = hub.BaseState("r1")
	assert.False(t, ok)
}

func TestResetRoomNotifiesEveryone(t *testing.T) {
	hub, srv := newTestHub(t, DefaultHubConfig())
	coach := dialRaw(t, srv)
	student := dialRaw(t, srv)
	cw, _ := joinRaw(t, coach, "r1", role.Coach)
	joinRaw(t, student, "r1", role.Student)

	writeRaw(t, coach, FrameAction, ActionPayload{Action: testAction(t, role.StageSkill)})
	require.Equal(t, FrameAction, readRaw(t, student).Type)

	writeRaw(t, coach, FrameResetRoom, nil)
	for _, conn := range []*websocket.Conn{coach, student} {
		f := readRaw(t, conn)
		require.Equal(t, FrameRoomReset, f.Type)
		assert.Equal(t, cw.ClientID, decode[ResetPayload](t, f).SenderID)
	}
	assert.Empty(t, hub.Actions("r1"))
}

func TestInvalidFrames(t *testing.T) {
	_, srv := newTestHub(t, DefaultHubConfig())
	conn := dialRaw(t, srv)
	joinRaw(t, conn, "r1", role.Coach)

	writeRaw(t, conn, "chat.send", nil)
	f := readRaw(t, conn)
	require.Equal(t, FrameError, f.Type)
	assert.Equal(t, CodeInvalidArgument, decode[ErrorPayload](t, f).Code)

	writeRaw(t, conn, FrameAction, ActionPayload{Action: session.Action{Kind: session.KindSetRole}})
	f = readRaw(t, conn)
	require.Equal(t, FrameError, f.Type)
	assert.Contains(t, decode[ErrorPayload](t, f).Message, "not replicated")

	require.NoError(t, websocket.Message.Send(conn, "{not json"))
	f = readRaw(t, conn)
	require.Equal(t, FrameError, f.Type)
	syncRaw(t, conn)
}

func TestRepeatedInvalidFramesCloseConnection(t *testing.T) {
	cfg := DefaultHubConfig()
	cfg.MaxDecodeErrors = 2
	_, srv := newTestHub(t, cfg)
	conn := dialRaw(t, srv)

	for range 2 {
		require.NoError(t, websocket.Message.Send(conn, "{"))
		require.Equal(t, FrameError, readRaw(t, conn).Type)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	require.Error(t, websocket.JSON.Receive(conn, &f))
}
