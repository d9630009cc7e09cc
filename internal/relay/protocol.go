// Package relay carries session actions between the student and coach
// replicas. A Hub keeps one ordered action log per room and fans actions
// out over WebSocket; a Client joins a room, replays the log into its
// session and forwards the session's local actions.
package relay

import (
	"encoding/json"
	"errors"

	"golang.org/x/mod/semver"

	"github.com/abhisek/jarvis/internal/role"
	"github.com/abhisek/jarvis/internal/session"
)

// ProtocolVersion is the wire protocol spoken by this build. Peers must
// share its major version.
const ProtocolVersion = "v1.0.0"

// Frame types.
const (
	FrameJoin             = "join"
	FrameAction           = "action"
	FrameRequestFullState = "request_full_state"
	FrameResetRoom        = "reset_room"
	FramePing             = "ping"

	FrameWelcome   = "welcome"
	FrameFullState = "full_state"
	FrameRoomReset = "room_reset"
	FramePong      = "pong"
	FrameError     = "error"
)

// Error codes carried by error frames.
const (
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeForbidden        = "FORBIDDEN"
	CodeProtocolMismatch = "PROTOCOL_MISMATCH"
)

// ErrProtocolMismatch is returned by a client whose protocol major
// version the relay rejected. Reconnecting cannot fix it.
var ErrProtocolMismatch = errors.New("relay: protocol version mismatch")

// Frame is the envelope of every message on the wire.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	Room     string    `json:"room"`
	Role     role.Role `json:"role"`
	Protocol string    `json:"protocol"`
}

type WelcomePayload struct {
	ClientID         string `json:"clientId"`
	ConnectedClients int    `json:"connectedClients"`
	Protocol         string `json:"protocol"`
}

// FullStatePayload is a room's state as a base snapshot, when part of the
// log has been folded, followed by the actions applied since.
type FullStatePayload struct {
	Base    *session.State   `json:"base,omitempty"`
	Actions []session.Action `json:"actions"`
}

// ActionPayload carries one replicated action. Sender fields are set by
// the relay.
type ActionPayload struct {
	SenderID   string         `json:"senderId,omitempty"`
	SenderRole role.Role      `json:"senderRole,omitempty"`
	Action     session.Action `json:"action"`
}

type ResetPayload struct {
	SenderID   string    `json:"senderId"`
	SenderRole role.Role `json:"senderRole"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newFrame(typ string, payload any) Frame {
	f := Frame{Type: typ}
	if payload != nil {
		// Payloads are plain structs; Marshal cannot fail on them.
		f.Payload, _ = json.Marshal(payload)
	}
	return f
}

func errorFrame(code, msg string) Frame {
	return newFrame(FrameError, ErrorPayload{Code: code, Message: msg})
}

// Compatible reports whether a peer speaking version v can join.
func Compatible(v string) bool {
	return semver.IsValid(v) && semver.Major(v) == semver.Major(ProtocolVersion)
}
