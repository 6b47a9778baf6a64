// Package proto defines the wire protocol between the runtime and its
// clients: inbound command messages and outbound state frames.
package proto

import (
	"encoding/json"
	"fmt"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	typeHello         = "hello"
	typePatch         = "patch"
	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
)

// Client message type identifiers.
const (
	TypeStartRun     = "startRun"
	TypeEndRun       = "endRun"
	TypeCast         = "cast"
	TypeEquip        = "equip"
	TypeUnequip      = "unequip"
	TypeRankUp       = "rankUp"
	TypeAllocate     = "allocate"
	TypeSettings     = "settings"
	TypeAscend       = "ascend"
	TypeAscendReroll = "ascendReroll"
	TypeAscendChoose = "ascendChoose"
	TypeHeartbeat    = "heartbeat"
	TypeAck          = "ack"
)

// ClientMessage captures an inbound websocket message from the client.
type ClientMessage struct {
	Ver        int            `json:"ver,omitempty"`
	Type       string         `json:"type"`
	Seed       string         `json:"seed,omitempty"`
	SkillID    string         `json:"skillId,omitempty"`
	Rank       int            `json:"rank,omitempty"`
	Config     map[string]any `json:"config,omitempty"`
	Attribute  string         `json:"attribute,omitempty"`
	ModifierID string         `json:"modifierId,omitempty"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Settings   map[string]any `json:"settings,omitempty"`
	SentAt     int64          `json:"sentAt,omitempty"`
	Ack        *uint64        `json:"ack,omitempty"`
	Seq        *uint64        `json:"seq,omitempty"`
}

// DecodeClientMessage converts a raw websocket payload into a
// structured message, enforcing the protocol version.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// Hello is the first frame of a session: the complete serialized state
// plus the action-log cursor patches will continue from.
type Hello struct {
	Ver    int              `json:"ver"`
	Type   string           `json:"type"`
	Tick   uint64           `json:"tick"`
	State  store.Serialized `json:"state"`
	LogSeq uint64           `json:"logSeq"`
}

// EncodeHello renders the session-opening frame.
func EncodeHello(tick uint64, state store.Serialized, logSeq uint64) ([]byte, error) {
	return json.Marshal(Hello{
		Ver:    Version,
		Type:   typeHello,
		Tick:   tick,
		State:  state,
		LogSeq: logSeq,
	})
}

// Patch carries the slices that changed since the previous frame,
// whole records keyed by slice name, plus the action-log entries
// appended in the same window.
type Patch struct {
	Ver     int                       `json:"ver"`
	Type    string                    `json:"type"`
	Tick    uint64                    `json:"tick"`
	Version uint64                    `json:"version"`
	Slices  map[string]map[string]any `json:"slices,omitempty"`
	Actions []dispatch.Entry          `json:"actions,omitempty"`
}

// EncodePatch renders a per-tick delta frame.
func EncodePatch(patch Patch) ([]byte, error) {
	patch.Ver = Version
	patch.Type = typePatch
	return json.Marshal(patch)
}

// CommandAck describes an acknowledgement of an accepted command.
type CommandAck struct {
	Seq  uint64
	Tick uint64
}

// EncodeCommandAck renders a command acknowledgement response.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
		Tick uint64 `json:"tick,omitempty"`
	}{
		Ver:  Version,
		Type: typeCommandAck,
		Seq:  msg.Seq,
		Tick: msg.Tick,
	}
	return json.Marshal(frame)
}

// CommandReject notifies the client that a command was refused.
type CommandReject struct {
	Seq    uint64
	Reason string
	Retry  bool
}

// EncodeCommandReject renders a command rejection response.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry,omitempty"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		Seq:    msg.Seq,
		Reason: msg.Reason,
		Retry:  msg.Retry,
	}
	return json.Marshal(frame)
}

// Heartbeat echoes client time back with the server clock so clients
// can estimate round-trip latency.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
	}
	return json.Marshal(frame)
}
