package network

import (
	"context"

	"github.com/diegofer25/neon-siege-sub003/logging"
)

const (
	// EventConnected is emitted when a client session attaches.
	EventConnected logging.EventType = "network.connected"
	// EventDisconnected is emitted when a client session detaches.
	EventDisconnected logging.EventType = "network.disconnected"
	// EventCommandRejected is emitted when an inbound command is refused.
	EventCommandRejected logging.EventType = "network.command_rejected"
	// EventAckAdvanced is emitted when a client acknowledges a newer patch.
	EventAckAdvanced logging.EventType = "network.ack_advanced"
	// EventAckRegression is emitted when a client reports an older
	// acknowledgement than previously recorded.
	EventAckRegression logging.EventType = "network.ack_regression"
)

func sessionRef(sessionID string) logging.EntityRef {
	return logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSystem}
}

// SessionPayload captures session lifecycle details.
type SessionPayload struct {
	SessionID string `json:"sessionId"`
	Sessions  int    `json:"sessions"`
}

// RejectPayload captures why an inbound command was refused.
type RejectPayload struct {
	SessionID string `json:"sessionId"`
	Command   string `json:"command"`
	Seq       uint64 `json:"seq"`
	Reason    string `json:"reason"`
}

// AckPayload captures acknowledgement progression details.
type AckPayload struct {
	Previous uint64 `json:"previous"`
	Ack      uint64 `json:"ack"`
}

// Connected publishes a session attach event.
func Connected(ctx context.Context, pub logging.Publisher, tick uint64, payload SessionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConnected,
		Tick:     tick,
		Actor:    sessionRef(payload.SessionID),
		Severity: logging.SeverityInfo,
		Category: "network",
		Payload:  payload,
	})
}

// Disconnected publishes a session detach event.
func Disconnected(ctx context.Context, pub logging.Publisher, tick uint64, payload SessionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDisconnected,
		Tick:     tick,
		Actor:    sessionRef(payload.SessionID),
		Severity: logging.SeverityInfo,
		Category: "network",
		Payload:  payload,
	})
}

// CommandRejected publishes a warning for a refused inbound command.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, payload RejectPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCommandRejected,
		Tick:     tick,
		Actor:    sessionRef(payload.SessionID),
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
	})
}

// AckAdvanced publishes a debug event when a client acknowledgement advances.
func AckAdvanced(ctx context.Context, pub logging.Publisher, tick uint64, sessionID string, payload AckPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAckAdvanced,
		Tick:     tick,
		Actor:    sessionRef(sessionID),
		Severity: logging.SeverityDebug,
		Category: "network",
		Payload:  payload,
	})
}

// AckRegression publishes a warning when a client acknowledgement regresses.
func AckRegression(ctx context.Context, pub logging.Publisher, tick uint64, sessionID string, payload AckPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAckRegression,
		Tick:     tick,
		Actor:    sessionRef(sessionID),
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
	})
}
