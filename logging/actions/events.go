package actions

import (
	"context"

	"github.com/diegofer25/neon-siege-sub003/logging"
)

const (
	// EventDispatched is emitted after an action commits and observers ran.
	EventDispatched logging.EventType = "action.dispatched"
	// EventQueued is emitted when a nested dispatch is deferred to the queue.
	EventQueued logging.EventType = "action.queued"
	// EventFailed is emitted when a reducer or observer panicked.
	EventFailed logging.EventType = "action.failed"
	// EventLogTrimmed is emitted when the action log discards old entries.
	EventLogTrimmed logging.EventType = "action.log_trimmed"
)

// DispatchedPayload captures the outcome of a committed action.
type DispatchedPayload struct {
	ActionType string   `json:"actionType"`
	Seq        uint64   `json:"seq"`
	Slices     []string `json:"slices,omitempty"`
	QueueDepth int      `json:"queueDepth,omitempty"`
}

// QueuedPayload captures a dispatch deferred because one was in flight.
type QueuedPayload struct {
	ActionType string `json:"actionType"`
	QueueDepth int    `json:"queueDepth"`
}

// FailedPayload captures a recovered reducer or observer panic.
type FailedPayload struct {
	ActionType string `json:"actionType"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
}

// TrimmedPayload captures action-log eviction.
type TrimmedPayload struct {
	Discarded int `json:"discarded"`
	Capacity  int `json:"capacity"`
}

// Dispatched publishes an action commit event.
func Dispatched(ctx context.Context, pub logging.Publisher, tick uint64, actionID string, payload DispatchedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDispatched,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryDispatch,
		Payload:  payload,
		ActionID: actionID,
	})
}

// Queued publishes a deferred dispatch event.
func Queued(ctx context.Context, pub logging.Publisher, tick uint64, payload QueuedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventQueued,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryDispatch,
		Payload:  payload,
	})
}

// Failed publishes a recovered panic from a reducer or observer.
func Failed(ctx context.Context, pub logging.Publisher, tick uint64, actionID string, payload FailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFailed,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityError,
		Category: logging.CategoryDispatch,
		Payload:  payload,
		ActionID: actionID,
	})
}

// LogTrimmed publishes an action-log eviction notice.
func LogTrimmed(ctx context.Context, pub logging.Publisher, tick uint64, payload TrimmedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLogTrimmed,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryDispatch,
		Payload:  payload,
	})
}
