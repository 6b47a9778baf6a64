package snapshots

import (
	"context"

	"github.com/diegofer25/neon-siege-sub003/logging"
)

const (
	// EventCaptured is emitted when a snapshot of the store is taken.
	EventCaptured logging.EventType = "snapshot.captured"
	// EventSaved is emitted after a snapshot is persisted.
	EventSaved logging.EventType = "snapshot.saved"
	// EventLoaded is emitted after a snapshot is read and migrated.
	EventLoaded logging.EventType = "snapshot.loaded"
	// EventRestored is emitted after a snapshot replaces live state.
	EventRestored logging.EventType = "snapshot.restored"
	// EventRejected is emitted when a snapshot cannot be used.
	EventRejected logging.EventType = "snapshot.rejected"
	// EventBusy is emitted when an operation is refused mid-flight.
	EventBusy logging.EventType = "snapshot.busy"
)

// CapturedPayload describes a captured snapshot.
type CapturedPayload struct {
	Version int `json:"version"`
	Slices  int `json:"slices"`
}

// SavedPayload describes a persisted snapshot.
type SavedPayload struct {
	Key     string `json:"key"`
	Backend string `json:"backend"`
	Bytes   int    `json:"bytes"`
}

// LoadedPayload describes a snapshot read back from storage.
type LoadedPayload struct {
	Key         string `json:"key"`
	Version     int    `json:"version"`
	FromVersion int    `json:"fromVersion"`
	Migrated    bool   `json:"migrated"`
}

// RejectedPayload describes why a snapshot was refused.
type RejectedPayload struct {
	Key     string `json:"key,omitempty"`
	Version int    `json:"version,omitempty"`
	Reason  string `json:"reason"`
}

// BusyPayload names the operation refused by the busy guard.
type BusyPayload struct {
	Operation string `json:"operation"`
}

func systemRef() logging.EntityRef {
	return logging.EntityRef{Kind: logging.EntityKindSystem}
}

// Captured publishes a snapshot capture event.
func Captured(ctx context.Context, pub logging.Publisher, tick uint64, payload CapturedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCaptured,
		Tick:     tick,
		Actor:    systemRef(),
		Severity: logging.SeverityDebug,
		Category: logging.CategorySnapshot,
		Payload:  payload,
	})
}

// Saved publishes a snapshot persistence event.
func Saved(ctx context.Context, pub logging.Publisher, tick uint64, payload SavedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSaved,
		Tick:     tick,
		Actor:    systemRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySnapshot,
		Payload:  payload,
	})
}

// Loaded publishes a snapshot load event.
func Loaded(ctx context.Context, pub logging.Publisher, tick uint64, payload LoadedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLoaded,
		Tick:     tick,
		Actor:    systemRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySnapshot,
		Payload:  payload,
	})
}

// Restored publishes a state restore event.
func Restored(ctx context.Context, pub logging.Publisher, tick uint64, version int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRestored,
		Tick:     tick,
		Actor:    systemRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySnapshot,
		Payload:  CapturedPayload{Version: version},
	})
}

// Rejected publishes a snapshot refusal.
func Rejected(ctx context.Context, pub logging.Publisher, tick uint64, payload RejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRejected,
		Tick:     tick,
		Actor:    systemRef(),
		Severity: logging.SeverityWarn,
		Category: logging.CategorySnapshot,
		Payload:  payload,
	})
}

// Busy publishes a busy-guard refusal.
func Busy(ctx context.Context, pub logging.Publisher, tick uint64, operation string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBusy,
		Tick:     tick,
		Actor:    systemRef(),
		Severity: logging.SeverityWarn,
		Category: logging.CategorySnapshot,
		Payload:  BusyPayload{Operation: operation},
	})
}
