package dispatch

import (
	"time"

	"github.com/diegofer25/neon-siege-sub003/internal/store"
)

// DefaultLogCapacity bounds the action log when the configuration
// does not say otherwise.
const DefaultLogCapacity = 256

// Entry is one recorded action. Seq increases monotonically for the
// life of the dispatcher, so consumers can detect gaps after the ring
// discards old entries.
type Entry struct {
	Seq     uint64         `json:"seq"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	Tick    uint64         `json:"tick"`
	At      int64          `json:"at"`
}

// LogStats reports action-log traffic since construction.
type LogStats struct {
	Appended uint64
	Dropped  uint64
}

type actionLog struct {
	capacity int
	nextSeq  uint64
	entries  []Entry
	appended uint64
	dropped  uint64
}

func newActionLog(capacity int) *actionLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &actionLog{capacity: capacity}
}

// push records an action. Payloads are deep-copied so later payload
// mutation cannot rewrite history. Returns the entry and whether the
// ring discarded an old one to make room.
func (l *actionLog) push(action Action, tick uint64, at time.Time) (Entry, bool) {
	l.nextSeq++
	entry := Entry{
		Seq:     l.nextSeq,
		Type:    action.Type,
		Payload: store.CloneRecord(action.Payload),
		Tick:    tick,
		At:      at.UnixMilli(),
	}
	trimmed := false
	if len(l.entries) >= l.capacity {
		overflow := len(l.entries) - l.capacity + 1
		l.entries = l.entries[overflow:]
		l.dropped += uint64(overflow)
		trimmed = true
	}
	l.entries = append(l.entries, entry)
	l.appended++
	return entry, trimmed
}

func (l *actionLog) copyAll() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// copySince returns entries with Seq strictly greater than since.
func (l *actionLog) copySince(since uint64) []Entry {
	start := len(l.entries)
	for i, entry := range l.entries {
		if entry.Seq > since {
			start = i
			break
		}
	}
	out := make([]Entry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

func (l *actionLog) stats() LogStats {
	return LogStats{Appended: l.appended, Dropped: l.dropped}
}
