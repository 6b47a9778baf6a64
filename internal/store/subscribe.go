package store

import "github.com/diegofer25/neon-siege-sub003/internal/telemetry"

// KeyCallback observes one key of one slice.
type KeyCallback func(value any)

// SliceCallback observes any change in one slice; changed is sorted.
type SliceCallback func(record map[string]any, changed []string)

// AnyCallback observes every change in the store.
type AnyCallback func(slice string, record map[string]any, changed []string)

type keyEntry struct {
	id uint64
	cb KeyCallback
}

type sliceEntry struct {
	id uint64
	cb SliceCallback
}

type anyEntry struct {
	id uint64
	cb AnyCallback
}

// subscriptions keeps the three subscriber collections. Entries are
// keyed by a monotonically increasing id so unsubscribe removes
// exactly one registration, even when the same function is registered
// twice. Notification order within a slice: key subscribers, then
// slice subscribers, then global subscribers, each in registration
// order.
type subscriptions struct {
	nextID  uint64
	byKey   map[string]map[string][]keyEntry
	bySlice map[string][]sliceEntry
	global  []anyEntry

	logger  telemetry.Logger
	metrics telemetry.Metrics
}

func (ss *subscriptions) init(logger telemetry.Logger, metrics telemetry.Metrics) {
	ss.byKey = make(map[string]map[string][]keyEntry)
	ss.bySlice = make(map[string][]sliceEntry)
	ss.logger = logger
	ss.metrics = metrics
}

// On subscribes to a single key of a slice and returns an unsubscribe
// func. Subscribing to an unknown slice warns and returns a no-op.
func (s *Store) On(slice, key string, cb KeyCallback) func() {
	if s == nil || cb == nil {
		return func() {}
	}
	if _, ok := s.records[slice]; !ok {
		s.warnUnknownSlice("subscribe", slice)
		return func() {}
	}
	ss := &s.subs
	ss.nextID++
	id := ss.nextID
	keys, ok := ss.byKey[slice]
	if !ok {
		keys = make(map[string][]keyEntry)
		ss.byKey[slice] = keys
	}
	keys[key] = append(keys[key], keyEntry{id: id, cb: cb})
	return func() {
		entries := ss.byKey[slice][key]
		for i, entry := range entries {
			if entry.id == id {
				ss.byKey[slice][key] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// OnSlice subscribes to any change in a slice.
func (s *Store) OnSlice(slice string, cb SliceCallback) func() {
	if s == nil || cb == nil {
		return func() {}
	}
	if _, ok := s.records[slice]; !ok {
		s.warnUnknownSlice("subscribe", slice)
		return func() {}
	}
	ss := &s.subs
	ss.nextID++
	id := ss.nextID
	ss.bySlice[slice] = append(ss.bySlice[slice], sliceEntry{id: id, cb: cb})
	return func() {
		entries := ss.bySlice[slice]
		for i, entry := range entries {
			if entry.id == id {
				ss.bySlice[slice] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// OnAny subscribes to every change in the store.
func (s *Store) OnAny(cb AnyCallback) func() {
	if s == nil || cb == nil {
		return func() {}
	}
	ss := &s.subs
	ss.nextID++
	id := ss.nextID
	ss.global = append(ss.global, anyEntry{id: id, cb: cb})
	return func() {
		for i, entry := range ss.global {
			if entry.id == id {
				ss.global = append(ss.global[:i:i], ss.global[i+1:]...)
				return
			}
		}
	}
}

// notify fans one slice's change set out to subscribers. Collections
// are snapshotted first so callbacks may unsubscribe mid-notification
// without skipping siblings. A panicking callback is recovered and
// logged; the rest still run.
func (ss *subscriptions) notify(slice string, record map[string]any, changed []string) {
	if keys, ok := ss.byKey[slice]; ok {
		for _, key := range changed {
			entries := keys[key]
			if len(entries) == 0 {
				continue
			}
			snapshot := append([]keyEntry(nil), entries...)
			value := record[key]
			for _, entry := range snapshot {
				ss.safeKey(entry.cb, slice, key, value)
			}
		}
	}
	if entries := ss.bySlice[slice]; len(entries) > 0 {
		snapshot := append([]sliceEntry(nil), entries...)
		for _, entry := range snapshot {
			ss.safeSlice(entry.cb, slice, record, changed)
		}
	}
	if len(ss.global) > 0 {
		snapshot := append([]anyEntry(nil), ss.global...)
		for _, entry := range snapshot {
			ss.safeAny(entry.cb, slice, record, changed)
		}
	}
}

func (ss *subscriptions) safeKey(cb KeyCallback, slice, key string, value any) {
	defer ss.recoverPanic(slice, key)
	cb(value)
}

func (ss *subscriptions) safeSlice(cb SliceCallback, slice string, record map[string]any, changed []string) {
	defer ss.recoverPanic(slice, "")
	cb(record, changed)
}

func (ss *subscriptions) safeAny(cb AnyCallback, slice string, record map[string]any, changed []string) {
	defer ss.recoverPanic(slice, "")
	cb(slice, record, changed)
}

func (ss *subscriptions) recoverPanic(slice, key string) {
	if r := recover(); r != nil {
		if key != "" {
			ss.logger.Printf("store: subscriber panic on %s.%s: %v", slice, key, r)
		} else {
			ss.logger.Printf("store: subscriber panic on %s: %v", slice, r)
		}
		if ss.metrics != nil {
			ss.metrics.Add("store_subscriber_panics", 1)
		}
	}
}
