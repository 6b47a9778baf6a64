// Package store implements the reactive slice store at the heart of
// the runtime. State lives in named slices of JSON-safe records;
// writes report exactly which keys changed and fan out to key, slice
// and global subscribers. The store is single-goroutine by contract:
// the game loop owns it, and the transaction flag is bookkeeping, not
// a lock.
package store

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
	"github.com/diegofer25/neon-siege-sub003/logging"
)

// Builder constructs a fresh initial record for a slice.
type Builder func() map[string]any

// View is the read-only surface handed to reducers and effects.
type View interface {
	Get(slice, key string) any
	GetSlice(slice string) map[string]any
}

// Deps carries the collaborators a Store needs. Zero values fall back
// to stdlib logging, no metrics and the system clock.
type Deps struct {
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
	Clock   logging.Clock
}

type Store struct {
	logger  telemetry.Logger
	metrics telemetry.Metrics
	clock   logging.Clock

	order    []string
	builders map[string]Builder
	records  map[string]map[string]any

	version   uint64
	timestamp int64

	txDepth int
	txDirty map[string]map[string]struct{}

	subs subscriptions
}

var errNilBuilder = errors.New("store: nil slice builder")

func New(deps Deps) *Store {
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.SystemClock()
	}
	s := &Store{
		logger:   logger,
		metrics:  deps.Metrics,
		clock:    clock,
		builders: make(map[string]Builder),
		records:  make(map[string]map[string]any),
		txDirty:  make(map[string]map[string]struct{}),
	}
	s.subs.init(logger, deps.Metrics)
	return s
}

// RegisterSlice installs a slice with its initial-state constructor.
// Registering the same name twice is an error; slices are fixed for
// the life of the store.
func (s *Store) RegisterSlice(name string, builder Builder) error {
	if s == nil {
		return errors.New("store: nil store")
	}
	if name == "" {
		return errors.New("store: empty slice name")
	}
	if builder == nil {
		return errNilBuilder
	}
	if _, exists := s.records[name]; exists {
		return fmt.Errorf("store: slice %q already registered", name)
	}
	record := builder()
	if record == nil {
		record = map[string]any{}
	}
	s.builders[name] = builder
	s.records[name] = record
	s.order = append(s.order, name)
	return nil
}

// SliceNames returns every registered slice in registration order.
func (s *Store) SliceNames() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the value under slice/key, or nil when either is
// missing. Composite values are live references; callers must treat
// them as read-only.
func (s *Store) Get(slice, key string) any {
	if s == nil {
		return nil
	}
	record, ok := s.records[slice]
	if !ok {
		s.warnUnknownSlice("get", slice)
		return nil
	}
	return record[key]
}

// GetSlice returns a shallow copy of a slice's record, or nil when
// unknown. The copy keeps consumer mutations away from change
// detection; nested composites are still shared, read-only.
func (s *Store) GetSlice(slice string) map[string]any {
	record := s.record(slice)
	if record == nil {
		return nil
	}
	out := make(map[string]any, len(record))
	for key, value := range record {
		out[key] = value
	}
	return out
}

// record is the package-internal live accessor the commit and notify
// paths use. Never handed across the package boundary.
func (s *Store) record(slice string) map[string]any {
	if s == nil {
		return nil
	}
	record, ok := s.records[slice]
	if !ok {
		s.warnUnknownSlice("get_slice", slice)
		return nil
	}
	return record
}

// Set applies a partial update to one slice and returns the keys whose
// values actually changed, sorted. Scalars compare by equality and
// composites by reference, so handing a record's own value back is a
// no-op. An empty result means no write, no version bump and no
// notifications.
func (s *Store) Set(slice string, updates map[string]any) []string {
	if s == nil {
		return nil
	}
	record, ok := s.records[slice]
	if !ok {
		s.warnUnknownSlice("set", slice)
		return nil
	}
	changed := make([]string, 0, len(updates))
	for key, value := range updates {
		current, exists := record[key]
		if exists && sameValue(current, value) {
			continue
		}
		record[key] = value
		changed = append(changed, key)
	}
	if len(changed) == 0 {
		return changed
	}
	sort.Strings(changed)
	s.markDirty(slice, changed)
	if s.txDepth == 0 {
		s.commit()
	}
	return changed
}

// Transaction batches writes: every Set inside fn coalesces into one
// version bump and one notification pass per touched slice, with the
// union of changed keys. Transactions nest; the outermost commits.
// Notifications still flush if fn panics.
func (s *Store) Transaction(fn func()) {
	if s == nil || fn == nil {
		return
	}
	s.txDepth++
	defer func() {
		s.txDepth--
		if s.txDepth == 0 {
			s.commit()
		}
	}()
	fn()
}

// ResetSlice restores a slice to its initial shape, notifying only
// keys whose values genuinely differ. Scalars compare by equality;
// freshly built composites count as changed by reference, like Set.
func (s *Store) ResetSlice(name string) {
	if s == nil {
		return
	}
	builder, ok := s.builders[name]
	if !ok {
		s.warnUnknownSlice("reset", name)
		return
	}
	old := s.records[name]
	fresh := builder()
	if fresh == nil {
		fresh = map[string]any{}
	}
	changed := make([]string, 0, len(old)+len(fresh))
	for key, value := range fresh {
		if current, existed := old[key]; existed && sameValue(current, value) {
			continue
		}
		changed = append(changed, key)
	}
	for key := range old {
		if _, kept := fresh[key]; !kept {
			changed = append(changed, key)
		}
	}
	s.records[name] = fresh
	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)
	s.markDirty(name, changed)
	if s.txDepth == 0 {
		s.commit()
	}
}

// ResetAll restores every slice inside a single transaction.
func (s *Store) ResetAll() {
	if s == nil {
		return
	}
	s.Transaction(func() {
		for _, name := range s.order {
			s.ResetSlice(name)
		}
	})
}

// Version returns the monotonic change counter. It bumps once per
// committed change set: once per stand-alone Set, once per
// transaction that changed anything.
func (s *Store) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// Timestamp returns the unix-millisecond time of the last commit.
func (s *Store) Timestamp() int64 {
	if s == nil {
		return 0
	}
	return s.timestamp
}

func (s *Store) markDirty(slice string, keys []string) {
	set, ok := s.txDirty[slice]
	if !ok {
		set = make(map[string]struct{}, len(keys))
		s.txDirty[slice] = set
	}
	for _, key := range keys {
		set[key] = struct{}{}
	}
}

func (s *Store) commit() {
	if len(s.txDirty) == 0 {
		return
	}
	dirty := s.txDirty
	s.txDirty = make(map[string]map[string]struct{})
	s.version++
	s.timestamp = s.clock.Now().UnixMilli()
	if s.metrics != nil {
		s.metrics.Add("store_commits", 1)
	}
	for _, slice := range s.order {
		keys, ok := dirty[slice]
		if !ok {
			continue
		}
		changed := make([]string, 0, len(keys))
		for key := range keys {
			changed = append(changed, key)
		}
		sort.Strings(changed)
		s.subs.notify(slice, s.records[slice], changed)
	}
}

func (s *Store) warnUnknownSlice(op, slice string) {
	s.logger.Printf("store: %s on unknown slice %q", op, slice)
	if s.metrics != nil {
		s.metrics.Add("store_unknown_slice", 1)
	}
}

var _ View = (*Store)(nil)
