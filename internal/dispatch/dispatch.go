// Package dispatch implements the action pipeline: middleware chain,
// reducer tables, post-commit effects and the FIFO re-entrancy queue.
// One reduction runs at a time; anything dispatched while it runs is
// queued and drained in submission order. Single-goroutine by
// contract, like the store it drives.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	logactions "github.com/diegofer25/neon-siege-sub003/logging/actions"

	"github.com/diegofer25/neon-siege-sub003/internal/store"
	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
	"github.com/diegofer25/neon-siege-sub003/logging"
)

// Action is a typed intent with a JSON-safe payload.
type Action struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Reducer computes a partial update for one slice. It receives the
// live record read-only and must return a fresh updates map, or nil
// for no change.
type Reducer func(record map[string]any, action Action, view store.View) map[string]any

// Effect runs after an action commits, outside the reduction
// transaction. Effects may dispatch follow-up actions; those queue
// behind the current drain.
type Effect func(action Action, view store.View, dispatch func(Action) bool)

// Middleware wraps the reduce stage. Call next to continue the chain,
// possibly with a transformed action; not calling next swallows the
// action.
type Middleware func(action Action, view store.View, next func(Action))

// Hook observes every appended action-log entry. The gateway uses it
// to stream the log.
type Hook func(Entry)

type reducerBinding struct {
	slice string
	fn    Reducer
}

type effectEntry struct {
	id uint64
	fn Effect
}

// Deps carries the dispatcher's collaborators. Store is required.
type Deps struct {
	Store       *store.Store
	Logger      telemetry.Logger
	Metrics     telemetry.Metrics
	Publisher   logging.Publisher
	Clock       logging.Clock
	Tick        func() uint64
	LogCapacity int
}

type Dispatcher struct {
	store     *store.Store
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	publisher logging.Publisher
	clock     logging.Clock
	tick      func() uint64

	middleware []Middleware
	compiled   func(Action)

	reducers     map[string][]reducerBinding
	effects      map[string][]effectEntry
	nextEffectID uint64

	active    bool
	queue     []Action
	committed bool

	log          *actionLog
	hook         Hook
	trimBacklog  int
	queuePeak    int
}

func New(deps Deps) (*Dispatcher, error) {
	if deps.Store == nil {
		return nil, errors.New("dispatch: nil store")
	}
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.SystemClock()
	}
	tick := deps.Tick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Dispatcher{
		store:     deps.Store,
		logger:    logger,
		metrics:   deps.Metrics,
		publisher: publisher,
		clock:     clock,
		tick:      tick,
		reducers:  make(map[string][]reducerBinding),
		effects:   make(map[string][]effectEntry),
		log:       newActionLog(deps.LogCapacity),
	}, nil
}

// Use appends a middleware. The chain is compiled right-to-left around
// the reduce stage, so the first middleware registered sees the action
// first.
func (d *Dispatcher) Use(mw Middleware) {
	if d == nil || mw == nil {
		return
	}
	d.middleware = append(d.middleware, mw)
	d.compiled = nil
}

// AddReducer binds a reducer to an (action type, slice) pair. Multiple
// reducers may bind the same pair; they run in registration order.
func (d *Dispatcher) AddReducer(actionType, slice string, fn Reducer) {
	if d == nil || actionType == "" || slice == "" || fn == nil {
		return
	}
	d.reducers[actionType] = append(d.reducers[actionType], reducerBinding{slice: slice, fn: fn})
}

// AddEffect registers a post-commit handler for an action type and
// returns its removal func.
func (d *Dispatcher) AddEffect(actionType string, fn Effect) func() {
	if d == nil || actionType == "" || fn == nil {
		return func() {}
	}
	d.nextEffectID++
	id := d.nextEffectID
	d.effects[actionType] = append(d.effects[actionType], effectEntry{id: id, fn: fn})
	return func() {
		entries := d.effects[actionType]
		for i, entry := range entries {
			if entry.id == id {
				d.effects[actionType] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// SetHook installs the action-log observer. One hook at a time.
func (d *Dispatcher) SetHook(hook Hook) {
	if d == nil {
		return
	}
	d.hook = hook
}

// Dispatch runs an action through middleware, reducers and effects.
// It returns true when the action committed, or was accepted onto the
// re-entrancy queue. Actions with an empty type are rejected.
func (d *Dispatcher) Dispatch(action Action) bool {
	if d == nil {
		return false
	}
	if action.Type == "" {
		d.logger.Printf("dispatch: dropped action with empty type")
		d.count("actions_rejected", 1)
		return false
	}
	if d.active {
		d.queue = append(d.queue, action)
		if len(d.queue) > d.queuePeak {
			d.queuePeak = len(d.queue)
			if d.metrics != nil {
				d.metrics.Store("action_queue_peak", uint64(d.queuePeak))
			}
		}
		logactions.Queued(context.Background(), d.publisher, d.tick(), logactions.QueuedPayload{
			ActionType: action.Type,
			QueueDepth: len(d.queue),
		})
		return true
	}
	d.active = true
	defer func() {
		d.active = false
		d.queue = nil
	}()
	result := d.process(action)
	for len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]
		d.process(next)
	}
	return result
}

// DispatchBatch dispatches several actions inside one store
// transaction so subscribers hear a single coalesced notification per
// touched slice. Returns true only if every action committed.
func (d *Dispatcher) DispatchBatch(batch []Action) bool {
	if d == nil {
		return false
	}
	if len(batch) == 0 {
		return true
	}
	all := true
	d.store.Transaction(func() {
		for _, action := range batch {
			if !d.Dispatch(action) {
				all = false
			}
		}
	})
	return all
}

// ActionLog returns a copy of the retained entries, oldest first.
func (d *Dispatcher) ActionLog() []Entry {
	if d == nil {
		return nil
	}
	return d.log.copyAll()
}

// ActionLogSince returns retained entries with Seq greater than since.
func (d *Dispatcher) ActionLogSince(since uint64) []Entry {
	if d == nil {
		return nil
	}
	return d.log.copySince(since)
}

// ActionLogStats reports append and drop counts.
func (d *Dispatcher) ActionLogStats() LogStats {
	if d == nil {
		return LogStats{}
	}
	return d.log.stats()
}

func (d *Dispatcher) process(action Action) bool {
	d.committed = false
	chain := d.chain()
	func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Printf("dispatch: middleware panic type=%s: %v", action.Type, r)
				d.count("actions_failed", 1)
				logactions.Failed(context.Background(), d.publisher, d.tick(), "", logactions.FailedPayload{
					ActionType: action.Type,
					Stage:      "middleware",
					Reason:     describePanic(r),
				})
			}
		}()
		chain(action)
	}()
	return d.committed
}

func (d *Dispatcher) chain() func(Action) {
	if d.compiled != nil {
		return d.compiled
	}
	handler := d.commit
	for i := len(d.middleware) - 1; i >= 0; i-- {
		mw := d.middleware[i]
		next := handler
		handler = func(action Action) {
			mw(action, d.store, next)
		}
	}
	d.compiled = handler
	return handler
}

// commit is the terminal chain stage: record the action, reduce it in
// one transaction, then run its effects outside the transaction.
func (d *Dispatcher) commit(action Action) {
	entry, trimmed := d.log.push(action, d.tick(), d.clock.Now())
	if trimmed {
		d.count("action_log_dropped", 1)
		d.trimBacklog++
		if d.trimBacklog >= d.log.capacity {
			logactions.LogTrimmed(context.Background(), d.publisher, entry.Tick, logactions.TrimmedPayload{
				Discarded: d.trimBacklog,
				Capacity:  d.log.capacity,
			})
			d.trimBacklog = 0
		}
	}
	if d.hook != nil {
		d.hook(entry)
	}

	touched := d.reduce(action)
	d.committed = true
	d.count("actions_dispatched", 1)
	logactions.Dispatched(context.Background(), d.publisher, entry.Tick, strconv.FormatUint(entry.Seq, 10), logactions.DispatchedPayload{
		ActionType: action.Type,
		Seq:        entry.Seq,
		Slices:     touched,
		QueueDepth: len(d.queue),
	})

	d.runEffects(action)
}

func (d *Dispatcher) reduce(action Action) []string {
	bindings := d.reducers[action.Type]
	if len(bindings) == 0 {
		return nil
	}
	var touched []string
	d.store.Transaction(func() {
		for _, binding := range bindings {
			record := d.store.GetSlice(binding.slice)
			if record == nil {
				continue
			}
			updates, ok := d.safeReduce(binding, record, action)
			if !ok || updates == nil {
				continue
			}
			if changed := d.store.Set(binding.slice, updates); len(changed) > 0 {
				touched = appendUnique(touched, binding.slice)
			}
		}
	})
	return touched
}

// safeReduce isolates reducer panics: the panicking reducer's update
// is discarded while sibling reducers still apply.
func (d *Dispatcher) safeReduce(binding reducerBinding, record map[string]any, action Action) (updates map[string]any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("dispatch: reducer panic type=%s slice=%s: %v", action.Type, binding.slice, r)
			d.count("reducer_panics", 1)
			logactions.Failed(context.Background(), d.publisher, d.tick(), "", logactions.FailedPayload{
				ActionType: action.Type,
				Stage:      "reducer",
				Reason:     describePanic(r),
			})
			updates, ok = nil, false
		}
	}()
	return binding.fn(record, action, d.store), true
}

func (d *Dispatcher) runEffects(action Action) {
	entries := d.effects[action.Type]
	if len(entries) == 0 {
		return
	}
	snapshot := append([]effectEntry(nil), entries...)
	for _, entry := range snapshot {
		d.safeEffect(action, entry.fn)
	}
}

func (d *Dispatcher) safeEffect(action Action, fn Effect) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("dispatch: effect panic type=%s: %v", action.Type, r)
			d.count("effect_panics", 1)
			logactions.Failed(context.Background(), d.publisher, d.tick(), "", logactions.FailedPayload{
				ActionType: action.Type,
				Stage:      "effect",
				Reason:     describePanic(r),
			})
		}
	}()
	fn(action, d.store, d.Dispatch)
}

func (d *Dispatcher) count(name string, delta uint64) {
	if d.metrics != nil {
		d.metrics.Add(name, delta)
	}
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}

func describePanic(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", r)
}
