// Package skills implements the plugin-based effect engine: a
// registry of skill factories, the equip/unequip lifecycle with exact
// bus-listener bookkeeping, and the fold of declarative stat modifiers
// into per-stat aggregates.
package skills

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
)

var (
	// ErrUnknownSkill marks an id with no registered factory.
	ErrUnknownSkill = errors.New("skills: unknown skill id")
	// ErrNotEquipped marks an operation on an inactive skill.
	ErrNotEquipped = errors.New("skills: skill not equipped")
)

// Factory builds a fresh plugin instance for one equip.
type Factory func() Plugin

// Deps carries the engine's collaborators. Bus and Host are required.
type Deps struct {
	Bus     *events.Bus
	Host    Host
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
}

type activeSkill struct {
	id     string
	rank   int
	cfg    map[string]any
	plugin Plugin
	offs   []func()
}

// Engine owns every equipped plugin instance. Equip order is
// significant: modifiers fold in equip order, which makes the set
// operation last-writer-wins deterministically.
type Engine struct {
	bus     *events.Bus
	host    Host
	logger  telemetry.Logger
	metrics telemetry.Metrics

	factories map[string]Factory
	active    map[string]*activeSkill
	order     []string
}

func NewEngine(deps Deps) (*Engine, error) {
	if deps.Bus == nil {
		return nil, errors.New("skills: nil event bus")
	}
	if deps.Host == nil {
		return nil, errors.New("skills: nil host")
	}
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	return &Engine{
		bus:       deps.Bus,
		host:      deps.Host,
		logger:    logger,
		metrics:   deps.Metrics,
		factories: make(map[string]Factory),
		active:    make(map[string]*activeSkill),
	}, nil
}

// Register installs a skill factory. Duplicate ids are an error; the
// catalog is fixed once wiring completes.
func (e *Engine) Register(id string, factory Factory) error {
	if e == nil {
		return errors.New("skills: nil engine")
	}
	if id == "" {
		return errors.New("skills: empty skill id")
	}
	if factory == nil {
		return fmt.Errorf("skills: nil factory for %q", id)
	}
	if _, exists := e.factories[id]; exists {
		return fmt.Errorf("skills: duplicate factory for %q", id)
	}
	e.factories[id] = factory
	return nil
}

// RegisterAll installs a whole catalog, in sorted id order so failures
// are deterministic.
func (e *Engine) RegisterAll(catalog map[string]Factory) error {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := e.Register(id, catalog[id]); err != nil {
			return err
		}
	}
	return nil
}

// Registered reports whether an id has a factory.
func (e *Engine) Registered(id string) bool {
	if e == nil {
		return false
	}
	_, ok := e.factories[id]
	return ok
}

// KnownIDs returns every registered id, sorted.
func (e *Engine) KnownIDs() []string {
	if e == nil {
		return nil
	}
	ids := make([]string, 0, len(e.factories))
	for id := range e.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Equip activates a skill at the given rank. cfg is optional
// equip-time tuning overlaid on the plugin's PlayerConfig. Equipping
// an already active id only updates its rank: no second instance, no
// duplicate OnEquip, no re-subscription, cfg untouched.
func (e *Engine) Equip(id string, rank int, cfg map[string]any) error {
	if e == nil {
		return errors.New("skills: nil engine")
	}
	if rank < 1 {
		rank = 1
	}
	if as, ok := e.active[id]; ok {
		as.rank = rank
		return nil
	}
	factory, ok := e.factories[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSkill, id)
	}
	plugin := factory()
	if plugin == nil {
		return fmt.Errorf("skills: factory for %q built nil plugin", id)
	}
	as := &activeSkill{id: id, rank: rank, cfg: cfg, plugin: plugin}

	listeners := e.safeListeners(as)
	names := make([]string, 0, len(listeners))
	for event := range listeners {
		names = append(names, event)
	}
	sort.Strings(names)
	for _, event := range names {
		handler := listeners[event]
		if handler == nil {
			continue
		}
		as.offs = append(as.offs, e.bus.On(event, handler))
	}

	e.safeHook(as, "OnEquip", func() { plugin.OnEquip(e.host) })
	e.active[id] = as
	e.order = append(e.order, id)
	if e.metrics != nil {
		e.metrics.Add("skills_equipped", 1)
	}
	return nil
}

// Unequip deactivates a skill, detaching exactly the bus listeners
// recorded at equip time.
func (e *Engine) Unequip(id string) error {
	if e == nil {
		return errors.New("skills: nil engine")
	}
	as, ok := e.active[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotEquipped, id)
	}
	for _, off := range as.offs {
		off()
	}
	e.safeHook(as, "OnUnequip", func() { as.plugin.OnUnequip(e.host) })
	delete(e.active, id)
	e.order = removeFromOrder(e.order, id)
	if e.metrics != nil {
		e.metrics.Add("skills_unequipped", 1)
	}
	return nil
}

// Reset unequips everything, newest first.
func (e *Engine) Reset() {
	if e == nil {
		return
	}
	order := append([]string(nil), e.order...)
	for i := len(order) - 1; i >= 0; i-- {
		_ = e.Unequip(order[i])
	}
}

// ActiveIDs returns the equipped ids in equip order.
func (e *Engine) ActiveIDs() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Rank returns the current rank of an equipped skill.
func (e *Engine) Rank(id string) (int, bool) {
	if e == nil {
		return 0, false
	}
	as, ok := e.active[id]
	if !ok {
		return 0, false
	}
	return as.rank, true
}

// AggregatedModifiers folds every active plugin's modifiers, in equip
// order, into one aggregate per stat.
func (e *Engine) AggregatedModifiers(ctx Context) map[string]StatAggregate {
	if e == nil {
		return nil
	}
	agg := make(map[string]StatAggregate)
	for _, id := range e.order {
		as := e.active[id]
		for _, m := range e.safeModifiers(as, ctx) {
			if m.Stat == "" {
				continue
			}
			a, ok := agg[m.Stat]
			if !ok {
				a = newAggregate()
			}
			agg[m.Stat] = a.fold(m)
		}
	}
	return agg
}

// PlayerConfigs collects non-stat player tuning per skill id. Entries
// from the equip-time cfg override what the plugin computes.
func (e *Engine) PlayerConfigs(ctx Context) map[string]map[string]any {
	if e == nil {
		return nil
	}
	out := make(map[string]map[string]any)
	for _, id := range e.order {
		as := e.active[id]
		var tuning map[string]any
		e.safeHook(as, "PlayerConfig", func() { tuning = as.plugin.PlayerConfig(as.rank, ctx) })
		if len(as.cfg) > 0 {
			merged := make(map[string]any, len(tuning)+len(as.cfg))
			for key, value := range tuning {
				merged[key] = value
			}
			for key, value := range as.cfg {
				merged[key] = value
			}
			tuning = merged
		}
		if len(tuning) > 0 {
			out[id] = tuning
		}
	}
	return out
}

// VisualOverrides collects renderer hints per skill id.
func (e *Engine) VisualOverrides(ctx Context) map[string]map[string]any {
	if e == nil {
		return nil
	}
	out := make(map[string]map[string]any)
	for _, id := range e.order {
		as := e.active[id]
		var visuals map[string]any
		e.safeHook(as, "VisualOverrides", func() { visuals = as.plugin.VisualOverrides(as.rank, ctx) })
		if len(visuals) > 0 {
			out[id] = visuals
		}
	}
	return out
}

// Cast activates an equipped skill. The plugin decides whether the
// cast happened; false also covers unknown or passive skills.
func (e *Engine) Cast(id string, info CastInfo) bool {
	if e == nil {
		return false
	}
	as, ok := e.active[id]
	if !ok {
		return false
	}
	info.Rank = as.rank
	result := false
	e.safeHook(as, "OnCast", func() { result = as.plugin.OnCast(e.host, info) })
	return result
}

// SaveStates collects the private state of every stateful plugin,
// keyed by id. Plugins without state are absent.
func (e *Engine) SaveStates() map[string]map[string]any {
	if e == nil {
		return nil
	}
	out := make(map[string]map[string]any)
	for _, id := range e.order {
		as := e.active[id]
		stateful, ok := as.plugin.(Stateful)
		if !ok {
			continue
		}
		var state map[string]any
		e.safeHook(as, "SaveState", func() { state = stateful.SaveState() })
		if len(state) > 0 {
			out[id] = store.CloneRecord(state)
		}
	}
	return out
}

// RestoreStates feeds saved state back into stateful plugins that are
// currently equipped. Unknown ids are ignored.
func (e *Engine) RestoreStates(states map[string]map[string]any) {
	if e == nil || len(states) == 0 {
		return
	}
	for _, id := range e.order {
		state, ok := states[id]
		if !ok {
			continue
		}
		as := e.active[id]
		stateful, ok := as.plugin.(Stateful)
		if !ok {
			continue
		}
		cloned := store.CloneRecord(state)
		e.safeHook(as, "RestoreState", func() { stateful.RestoreState(cloned) })
	}
}

func (e *Engine) safeListeners(as *activeSkill) map[string]events.Handler {
	var listeners map[string]events.Handler
	e.safeHook(as, "EventListeners", func() { listeners = as.plugin.EventListeners() })
	return listeners
}

func (e *Engine) safeModifiers(as *activeSkill, ctx Context) []Modifier {
	var mods []Modifier
	e.safeHook(as, "Modifiers", func() { mods = as.plugin.Modifiers(as.rank, ctx) })
	return mods
}

// safeHook runs one plugin capability with panic isolation, so a
// broken plugin cannot take the engine down.
func (e *Engine) safeHook(as *activeSkill, capability string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("skills: plugin %s panic in %s: %v", as.id, capability, r)
			if e.metrics != nil {
				e.metrics.Add("skill_plugin_panics", 1)
			}
		}
	}()
	fn()
}

func removeFromOrder(list []string, id string) []string {
	for i, existing := range list {
		if existing == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
