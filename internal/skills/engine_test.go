package skills_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
)

type testLog struct {
	lines []string
}

func (l *testLog) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// fakeHost satisfies skills.Host with just enough behavior for the
// engine tests; plugins under test only touch the pieces they need.
type fakeHost struct {
	world  *entity.World
	bus    *events.Bus
	tick   uint64
	healed float64
	damage map[string]float64
}

func newFakeHost(bus *events.Bus) *fakeHost {
	return &fakeHost{
		world:  entity.NewWorld(),
		bus:    bus,
		damage: make(map[string]float64),
	}
}

func (h *fakeHost) View() store.View                     { return nil }
func (h *fakeHost) Dispatch(dispatch.Action) bool        { return true }
func (h *fakeHost) Emit(event string, payload any)       { h.bus.Emit(event, payload) }
func (h *fakeHost) Tick() uint64                         { return h.tick }
func (h *fakeHost) RandFloat() float64                   { return 0.5 }
func (h *fakeHost) Player() *entity.Player               { return &h.world.Player }
func (h *fakeHost) Enemies() []*entity.Enemy             { return h.world.Enemies() }
func (h *fakeHost) HealPlayer(amount float64)            { h.healed += amount }
func (h *fakeHost) SpawnProjectile(spec entity.ProjectileSpec) *entity.Projectile {
	return h.world.SpawnProjectile(spec)
}
func (h *fakeHost) DamageEnemy(id string, amount float64, _ string) bool {
	h.damage[id] += amount
	return true
}

type scriptedPlugin struct {
	skills.BasePlugin
	mods      []skills.Modifier
	listeners map[string]events.Handler
	equips    int
	unequips  int
	castOK    bool
	casts     []skills.CastInfo
}

func (p *scriptedPlugin) Modifiers(int, skills.Context) []skills.Modifier { return p.mods }
func (p *scriptedPlugin) EventListeners() map[string]events.Handler       { return p.listeners }
func (p *scriptedPlugin) OnEquip(skills.Host)                             { p.equips++ }
func (p *scriptedPlugin) OnUnequip(skills.Host)                           { p.unequips++ }
func (p *scriptedPlugin) OnCast(_ skills.Host, info skills.CastInfo) bool {
	p.casts = append(p.casts, info)
	return p.castOK
}

func newEngine(t *testing.T) (*skills.Engine, *events.Bus, *fakeHost) {
	t.Helper()
	bus := events.NewBus(&testLog{}, nil)
	host := newFakeHost(bus)
	engine, err := skills.NewEngine(skills.Deps{Bus: bus, Host: host, Logger: &testLog{}})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine, bus, host
}

func TestEquipSubscribesListenersOnce(t *testing.T) {
	engine, bus, _ := newEngine(t)
	plugin := &scriptedPlugin{
		listeners: map[string]events.Handler{
			events.EnemyHit: func(any) {},
		},
	}
	if err := engine.Register("scripted", func() skills.Plugin { return plugin }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.Equip("scripted", 1, nil); err != nil {
		t.Fatalf("equip: %v", err)
	}
	if got := bus.ListenerCount(events.EnemyHit); got != 1 {
		t.Fatalf("expected 1 listener after equip, got %d", got)
	}
	if plugin.equips != 1 {
		t.Fatalf("expected 1 OnEquip, got %d", plugin.equips)
	}

	// Re-equip only updates rank: no extra subscription, no second OnEquip.
	if err := engine.Equip("scripted", 3, nil); err != nil {
		t.Fatalf("re-equip: %v", err)
	}
	if got := bus.ListenerCount(events.EnemyHit); got != 1 {
		t.Fatalf("expected 1 listener after re-equip, got %d", got)
	}
	if plugin.equips != 1 {
		t.Fatalf("expected OnEquip to stay at 1, got %d", plugin.equips)
	}
	if rank, ok := engine.Rank("scripted"); !ok || rank != 3 {
		t.Fatalf("expected rank 3, got %d ok=%v", rank, ok)
	}
}

func TestUnequipDetachesAllListeners(t *testing.T) {
	engine, bus, _ := newEngine(t)
	plugin := &scriptedPlugin{
		listeners: map[string]events.Handler{
			events.EnemyHit:    func(any) {},
			events.EnemyKilled: func(any) {},
		},
	}
	if err := engine.Register("scripted", func() skills.Plugin { return plugin }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.Equip("scripted", 1, nil); err != nil {
		t.Fatalf("equip: %v", err)
	}
	if err := engine.Unequip("scripted"); err != nil {
		t.Fatalf("unequip: %v", err)
	}
	for _, event := range []string{events.EnemyHit, events.EnemyKilled} {
		if got := bus.ListenerCount(event); got != 0 {
			t.Fatalf("expected 0 listeners on %q after unequip, got %d", event, got)
		}
	}
	if plugin.unequips != 1 {
		t.Fatalf("expected 1 OnUnequip, got %d", plugin.unequips)
	}
	if err := engine.Unequip("scripted"); !errors.Is(err, skills.ErrNotEquipped) {
		t.Fatalf("expected ErrNotEquipped on double unequip, got %v", err)
	}
}

func TestAggregateSingleAdd(t *testing.T) {
	engine, _, _ := newEngine(t)
	plugin := &scriptedPlugin{
		mods: []skills.Modifier{{Stat: skills.StatFireRate, Op: skills.OpAdd, Value: 0.15}},
	}
	if err := engine.Register("passive", func() skills.Plugin { return plugin }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.Equip("passive", 1, nil); err != nil {
		t.Fatalf("equip: %v", err)
	}
	agg := engine.AggregatedModifiers(skills.Context{})
	got, ok := agg[skills.StatFireRate]
	if !ok {
		t.Fatalf("expected fireRate aggregate, got %v", agg)
	}
	if got.Add != 0.15 || got.Multiply != 1 || got.Set != nil {
		t.Fatalf("expected {Add:0.15 Multiply:1 Set:nil}, got %+v", got)
	}
}

func TestResolveStatValue(t *testing.T) {
	agg := skills.FoldModifiers(nil, []skills.Modifier{
		{Stat: "damage", Op: skills.OpAdd, Value: 5},
		{Stat: "damage", Op: skills.OpMultiply, Value: 2},
	})
	if got := skills.ResolveStatValue("damage", 10, agg); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
	if got := skills.ResolveStatValue("untouched", 7, agg); got != 7 {
		t.Fatalf("expected base 7 for untouched stat, got %v", got)
	}
}

func TestAggregateSetTieBreak(t *testing.T) {
	engine, _, _ := newEngine(t)
	first := &scriptedPlugin{
		mods: []skills.Modifier{{Stat: skills.StatPickupRadius, Op: skills.OpSet, Value: 100}},
	}
	second := &scriptedPlugin{
		mods: []skills.Modifier{{Stat: skills.StatPickupRadius, Op: skills.OpSet, Value: 250}},
	}
	if err := engine.Register("first", func() skills.Plugin { return first }); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := engine.Register("second", func() skills.Plugin { return second }); err != nil {
		t.Fatalf("register second: %v", err)
	}
	if err := engine.Equip("first", 1, nil); err != nil {
		t.Fatalf("equip first: %v", err)
	}
	if err := engine.Equip("second", 1, nil); err != nil {
		t.Fatalf("equip second: %v", err)
	}

	agg := engine.AggregatedModifiers(skills.Context{})
	if agg[skills.StatPickupRadius].Set == nil || *agg[skills.StatPickupRadius].Set != 250 {
		t.Fatalf("expected last equip to win set, got %+v", agg[skills.StatPickupRadius])
	}
	if got := skills.ResolveStatValue(skills.StatPickupRadius, 40, agg); got != 250 {
		t.Fatalf("expected set override 250, got %v", got)
	}

	// Unequip the later plugin; the earlier set becomes the winner again.
	if err := engine.Unequip("second"); err != nil {
		t.Fatalf("unequip second: %v", err)
	}
	agg = engine.AggregatedModifiers(skills.Context{})
	if agg[skills.StatPickupRadius].Set == nil || *agg[skills.StatPickupRadius].Set != 100 {
		t.Fatalf("expected surviving set 100, got %+v", agg[skills.StatPickupRadius])
	}
}

func TestCastDelegatesWithCurrentRank(t *testing.T) {
	engine, _, _ := newEngine(t)
	plugin := &scriptedPlugin{castOK: true}
	if err := engine.Register("active", func() skills.Plugin { return plugin }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if engine.Cast("active", skills.CastInfo{}) {
		t.Fatalf("expected cast on unequipped skill to report false")
	}
	if err := engine.Equip("active", 2, nil); err != nil {
		t.Fatalf("equip: %v", err)
	}
	if !engine.Cast("active", skills.CastInfo{Angle: 1.5}) {
		t.Fatalf("expected cast to report true")
	}
	if len(plugin.casts) != 1 || plugin.casts[0].Rank != 2 || plugin.casts[0].Angle != 1.5 {
		t.Fatalf("unexpected cast info: %+v", plugin.casts)
	}
}

func TestResetUnequipsEverything(t *testing.T) {
	engine, bus, _ := newEngine(t)
	for i := 0; i < 3; i++ {
		plugin := &scriptedPlugin{
			listeners: map[string]events.Handler{events.Tick: func(any) {}},
		}
		id := fmt.Sprintf("skill-%d", i)
		if err := engine.Register(id, func() skills.Plugin { return plugin }); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
		if err := engine.Equip(id, 1, nil); err != nil {
			t.Fatalf("equip %s: %v", id, err)
		}
	}
	engine.Reset()
	if got := engine.ActiveIDs(); len(got) != 0 {
		t.Fatalf("expected no active skills after reset, got %v", got)
	}
	if got := bus.ListenerCount(events.Tick); got != 0 {
		t.Fatalf("expected 0 tick listeners after reset, got %d", got)
	}
}

type statefulPlugin struct {
	scriptedPlugin
	state map[string]any
}

func (p *statefulPlugin) SaveState() map[string]any { return p.state }

func (p *statefulPlugin) RestoreState(state map[string]any) { p.state = state }

func TestSaveAndRestoreStates(t *testing.T) {
	engine, _, _ := newEngine(t)
	stateful := &statefulPlugin{state: map[string]any{"hits": float64(7)}}
	plain := &scriptedPlugin{}
	if err := engine.Register("stateful", func() skills.Plugin { return stateful }); err != nil {
		t.Fatalf("register stateful: %v", err)
	}
	if err := engine.Register("plain", func() skills.Plugin { return plain }); err != nil {
		t.Fatalf("register plain: %v", err)
	}
	if err := engine.Equip("stateful", 1, nil); err != nil {
		t.Fatalf("equip stateful: %v", err)
	}
	if err := engine.Equip("plain", 1, nil); err != nil {
		t.Fatalf("equip plain: %v", err)
	}

	states := engine.SaveStates()
	want := map[string]map[string]any{"stateful": {"hits": float64(7)}}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Fatalf("unexpected saved states (-want +got):\n%s", diff)
	}

	stateful.state = nil
	engine.RestoreStates(states)
	if hits, ok := stateful.state["hits"].(float64); !ok || hits != 7 {
		t.Fatalf("expected restored hits=7, got %v", stateful.state)
	}
}

type panickyPlugin struct {
	skills.BasePlugin
}

func (p *panickyPlugin) Modifiers(int, skills.Context) []skills.Modifier {
	panic("bad plugin")
}

func TestPluginPanicIsIsolated(t *testing.T) {
	bus := events.NewBus(&testLog{}, nil)
	host := newFakeHost(bus)
	warns := &testLog{}
	engine, err := skills.NewEngine(skills.Deps{Bus: bus, Host: host, Logger: warns})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	good := &scriptedPlugin{
		mods: []skills.Modifier{{Stat: skills.StatDamage, Op: skills.OpAdd, Value: 3}},
	}
	if err := engine.Register("bad", func() skills.Plugin { return &panickyPlugin{} }); err != nil {
		t.Fatalf("register bad: %v", err)
	}
	if err := engine.Register("good", func() skills.Plugin { return good }); err != nil {
		t.Fatalf("register good: %v", err)
	}
	if err := engine.Equip("bad", 1, nil); err != nil {
		t.Fatalf("equip bad: %v", err)
	}
	if err := engine.Equip("good", 1, nil); err != nil {
		t.Fatalf("equip good: %v", err)
	}

	agg := engine.AggregatedModifiers(skills.Context{})
	if agg[skills.StatDamage].Add != 3 {
		t.Fatalf("expected good plugin to still aggregate, got %+v", agg[skills.StatDamage])
	}
	if len(warns.lines) == 0 {
		t.Fatalf("expected a logged panic warning")
	}
}
