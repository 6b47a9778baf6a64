package skills

import (
	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
)

// Context is the read-only situation a plugin sees when asked for its
// modifiers or configs.
type Context struct {
	Tick  uint64
	Level int
	Wave  int
	View  store.View
}

// CastInfo describes one activation of an active skill.
type CastInfo struct {
	Rank    int
	TargetX float64
	TargetY float64
	Angle   float64
}

// Host is the live-game surface plugins act through. It is the one
// sanctioned escape hatch from declarative modifiers into the entity
// layer; the game orchestrator implements it.
type Host interface {
	View() store.View
	Dispatch(action dispatch.Action) bool
	Emit(event string, payload any)
	Tick() uint64
	RandFloat() float64

	Player() *entity.Player
	Enemies() []*entity.Enemy
	SpawnProjectile(spec entity.ProjectileSpec) *entity.Projectile
	DamageEnemy(id string, amount float64, source string) bool
	HealPlayer(amount float64)
}

// Plugin is the fixed capability surface of a skill. Embed BasePlugin
// and override what the skill actually does.
type Plugin interface {
	// Modifiers returns the declarative stat contributions for the
	// given rank. Called on every aggregation pass.
	Modifiers(rank int, ctx Context) []Modifier
	// EventListeners returns bus handlers to attach for the lifetime of
	// the equip. Keys are event vocabulary names.
	EventListeners() map[string]events.Handler
	// OnEquip runs once when the skill becomes active.
	OnEquip(host Host)
	// OnUnequip runs once when the skill is removed.
	OnUnequip(host Host)
	// OnCast performs an activation. Returning false tells the caller
	// the cast did not happen (wrong kind of skill, or refused).
	OnCast(host Host, info CastInfo) bool
	// PlayerConfig contributes non-stat player tuning (aura sizes,
	// burst windows). Nil means no contribution.
	PlayerConfig(rank int, ctx Context) map[string]any
	// VisualOverrides contributes renderer hints. Nil means none.
	VisualOverrides(rank int, ctx Context) map[string]any
}

// Stateful is the optional capability a plugin implements to carry
// private state across save and restore.
type Stateful interface {
	SaveState() map[string]any
	RestoreState(state map[string]any)
}

// BasePlugin is the no-op implementation of every capability.
type BasePlugin struct{}

func (BasePlugin) Modifiers(int, Context) []Modifier { return nil }

func (BasePlugin) EventListeners() map[string]events.Handler { return nil }

func (BasePlugin) OnEquip(Host) {}

func (BasePlugin) OnUnequip(Host) {}

func (BasePlugin) OnCast(Host, CastInfo) bool { return false }

func (BasePlugin) PlayerConfig(int, Context) map[string]any { return nil }

func (BasePlugin) VisualOverrides(int, Context) map[string]any { return nil }

var _ Plugin = BasePlugin{}
