package arsenal

import (
	"math"

	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
)

// staticDischarge arcs a fraction of every third hit's damage to the
// nearest other enemy. The hit counter is private plugin state and
// survives save/restore.
type staticDischarge struct {
	skills.BasePlugin
	host skills.Host
	hits float64
}

func (p *staticDischarge) OnEquip(host skills.Host) {
	p.host = host
}

func (p *staticDischarge) OnUnequip(skills.Host) {
	p.host = nil
}

func (p *staticDischarge) EventListeners() map[string]events.Handler {
	return map[string]events.Handler{
		events.EnemyHit: p.onEnemyHit,
	}
}

func (p *staticDischarge) onEnemyHit(payload any) {
	hit, ok := payload.(events.EnemyHitPayload)
	if !ok || p.host == nil {
		return
	}
	p.hits++
	if math.Mod(p.hits, 3) != 0 {
		return
	}
	source := p.host.Enemies()
	struck := findEnemy(source, hit.EnemyID)
	if struck == nil {
		return
	}
	var nearestID string
	nearest := math.MaxFloat64
	for _, enemy := range source {
		if enemy.ID == hit.EnemyID {
			continue
		}
		d := math.Hypot(enemy.X-struck.X, enemy.Y-struck.Y)
		if d < nearest {
			nearest = d
			nearestID = enemy.ID
		}
	}
	if nearestID == "" {
		return
	}
	rank := rankOf(p.host, StaticDischarge)
	arc := hit.Damage * (0.3 + 0.05*float64(rank))
	p.host.DamageEnemy(nearestID, arc, StaticDischarge)
}

func (p *staticDischarge) SaveState() map[string]any {
	return map[string]any{"hits": p.hits}
}

func (p *staticDischarge) RestoreState(state map[string]any) {
	if hits, ok := state["hits"].(float64); ok {
		p.hits = hits
	}
}
