package arsenal

import (
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
)

// vampiricRounds heals the player a little on every kill.
type vampiricRounds struct {
	skills.BasePlugin
	host skills.Host
}

func (p *vampiricRounds) OnEquip(host skills.Host) {
	p.host = host
}

func (p *vampiricRounds) OnUnequip(skills.Host) {
	p.host = nil
}

func (p *vampiricRounds) EventListeners() map[string]events.Handler {
	return map[string]events.Handler{
		events.EnemyKilled: p.onEnemyKilled,
	}
}

func (p *vampiricRounds) onEnemyKilled(payload any) {
	if _, ok := payload.(events.EnemyKilledPayload); !ok {
		return
	}
	if p.host == nil {
		return
	}
	rank := rankOf(p.host, VampiricRounds)
	p.host.HealPlayer(1 + float64(rank))
}
