package arsenal

import (
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
)

// adrenalSurgeWindow is how long the burst lasts, in ticks.
const adrenalSurgeWindow = 180

// adrenalSurge opens a short damage burst window every time the
// player takes a hit. The window itself is exposed through
// PlayerConfig because it is time-bounded state, not a flat stat.
type adrenalSurge struct {
	skills.BasePlugin
	host       skills.Host
	burstUntil uint64
}

func (p *adrenalSurge) OnEquip(host skills.Host) {
	p.host = host
}

func (p *adrenalSurge) OnUnequip(skills.Host) {
	p.host = nil
	p.burstUntil = 0
}

func (p *adrenalSurge) EventListeners() map[string]events.Handler {
	return map[string]events.Handler{
		events.PlayerDamaged: p.onPlayerDamaged,
	}
}

func (p *adrenalSurge) onPlayerDamaged(payload any) {
	if _, ok := payload.(events.PlayerDamagedPayload); !ok {
		return
	}
	if p.host == nil {
		return
	}
	p.burstUntil = p.host.Tick() + adrenalSurgeWindow
}

func (p *adrenalSurge) Modifiers(rank int, ctx skills.Context) []skills.Modifier {
	if ctx.Tick >= p.burstUntil {
		return nil
	}
	return []skills.Modifier{
		{Stat: skills.StatDamage, Op: skills.OpMultiply, Value: 1.2 + 0.05*float64(rank)},
	}
}

func (p *adrenalSurge) PlayerConfig(rank int, ctx skills.Context) map[string]any {
	if ctx.Tick >= p.burstUntil {
		return nil
	}
	return map[string]any{
		"burstUntilTick": float64(p.burstUntil),
		"burstRank":      float64(rank),
	}
}

func (p *adrenalSurge) SaveState() map[string]any {
	if p.burstUntil == 0 {
		return nil
	}
	return map[string]any{"burstUntil": float64(p.burstUntil)}
}

func (p *adrenalSurge) RestoreState(state map[string]any) {
	if until, ok := state["burstUntil"].(float64); ok && until >= 0 {
		p.burstUntil = uint64(until)
	}
}
