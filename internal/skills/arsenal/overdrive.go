package arsenal

import (
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
)

// overdriveDuration is how long the buff holds, in ticks.
const overdriveDuration = 600

// overdrive is the ultimate: a timed global buff to damage and fire
// rate, with a renderer glow while it runs. The active window is
// private state and survives save/restore.
type overdrive struct {
	skills.BasePlugin
	host        skills.Host
	activeUntil uint64
}

func (p *overdrive) OnEquip(host skills.Host) {
	p.host = host
}

func (p *overdrive) OnUnequip(skills.Host) {
	p.host = nil
	p.activeUntil = 0
}

func (p *overdrive) OnCast(host skills.Host, info skills.CastInfo) bool {
	if host == nil {
		return false
	}
	if host.Tick() < p.activeUntil {
		// Still running; refuse so the caller keeps the cooldown.
		return false
	}
	p.activeUntil = host.Tick() + overdriveDuration
	return true
}

func (p *overdrive) Modifiers(rank int, ctx skills.Context) []skills.Modifier {
	if ctx.Tick >= p.activeUntil {
		return nil
	}
	return []skills.Modifier{
		{Stat: skills.StatDamage, Op: skills.OpMultiply, Value: 1.5 + 0.1*float64(rank)},
		{Stat: skills.StatFireRate, Op: skills.OpMultiply, Value: 1.3 + 0.05*float64(rank)},
	}
}

func (p *overdrive) VisualOverrides(_ int, ctx skills.Context) map[string]any {
	if ctx.Tick >= p.activeUntil {
		return nil
	}
	return map[string]any{
		"playerGlow":  "#ff3b3b",
		"trailLength": float64(2),
	}
}

func (p *overdrive) SaveState() map[string]any {
	if p.activeUntil == 0 {
		return nil
	}
	return map[string]any{"activeUntil": float64(p.activeUntil)}
}

func (p *overdrive) RestoreState(state map[string]any) {
	if until, ok := state["activeUntil"].(float64); ok && until >= 0 {
		p.activeUntil = uint64(until)
	}
}
