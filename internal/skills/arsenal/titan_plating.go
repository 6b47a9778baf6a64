package arsenal

import "github.com/diegofer25/neon-siege-sub003/internal/skills"

// titanPlating scales max health at a small mobility cost.
type titanPlating struct {
	skills.BasePlugin
}

func (p *titanPlating) Modifiers(rank int, _ skills.Context) []skills.Modifier {
	return []skills.Modifier{
		{Stat: skills.StatMaxHealth, Op: skills.OpMultiply, Value: 1 + 0.1*float64(rank)},
		{Stat: skills.StatMoveSpeed, Op: skills.OpMultiply, Value: 0.95},
	}
}
