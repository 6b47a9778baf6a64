package arsenal

import "github.com/diegofer25/neon-siege-sub003/internal/skills"

// rapidFire is the baseline passive: more shots per second.
type rapidFire struct {
	skills.BasePlugin
}

func (p *rapidFire) Modifiers(rank int, _ skills.Context) []skills.Modifier {
	return []skills.Modifier{
		{Stat: skills.StatFireRate, Op: skills.OpAdd, Value: 0.15 * float64(rank)},
	}
}
