package arsenal

import "github.com/diegofer25/neon-siege-sub003/internal/skills"

// heavyRounds trades projectile speed for flat damage.
type heavyRounds struct {
	skills.BasePlugin
}

func (p *heavyRounds) Modifiers(rank int, _ skills.Context) []skills.Modifier {
	return []skills.Modifier{
		{Stat: skills.StatDamage, Op: skills.OpAdd, Value: 4 * float64(rank)},
		{Stat: skills.StatProjectileSpeed, Op: skills.OpMultiply, Value: 0.9},
	}
}
