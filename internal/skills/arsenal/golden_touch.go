package arsenal

import "github.com/diegofer25/neon-siege-sub003/internal/skills"

// goldenTouch pins the pickup radius to a fixed reach, overriding
// whatever additive or multiplicative bonuses are in play, and pays
// out more gold per kill.
type goldenTouch struct {
	skills.BasePlugin
}

func (p *goldenTouch) Modifiers(rank int, _ skills.Context) []skills.Modifier {
	return []skills.Modifier{
		{Stat: skills.StatPickupRadius, Op: skills.OpSet, Value: 220 + 20*float64(rank)},
		{Stat: skills.StatGoldGain, Op: skills.OpMultiply, Value: 1 + 0.1*float64(rank)},
	}
}
