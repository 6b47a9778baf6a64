package arsenal

import "github.com/diegofer25/neon-siege-sub003/internal/skills"

// aegisField projects a damage-reducing aura around the player. The
// aura is geometry plus a fraction, which the frame driver applies to
// incoming contact damage, so it rides on PlayerConfig rather than the
// flat stat table.
type aegisField struct {
	skills.BasePlugin
}

func (p *aegisField) PlayerConfig(rank int, _ skills.Context) map[string]any {
	return map[string]any{
		"auraRadius":      80 + 10*float64(rank),
		"damageReduction": 0.1 + 0.05*float64(rank),
	}
}

func (p *aegisField) VisualOverrides(rank int, _ skills.Context) map[string]any {
	return map[string]any{
		"auraRing":    true,
		"auraRadius":  80 + 10*float64(rank),
		"auraOpacity": 0.35,
	}
}
