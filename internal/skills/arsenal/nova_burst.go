package arsenal

import (
	"math"

	"github.com/diegofer25/neon-siege-sub003/internal/skills"
)

// novaBurst damages every enemy inside a ring around the player.
type novaBurst struct {
	skills.BasePlugin
}

func (p *novaBurst) OnCast(host skills.Host, info skills.CastInfo) bool {
	if host == nil {
		return false
	}
	player := host.Player()
	if player == nil {
		return false
	}
	radius := 140 + 20*float64(info.Rank)
	damage := 18 + 7*float64(info.Rank)
	for _, enemy := range host.Enemies() {
		if math.Hypot(enemy.X-player.X, enemy.Y-player.Y) > radius {
			continue
		}
		host.DamageEnemy(enemy.ID, damage, NovaBurst)
	}
	// The cast happens even into empty air; the ring is the effect.
	return true
}

func (p *novaBurst) VisualOverrides(rank int, _ skills.Context) map[string]any {
	return map[string]any{
		"ringRadius": 140 + 20*float64(rank),
		"ringColor":  "#7df9ff",
	}
}
