// Package arsenal contains the concrete skill plugins shipped with
// the game, one behavior per file, plus the catalog the engine is
// wired with.
package arsenal

import (
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
)

// Skill ids.
const (
	RapidFire       = "rapid_fire"
	HeavyRounds     = "heavy_rounds"
	TitanPlating    = "titan_plating"
	GoldenTouch     = "golden_touch"
	StaticDischarge = "static_discharge"
	VampiricRounds  = "vampiric_rounds"
	AdrenalSurge    = "adrenal_surge"
	Fireball        = "fireball"
	NovaBurst       = "nova_burst"
	Overdrive       = "overdrive"
	AegisField      = "aegis_field"
)

// Catalog returns a factory for every shipped skill.
func Catalog() map[string]skills.Factory {
	return map[string]skills.Factory{
		RapidFire:       func() skills.Plugin { return &rapidFire{} },
		HeavyRounds:     func() skills.Plugin { return &heavyRounds{} },
		TitanPlating:    func() skills.Plugin { return &titanPlating{} },
		GoldenTouch:     func() skills.Plugin { return &goldenTouch{} },
		StaticDischarge: func() skills.Plugin { return &staticDischarge{} },
		VampiricRounds:  func() skills.Plugin { return &vampiricRounds{} },
		AdrenalSurge:    func() skills.Plugin { return &adrenalSurge{} },
		Fireball:        func() skills.Plugin { return &fireball{} },
		NovaBurst:       func() skills.Plugin { return &novaBurst{} },
		Overdrive:       func() skills.Plugin { return &overdrive{} },
		AegisField:      func() skills.Plugin { return &aegisField{} },
	}
}

// findEnemy scans a live-enemy list for an id. Lists are short and in
// spawn order, so a linear scan is fine.
func findEnemy(enemies []*entity.Enemy, id string) *entity.Enemy {
	for _, enemy := range enemies {
		if enemy.ID == id {
			return enemy
		}
	}
	return nil
}

// rankOf reads a skill's authoritative rank from the skills slice.
// Listeners use it because only Modifiers and OnCast receive rank
// directly.
func rankOf(host skills.Host, id string) int {
	if host == nil {
		return 1
	}
	ranks, _ := host.View().Get(slices.Skills, "ranks").(map[string]any)
	if ranks == nil {
		return 1
	}
	rank, _ := ranks[id].(float64)
	if rank < 1 {
		return 1
	}
	return int(rank)
}
