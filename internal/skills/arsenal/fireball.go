package arsenal

import (
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
)

// fireball is the baseline active: a single heavy projectile fired
// toward the cast target.
type fireball struct {
	skills.BasePlugin
}

func (p *fireball) OnCast(host skills.Host, info skills.CastInfo) bool {
	if host == nil {
		return false
	}
	player := host.Player()
	if player == nil {
		return false
	}
	shot := host.SpawnProjectile(entity.ProjectileSpec{
		X:      player.X,
		Y:      player.Y,
		Angle:  info.Angle,
		Speed:  420,
		Damage: 25 + 10*float64(info.Rank),
		Radius: 10,
		TTL:    2.5,
		Pierce: info.Rank / 2,
		Source: Fireball,
	})
	if shot == nil {
		return false
	}
	host.Emit(events.ProjectileCreated, events.ProjectileCreatedPayload{ProjectileID: shot.ID})
	return true
}
