package game

import (
	"context"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
	logwaves "github.com/diegofer25/neon-siege-sub003/logging/waves"
)

// Manager is the skills.Host: the sanctioned escape hatch through
// which plugins reach the live-entity layer and the pipeline.

func (m *Manager) View() store.View { return m.st }

func (m *Manager) Dispatch(action dispatch.Action) bool { return m.d.Dispatch(action) }

func (m *Manager) Emit(event string, payload any) { m.bus.Emit(event, payload) }

func (m *Manager) Tick() uint64 { return m.tick.Load() }

func (m *Manager) RandFloat() float64 { return m.rng.Float64() }

func (m *Manager) Player() *entity.Player { return &m.world.Player }

func (m *Manager) Enemies() []*entity.Enemy { return m.world.Enemies() }

// SpawnProjectile materializes a shot in the live world and announces
// it on the bus.
func (m *Manager) SpawnProjectile(spec entity.ProjectileSpec) *entity.Projectile {
	shot := m.world.SpawnProjectile(spec)
	if shot == nil {
		return nil
	}
	m.bus.Emit(events.ProjectileFired, events.ProjectileFiredPayload{
		ProjectileID: shot.ID,
		Angle:        shot.Angle,
		Damage:       shot.Damage,
	})
	return shot
}

// DamageEnemy applies damage to a live enemy and, on a kill, emits the
// death event and feeds the reward pipeline.
func (m *Manager) DamageEnemy(id string, amount float64, source string) bool {
	enemy := m.world.Enemy(id)
	if enemy == nil || amount <= 0 {
		return false
	}
	enemy.Health -= amount
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionDamageDealt,
		Payload: map[string]any{"amount": amount, "source": source},
	})
	if enemy.Health > 0 {
		return true
	}
	enemy.Alive = false
	m.bus.Emit(events.EnemyKilled, events.EnemyKilledPayload{
		EnemyID:   enemy.ID,
		X:         enemy.X,
		Y:         enemy.Y,
		EnemyType: enemy.Type,
	})
	gold := enemy.Bounty * m.ResolveStat(skills.StatGoldGain)
	logwaves.EnemyKilled(context.Background(), m.publisher, m.tick.Load(), logwaves.KillPayload{
		EnemyID: enemy.ID,
		XP:      enemy.XP,
		Gold:    int(gold),
	})
	m.d.Dispatch(dispatch.Action{
		Type: dispatch.ActionEnemyKilled,
		Payload: map[string]any{
			"enemyId":   enemy.ID,
			"enemyType": enemy.Type,
			"xp":        enemy.XP,
			"gold":      gold,
			"score":     10 + enemy.Bounty,
		},
	})
	return true
}

// HealPlayer routes healing through the action pipeline so the player
// slice stays reducer-owned.
func (m *Manager) HealPlayer(amount float64) {
	if amount <= 0 {
		return
	}
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionPlayerHealed,
		Payload: map[string]any{"amount": amount},
	})
}

var _ skills.Host = (*Manager)(nil)
