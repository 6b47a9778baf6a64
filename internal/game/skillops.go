package game

import (
	"context"
	"math"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
	logskills "github.com/diegofer25/neon-siege-sub003/logging/skills"
)

// castCooldowns maps skill ids to their cooldown in seconds. Ids
// absent here fall back to defaultCooldown; passives are never cast
// so they carry no entry.
var castCooldowns = map[string]float64{
	"fireball":   2.5,
	"nova_burst": 8,
	"overdrive":  30,
}

const defaultCooldown = 1.0

// GrantXP feeds experience into the pipeline; level-up cascades run as
// queued follow-up actions.
func (m *Manager) GrantXP(amount float64) {
	if amount <= 0 {
		return
	}
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionXPGrant,
		Payload: map[string]any{"amount": amount},
	})
}

// EquipSkill activates a skill through the action pipeline. The
// reducer updates the skills slice; the effect syncs the engine. cfg
// is optional equip-time tuning carried in the action payload.
func (m *Manager) EquipSkill(id string, rank int, cfg map[string]any) bool {
	if !m.engine.Registered(id) {
		m.logger.Printf("game: equip refused, unknown skill %q", id)
		return false
	}
	payload := map[string]any{"skillId": id, "rank": float64(rank)}
	if len(cfg) > 0 {
		payload["config"] = cfg
	}
	return m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionSkillEquip,
		Payload: payload,
	})
}

// UnequipSkill deactivates a skill through the action pipeline.
func (m *Manager) UnequipSkill(id string) bool {
	return m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionSkillUnequip,
		Payload: map[string]any{"skillId": id},
	})
}

// AllocateAttribute spends one skill point on an attribute.
func (m *Manager) AllocateAttribute(attr string) bool {
	if !validAttribute(attr) {
		m.logger.Printf("game: unknown attribute %q", attr)
		return false
	}
	return m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionAttributeAllocate,
		Payload: map[string]any{"attribute": attr},
	})
}

// CastSkill activates a skill: the cooldown gate first, then the
// plugin, then the default attack when no plugin claims the cast.
// Returns false only when the cooldown blocks the cast.
func (m *Manager) CastSkill(id string, targetX, targetY float64) bool {
	cooldowns, _ := m.st.Get(slices.Skills, "cooldowns").(map[string]any)
	if remaining, cooling := cooldowns[id].(float64); cooling && remaining > 0 {
		logskills.Rejected(context.Background(), m.publisher, m.tick.Load(), logskills.RejectedPayload{
			SkillID:   id,
			Operation: "cast",
			Reason:    "cooldown",
		})
		return false
	}

	player := &m.world.Player
	info := skills.CastInfo{
		TargetX: targetX,
		TargetY: targetY,
		Angle:   math.Atan2(targetY-player.Y, targetX-player.X),
	}
	handled := m.engine.Cast(id, info)
	if !handled {
		m.defaultAttack(info.Angle)
	}

	seconds, known := castCooldowns[id]
	if !known {
		seconds = defaultCooldown
	}
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionCooldownStart,
		Payload: map[string]any{"skillId": id, "seconds": seconds},
	})
	rank, _ := m.engine.Rank(id)
	logskills.Cast(context.Background(), m.publisher, m.tick.Load(), logskills.CastPayload{
		SkillID:    id,
		Rank:       rank,
		CooldownMS: seconds * 1000,
	})
	return true
}

// defaultAttack is the fallback when no plugin owns a cast: a plain
// shot with the resolved stat table.
func (m *Manager) defaultAttack(angle float64) {
	player := &m.world.Player
	m.SpawnProjectile(entity.ProjectileSpec{
		X:      player.X,
		Y:      player.Y,
		Angle:  angle,
		Speed:  m.ResolveStat(skills.StatProjectileSpeed),
		Damage: m.ResolveStat(skills.StatDamage),
		Radius: 6,
		TTL:    2,
		Source: "default_attack",
	})
}

// ResetRun tears the live run state down completely: plugins, bus
// listeners, world actors and the per-run slices. Progression,
// settings and ascension survive.
func (m *Manager) ResetRun() {
	m.engine.Reset()
	m.bus.Clear()
	m.world.Reset()
	m.resetWaveDirector()
	m.st.Transaction(func() {
		m.st.ResetSlice(slices.Phase)
		m.st.ResetSlice(slices.Run)
		m.st.ResetSlice(slices.Player)
		m.st.ResetSlice(slices.Skills)
		m.st.ResetSlice(slices.Combat)
		m.st.ResetSlice(slices.Entities)
		m.st.ResetSlice(slices.Wave)
	})
}

// ReequipFromSlices rebuilds engine state from the skills slice after
// a snapshot restore, then feeds plugin state back in.
func (m *Manager) ReequipFromSlices(pluginState map[string]map[string]any) {
	m.engine.Reset()
	equipped, _ := m.st.Get(slices.Skills, "equipped").([]any)
	ranks, _ := m.st.Get(slices.Skills, "ranks").(map[string]any)
	for _, raw := range equipped {
		id, ok := raw.(string)
		if !ok || id == "" {
			continue
		}
		rank, _ := ranks[id].(float64)
		if err := m.engine.Equip(id, int(rank), nil); err != nil {
			m.logger.Printf("game: re-equip %s failed: %v", id, err)
		}
	}
	m.engine.RestoreStates(pluginState)
	m.EmitStatsSync()
}
