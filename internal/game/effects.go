package game

import (
	"context"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
	logskills "github.com/diegofer25/neon-siege-sub003/logging/skills"
	logwaves "github.com/diegofer25/neon-siege-sub003/logging/waves"
)

// registerEffects installs the post-commit side effects: reward
// chains, level-up cascades, engine synchronization and the structured
// event log. Effects re-dispatch through the FIFO queue, so every
// follow-up observes fully committed earlier state.
func (m *Manager) registerEffects() {
	d := m.d

	d.AddEffect(dispatch.ActionRunStart, func(action dispatch.Action, _ store.View, _ func(dispatch.Action) bool) {
		logwaves.RunStarted(context.Background(), m.publisher, m.tick.Load(), logwaves.RunPayload{
			RunID: payloadStr(action, "runId"),
			Seed:  payloadStr(action, "seed"),
		})
	})

	d.AddEffect(dispatch.ActionRunEnd, func(_ dispatch.Action, view store.View, send func(dispatch.Action) bool) {
		send(dispatch.Action{Type: dispatch.ActionProgressRecord, Payload: map[string]any{
			"kills": view.Get(slices.Run, "kills"),
			"wave":  view.Get(slices.Run, "wave"),
			"score": view.Get(slices.Run, "score"),
		}})
		runID, _ := view.Get(slices.Run, "runId").(string)
		wave, _ := view.Get(slices.Run, "wave").(float64)
		score, _ := view.Get(slices.Run, "score").(float64)
		logwaves.RunEnded(context.Background(), m.publisher, m.tick.Load(), logwaves.RunPayload{
			RunID: runID,
			Wave:  int(wave),
			Score: int(score),
		})
	})

	d.AddEffect(dispatch.ActionEnemyKilled, func(action dispatch.Action, view store.View, send func(dispatch.Action) bool) {
		if xp := payloadNum(action, "xp"); xp > 0 {
			send(dispatch.Action{Type: dispatch.ActionXPGrant, Payload: map[string]any{"amount": xp}})
		}
		if gold := payloadNum(action, "gold"); gold > 0 {
			send(dispatch.Action{Type: dispatch.ActionGoldAdd, Payload: map[string]any{"amount": gold}})
		}
		if score := payloadNum(action, "score"); score > 0 {
			send(dispatch.Action{Type: dispatch.ActionScoreAdd, Payload: map[string]any{"amount": score}})
		}
		send(dispatch.Action{Type: dispatch.ActionComboIncrement})

		remaining, _ := view.Get(slices.Wave, "remaining").(float64)
		state, _ := view.Get(slices.Wave, "state").(string)
		if remaining <= 0 && (state == slices.WaveStateActive || state == slices.WaveStateSpawning) {
			send(dispatch.Action{Type: dispatch.ActionWaveComplete, Payload: map[string]any{
				"wave": view.Get(slices.Wave, "number"),
			}})
		}
	})

	d.AddEffect(dispatch.ActionXPGrant, func(_ dispatch.Action, view store.View, send func(dispatch.Action) bool) {
		xp, _ := view.Get(slices.Skills, "xp").(float64)
		level, _ := view.Get(slices.Skills, "level").(float64)
		if xp >= XPForLevel(int(level)) {
			send(dispatch.Action{Type: dispatch.ActionLevelUp})
		}
	})

	// Level-ups cascade: a large grant can cross several thresholds,
	// each level committed before the next is considered.
	d.AddEffect(dispatch.ActionLevelUp, func(_ dispatch.Action, view store.View, send func(dispatch.Action) bool) {
		xp, _ := view.Get(slices.Skills, "xp").(float64)
		level, _ := view.Get(slices.Skills, "level").(float64)
		if xp >= XPForLevel(int(level)) {
			send(dispatch.Action{Type: dispatch.ActionLevelUp})
			return
		}
		m.EmitStatsSync()
	})

	d.AddEffect(dispatch.ActionWaveStart, func(action dispatch.Action, _ store.View, _ func(dispatch.Action) bool) {
		wave := int(payloadNum(action, "wave"))
		m.bus.Emit(events.WaveStarted, events.WaveStartedPayload{Wave: wave})
		logwaves.Started(context.Background(), m.publisher, m.tick.Load(), logwaves.WavePayload{
			Wave:    wave,
			Enemies: int(payloadNum(action, "enemies")),
		})
	})

	d.AddEffect(dispatch.ActionWaveComplete, func(action dispatch.Action, view store.View, send func(dispatch.Action) bool) {
		wave := int(payloadNum(action, "wave"))
		m.bus.Emit(events.WaveCompleted, events.WaveCompletedPayload{Wave: wave})
		logwaves.Completed(context.Background(), m.publisher, m.tick.Load(), logwaves.WavePayload{Wave: wave})
		if wave > 0 && wave%5 == 0 {
			send(dispatch.Action{Type: dispatch.ActionShardsAdd, Payload: map[string]any{
				"amount": float64(wave / 5),
			}})
		}
	})

	d.AddEffect(dispatch.ActionPlayerDamaged, func(action dispatch.Action, view store.View, send func(dispatch.Action) bool) {
		m.bus.Emit(events.PlayerDamaged, events.PlayerDamagedPayload{
			Damage: payloadNum(action, "damage"),
			Source: payloadStr(action, "source"),
		})
		send(dispatch.Action{Type: dispatch.ActionComboReset})
		if alive, _ := view.Get(slices.Player, "alive").(bool); !alive {
			active, _ := view.Get(slices.Run, "active").(bool)
			if active {
				send(dispatch.Action{Type: dispatch.ActionRunEnd})
				send(dispatch.Action{Type: dispatch.ActionPhaseSet, Payload: map[string]any{
					"phase": slices.PhaseGameOver,
				}})
			}
		}
	})

	// The skills slice is authoritative for equipment; the engine
	// follows it here so a restore that replays equip actions also
	// rebuilds live plugins.
	d.AddEffect(dispatch.ActionSkillEquip, func(action dispatch.Action, _ store.View, _ func(dispatch.Action) bool) {
		id := payloadStr(action, "skillId")
		rank := int(payloadNum(action, "rank"))
		if rank < 1 {
			rank = 1
		}
		cfg, _ := action.Payload["config"].(map[string]any)
		if err := m.engine.Equip(id, rank, cfg); err != nil {
			m.logger.Printf("game: equip %s failed: %v", id, err)
			logskills.Rejected(context.Background(), m.publisher, m.tick.Load(), logskills.RejectedPayload{
				SkillID:   id,
				Operation: "equip",
				Reason:    err.Error(),
			})
			return
		}
		logskills.Equipped(context.Background(), m.publisher, m.tick.Load(), logskills.EquipPayload{
			SkillID: id,
			Rank:    rank,
		})
		m.EmitStatsSync()
	})
	d.AddEffect(dispatch.ActionSkillUnequip, func(action dispatch.Action, _ store.View, _ func(dispatch.Action) bool) {
		id := payloadStr(action, "skillId")
		if err := m.engine.Unequip(id); err != nil {
			m.logger.Printf("game: unequip %s failed: %v", id, err)
			return
		}
		logskills.Unequipped(context.Background(), m.publisher, m.tick.Load(), id)
		m.EmitStatsSync()
	})
	d.AddEffect(dispatch.ActionSkillRankUp, func(action dispatch.Action, view store.View, _ func(dispatch.Action) bool) {
		id := payloadStr(action, "skillId")
		ranks, _ := view.Get(slices.Skills, "ranks").(map[string]any)
		rank, ok := ranks[id].(float64)
		if !ok {
			return
		}
		if err := m.engine.Equip(id, int(rank), nil); err != nil {
			m.logger.Printf("game: rank up %s failed: %v", id, err)
			return
		}
		m.EmitStatsSync()
	})

	d.AddEffect(dispatch.ActionAttributeAllocate, func(_ dispatch.Action, _ store.View, _ func(dispatch.Action) bool) {
		m.EmitStatsSync()
	})
}
