package game

import (
	"math"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
)

func payloadNum(action dispatch.Action, key string) float64 {
	f, _ := action.Payload[key].(float64)
	return f
}

func payloadStr(action dispatch.Action, key string) string {
	s, _ := action.Payload[key].(string)
	return s
}

func recNum(record map[string]any, key string) float64 {
	f, _ := record[key].(float64)
	return f
}

// cloneStringMap copies a nested record so reducers return fresh
// composites; the store compares composites by reference.
func cloneStringMap(value any) map[string]any {
	record, _ := value.(map[string]any)
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}

// registerReducers installs the reducer table: every action type of
// the vocabulary bound to the slices it owns. Reducers are pure
// partial-update functions; anything cross-slice or stateful lives in
// the effect table instead.
func (m *Manager) registerReducers() {
	d := m.d

	d.AddReducer(dispatch.ActionPhaseSet, slices.Phase, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		next := payloadStr(action, "phase")
		if next == "" {
			return nil
		}
		return map[string]any{
			"current":  next,
			"previous": record["current"],
			"since":    float64(m.tick.Load()),
		}
	})

	d.AddReducer(dispatch.ActionRunStart, slices.Run, func(_ map[string]any, action dispatch.Action, _ store.View) map[string]any {
		return map[string]any{
			"active":    true,
			"runId":     payloadStr(action, "runId"),
			"seed":      payloadStr(action, "seed"),
			"startedAt": payloadNum(action, "startedAt"),
			"wave":      float64(0),
			"score":     float64(0),
			"kills":     float64(0),
			"gold":      float64(0),
			"duration":  float64(0),
		}
	})
	d.AddReducer(dispatch.ActionRunEnd, slices.Run, func(record map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		if active, _ := record["active"].(bool); !active {
			return nil
		}
		duration := float64(m.clock.Now().UnixMilli()) - recNum(record, "startedAt")
		if duration < 0 {
			duration = 0
		}
		return map[string]any{"active": false, "duration": duration}
	})

	d.AddReducer(dispatch.ActionScoreAdd, slices.Run, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		amount := payloadNum(action, "amount")
		if amount == 0 {
			return nil
		}
		return map[string]any{"score": recNum(record, "score") + amount}
	})
	d.AddReducer(dispatch.ActionGoldAdd, slices.Run, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		amount := payloadNum(action, "amount")
		if amount <= 0 {
			return nil
		}
		return map[string]any{"gold": recNum(record, "gold") + amount}
	})
	d.AddReducer(dispatch.ActionGoldSpend, slices.Run, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		amount := payloadNum(action, "amount")
		gold := recNum(record, "gold")
		if amount <= 0 || amount > gold {
			return nil
		}
		return map[string]any{"gold": gold - amount}
	})

	d.AddReducer(dispatch.ActionEnemyKilled, slices.Run, func(record map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"kills": recNum(record, "kills") + 1}
	})
	d.AddReducer(dispatch.ActionEnemyKilled, slices.Combat, func(record map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"killsThisWave": recNum(record, "killsThisWave") + 1}
	})
	d.AddReducer(dispatch.ActionEnemyKilled, slices.Wave, func(record map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		remaining := recNum(record, "remaining") - 1
		if remaining < 0 {
			remaining = 0
		}
		return map[string]any{"remaining": remaining}
	})

	d.AddReducer(dispatch.ActionPlayerDamaged, slices.Player, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		damage := payloadNum(action, "damage")
		if damage <= 0 {
			return nil
		}
		shield := recNum(record, "shield")
		health := recNum(record, "health")
		absorbed := math.Min(shield, damage)
		shield -= absorbed
		health -= damage - absorbed
		if health > 0 {
			return map[string]any{"health": health, "shield": shield}
		}
		lives := recNum(record, "lives")
		if lives > 1 {
			return map[string]any{
				"health": recNum(record, "maxHealth"),
				"shield": float64(0),
				"lives":  lives - 1,
			}
		}
		return map[string]any{
			"health": float64(0),
			"shield": float64(0),
			"lives":  float64(0),
			"alive":  false,
		}
	})
	d.AddReducer(dispatch.ActionPlayerDamaged, slices.Combat, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		damage := payloadNum(action, "damage")
		if damage <= 0 {
			return nil
		}
		return map[string]any{"damageTaken": recNum(record, "damageTaken") + damage}
	})
	d.AddReducer(dispatch.ActionPlayerHealed, slices.Player, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		amount := payloadNum(action, "amount")
		if amount <= 0 {
			return nil
		}
		health := math.Min(recNum(record, "health")+amount, recNum(record, "maxHealth"))
		return map[string]any{"health": health}
	})
	d.AddReducer(dispatch.ActionShieldSet, slices.Player, func(_ map[string]any, action dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"shield": math.Max(0, payloadNum(action, "value"))}
	})

	d.AddReducer(dispatch.ActionWaveStart, slices.Wave, func(_ map[string]any, action dispatch.Action, _ store.View) map[string]any {
		return map[string]any{
			"number":    payloadNum(action, "wave"),
			"state":     slices.WaveStateSpawning,
			"remaining": payloadNum(action, "enemies"),
			"budget":    payloadNum(action, "enemies"),
			"startedAt": float64(m.tick.Load()),
			"bonus":     payloadNum(action, "wave") != 0 && int(payloadNum(action, "wave"))%5 == 0,
		}
	})
	d.AddReducer(dispatch.ActionWaveStart, slices.Run, func(_ map[string]any, action dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"wave": payloadNum(action, "wave")}
	})
	d.AddReducer(dispatch.ActionWaveStart, slices.Combat, func(_ map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"killsThisWave": float64(0)}
	})
	d.AddReducer(dispatch.ActionWaveProgress, slices.Wave, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		updates := map[string]any{"state": slices.WaveStateActive}
		if remaining, ok := action.Payload["remaining"].(float64); ok {
			updates["remaining"] = remaining
		}
		return updates
	})
	d.AddReducer(dispatch.ActionWaveComplete, slices.Wave, func(_ map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		return map[string]any{"state": slices.WaveStateCleared, "remaining": float64(0)}
	})

	d.AddReducer(dispatch.ActionXPGrant, slices.Skills, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		amount := payloadNum(action, "amount")
		if amount <= 0 {
			return nil
		}
		return map[string]any{"xp": recNum(record, "xp") + amount}
	})
	d.AddReducer(dispatch.ActionLevelUp, slices.Skills, func(record map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		level := recNum(record, "level")
		need := XPForLevel(int(level))
		xp := recNum(record, "xp")
		if xp < need {
			return nil
		}
		return map[string]any{
			"level":  level + 1,
			"xp":     xp - need,
			"points": recNum(record, "points") + 1,
		}
	})
	d.AddReducer(dispatch.ActionAttributeAllocate, slices.Skills, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		attr := payloadStr(action, "attribute")
		if !validAttribute(attr) {
			return nil
		}
		points := recNum(record, "points")
		if points < 1 {
			return nil
		}
		attrs := cloneStringMap(record["attributes"])
		current, _ := attrs[attr].(float64)
		attrs[attr] = current + 1
		return map[string]any{"points": points - 1, "attributes": attrs}
	})

	d.AddReducer(dispatch.ActionSkillEquip, slices.Skills, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		id := payloadStr(action, "skillId")
		if id == "" {
			return nil
		}
		rank := payloadNum(action, "rank")
		if rank < 1 {
			rank = 1
		}
		equipped, _ := record["equipped"].([]any)
		next := make([]any, 0, len(equipped)+1)
		present := false
		for _, existing := range equipped {
			next = append(next, existing)
			if existing == any(id) {
				present = true
			}
		}
		if !present {
			next = append(next, id)
		}
		ranks := cloneStringMap(record["ranks"])
		ranks[id] = rank
		return map[string]any{"equipped": next, "ranks": ranks}
	})
	d.AddReducer(dispatch.ActionSkillUnequip, slices.Skills, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		id := payloadStr(action, "skillId")
		if id == "" {
			return nil
		}
		equipped, _ := record["equipped"].([]any)
		next := make([]any, 0, len(equipped))
		for _, existing := range equipped {
			if existing != any(id) {
				next = append(next, existing)
			}
		}
		ranks := cloneStringMap(record["ranks"])
		delete(ranks, id)
		cooldowns := cloneStringMap(record["cooldowns"])
		delete(cooldowns, id)
		return map[string]any{"equipped": next, "ranks": ranks, "cooldowns": cooldowns}
	})
	d.AddReducer(dispatch.ActionSkillRankUp, slices.Skills, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		id := payloadStr(action, "skillId")
		ranks := cloneStringMap(record["ranks"])
		current, ok := ranks[id].(float64)
		if !ok {
			return nil
		}
		ranks[id] = current + 1
		return map[string]any{"ranks": ranks}
	})
	d.AddReducer(dispatch.ActionCooldownStart, slices.Skills, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		id := payloadStr(action, "skillId")
		seconds := payloadNum(action, "seconds")
		if id == "" || seconds <= 0 {
			return nil
		}
		cooldowns := cloneStringMap(record["cooldowns"])
		cooldowns[id] = seconds
		return map[string]any{"cooldowns": cooldowns}
	})
	d.AddReducer(dispatch.ActionCooldownsTick, slices.Skills, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		delta := payloadNum(action, "delta")
		current, _ := record["cooldowns"].(map[string]any)
		if delta <= 0 || len(current) == 0 {
			return nil
		}
		cooldowns := make(map[string]any, len(current))
		for id, value := range current {
			remaining, _ := value.(float64)
			remaining -= delta
			if remaining > 0 {
				cooldowns[id] = remaining
			}
		}
		return map[string]any{"cooldowns": cooldowns}
	})
	d.AddReducer(dispatch.ActionCooldownsTick, slices.Combat, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		delta := payloadNum(action, "delta")
		timer := recNum(record, "comboTimer")
		if delta <= 0 || timer <= 0 {
			return nil
		}
		timer -= delta
		if timer > 0 {
			return map[string]any{"comboTimer": timer}
		}
		return map[string]any{"comboTimer": float64(0), "combo": float64(0)}
	})

	d.AddReducer(dispatch.ActionComboIncrement, slices.Combat, func(record map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		combo := recNum(record, "combo") + 1
		best := math.Max(recNum(record, "bestCombo"), combo)
		return map[string]any{"combo": combo, "comboTimer": comboWindowSeconds, "bestCombo": best}
	})
	d.AddReducer(dispatch.ActionComboReset, slices.Combat, func(record map[string]any, _ dispatch.Action, _ store.View) map[string]any {
		if recNum(record, "combo") == 0 {
			return nil
		}
		return map[string]any{"combo": float64(0), "comboTimer": float64(0)}
	})
	d.AddReducer(dispatch.ActionDamageDealt, slices.Combat, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		amount := payloadNum(action, "amount")
		if amount <= 0 {
			return nil
		}
		return map[string]any{"damageDealt": recNum(record, "damageDealt") + amount}
	})

	d.AddReducer(dispatch.ActionEntityCounts, slices.Entities, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		return map[string]any{
			"enemies":      payloadNum(action, "enemies"),
			"projectiles":  payloadNum(action, "projectiles"),
			"spawnedTotal": payloadNum(action, "spawnedTotal"),
		}
	})

	d.AddReducer(dispatch.ActionAscend, slices.Ascension, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		cost := payloadNum(action, "cost")
		shards := recNum(record, "shards")
		if cost < 0 || cost > shards {
			return nil
		}
		return map[string]any{
			"tier":            recNum(record, "tier") + 1,
			"shards":          shards - cost,
			"totalAscensions": recNum(record, "totalAscensions") + 1,
		}
	})
	d.AddReducer(dispatch.ActionShardsAdd, slices.Ascension, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		amount := payloadNum(action, "amount")
		if amount <= 0 {
			return nil
		}
		return map[string]any{"shards": recNum(record, "shards") + amount}
	})

	d.AddReducer(dispatch.ActionSettingsSet, slices.Settings, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		updates := make(map[string]any, len(action.Payload))
		for key, value := range action.Payload {
			if _, known := record[key]; known {
				updates[key] = value
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return updates
	})

	d.AddReducer(dispatch.ActionProgressRecord, slices.Progression, func(record map[string]any, action dispatch.Action, _ store.View) map[string]any {
		return map[string]any{
			"totalKills": recNum(record, "totalKills") + payloadNum(action, "kills"),
			"totalRuns":  recNum(record, "totalRuns") + 1,
			"bestWave":   math.Max(recNum(record, "bestWave"), payloadNum(action, "wave")),
			"bestScore":  math.Max(recNum(record, "bestScore"), payloadNum(action, "score")),
		}
	})
}

func validAttribute(attr string) bool {
	switch attr {
	case slices.AttrVigor, slices.AttrFerocity, slices.AttrCelerity, slices.AttrFortune:
		return true
	default:
		return false
	}
}
