package game

import (
	"context"
	"sort"

	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
	logskills "github.com/diegofer25/neon-siege-sub003/logging/skills"
)

// comboWindowSeconds is how long a combo survives without a kill.
const comboWindowSeconds = 4.0

// baseStats is the unmodified stat table a fresh player resolves from.
var baseStats = map[string]float64{
	skills.StatDamage:          10,
	skills.StatFireRate:        2,
	skills.StatProjectileSpeed: 300,
	skills.StatMoveSpeed:       200,
	skills.StatMaxHealth:       100,
	skills.StatPickupRadius:    60,
	skills.StatGoldGain:        1,
	skills.StatCritChance:      0.05,
}

// attributeGain is the per-point multiplier bonus each attribute
// grants to the stats it governs.
var attributeGain = map[string]map[string]float64{
	slices.AttrVigor:    {skills.StatMaxHealth: 0.05},
	slices.AttrFerocity: {skills.StatDamage: 0.04},
	slices.AttrCelerity: {skills.StatFireRate: 0.03, skills.StatMoveSpeed: 0.02},
	slices.AttrFortune:  {skills.StatGoldGain: 0.05, skills.StatCritChance: 0.01},
}

// XPForLevel is the XP needed to advance past the given level.
func XPForLevel(level int) float64 {
	if level < 1 {
		level = 1
	}
	return 100*float64(level) + 25*float64(level*(level-1))
}

// attributeMultiplier folds allocated attribute points into a single
// multiplier for one stat.
func (m *Manager) attributeMultiplier(stat string) float64 {
	attrs, _ := m.st.Get(slices.Skills, "attributes").(map[string]any)
	mult := 1.0
	for attr, gains := range attributeGain {
		gain, governs := gains[stat]
		if !governs {
			continue
		}
		points, _ := attrs[attr].(float64)
		mult += gain * points
	}
	return mult
}

// aggregate folds plugin modifiers and ascension modifiers, in that
// order, into one per-stat table.
func (m *Manager) aggregate() map[string]skills.StatAggregate {
	agg := m.engine.AggregatedModifiers(m.skillContext())
	return skills.FoldModifiers(agg, m.pool.Modifiers())
}

// ResolveStat computes a stat's effective value. Order is fixed: base,
// then attribute multipliers, then aggregated add, multiply and set.
func (m *Manager) ResolveStat(stat string) float64 {
	base := baseStats[stat] * m.attributeMultiplier(stat)
	return skills.ResolveStatValue(stat, base, m.aggregate())
}

// ResolvedStats returns the full effective stat table.
func (m *Manager) ResolvedStats() map[string]float64 {
	agg := m.aggregate()
	out := make(map[string]float64, len(baseStats))
	for stat, base := range baseStats {
		out[stat] = skills.ResolveStatValue(stat, base*m.attributeMultiplier(stat), agg)
	}
	return out
}

// EmitStatsSync publishes the freshly resolved stat table on the bus
// and the event log, and refreshes the player's per-skill configs and
// visuals. Called after anything that can shift a stat.
func (m *Manager) EmitStatsSync() {
	ctx := m.skillContext()
	stats := m.ResolvedStats()
	m.world.Player.Configs = m.engine.PlayerConfigs(ctx)
	m.world.Player.Visuals = m.engine.VisualOverrides(ctx)
	m.bus.Emit(events.StatsSync, events.StatsSyncPayload{Stats: stats})
	logskills.StatsSynced(context.Background(), m.publisher, m.tick.Load(), logskills.StatsSyncedPayload{Stats: stats})
	if m.metrics != nil {
		m.metrics.Add("stats_syncs", 1)
	}
}

// StatNames returns every stat the base table knows, sorted.
func StatNames() []string {
	out := make([]string, 0, len(baseStats))
	for stat := range baseStats {
		out = append(out, stat)
	}
	sort.Strings(out)
	return out
}
