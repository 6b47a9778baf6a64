package game

import (
	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
)

// ascensionOfferCount is how many modifiers one ascension drafts.
const ascensionOfferCount = 3

// ascendCost is the shard price of climbing past the given tier.
func ascendCost(tier int) float64 {
	return float64(tier + 1)
}

// Ascend spends shards to raise the ascension tier and opens a draft
// offer from the modifier pool. Refused mid-run and when shards fall
// short of the next tier's cost; the offered ids travel the action
// log so clients see the draft.
func (m *Manager) Ascend() []string {
	if active, _ := m.st.Get(slices.Run, "active").(bool); active {
		m.logger.Printf("game: ascend refused mid-run")
		return nil
	}
	tier := m.num(slices.Ascension, "tier")
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionAscend,
		Payload: map[string]any{"cost": ascendCost(int(tier))},
	})
	if m.num(slices.Ascension, "tier") == tier {
		m.logger.Printf("game: ascend refused, not enough shards for tier %d", int(tier)+1)
		return nil
	}
	offered := m.pool.Offer(ascensionOfferCount)
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionAscensionOffer,
		Payload: map[string]any{"offered": idsPayload(offered)},
	})
	return offered
}

// RerollAscensions discards the standing draft offer and draws a
// fresh one. A no-op without an open offer.
func (m *Manager) RerollAscensions() []string {
	if len(m.pool.OfferedIDs()) == 0 {
		return nil
	}
	offered := m.pool.Reroll(ascensionOfferCount)
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionAscensionOffer,
		Payload: map[string]any{"offered": idsPayload(offered)},
	})
	return offered
}

// ChooseAscension activates one offered modifier. Its stat modifiers
// fold into every resolved stat from the next sync on.
func (m *Manager) ChooseAscension(id string) bool {
	if !m.pool.Choose(id) {
		return false
	}
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionAscensionChoose,
		Payload: map[string]any{"modifierId": id},
	})
	m.EmitStatsSync()
	return true
}

func idsPayload(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
