// Package ascension implements the between-run modifier pool: a
// catalog of permanent run modifiers, the offer/choose draft flow, and
// the state the snapshot manager persists for it.
package ascension

import (
	"log"

	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
)

// Definition is one draftable ascension modifier.
type Definition struct {
	ID          string
	Name        string
	Description string
	Weight      int
	Modifiers   []skills.Modifier
}

// State is the persisted shape of the pool, matching the save file's
// ascension block.
type State struct {
	ActiveModifiers []string `json:"activeModifiers"`
	OfferedIDs      []string `json:"offeredIds"`
}

// Deps carries the pool's collaborators. A nil Rand falls back to a
// fixed midpoint, which keeps tests deterministic.
type Deps struct {
	Logger  telemetry.Logger
	Rand    func() float64
	Catalog []Definition
}

// Pool owns the draft state. Active order is choose order, which makes
// modifier folding deterministic the same way skill equip order does.
type Pool struct {
	logger  telemetry.Logger
	rand    func() float64
	defs    map[string]Definition
	order   []string
	active  []string
	offered []string
}

func NewPool(deps Deps) *Pool {
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	random := deps.Rand
	if random == nil {
		random = func() float64 { return 0.5 }
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	p := &Pool{
		logger: logger,
		rand:   random,
		defs:   make(map[string]Definition, len(catalog)),
	}
	for _, def := range catalog {
		if def.ID == "" {
			continue
		}
		if _, exists := p.defs[def.ID]; exists {
			logger.Printf("ascension: duplicate definition %q ignored", def.ID)
			continue
		}
		p.defs[def.ID] = def
		p.order = append(p.order, def.ID)
	}
	return p
}

// Offer draws up to count distinct inactive modifiers, weighted by
// definition weight, and records them as the current offer. A fresh
// call replaces any standing offer.
func (p *Pool) Offer(count int) []string {
	if p == nil || count <= 0 {
		return nil
	}
	candidates := make([]string, 0, len(p.order))
	for _, id := range p.order {
		if !contains(p.active, id) {
			candidates = append(candidates, id)
		}
	}
	p.offered = nil
	for len(p.offered) < count && len(candidates) > 0 {
		idx := p.weightedPick(candidates)
		p.offered = append(p.offered, candidates[idx])
		candidates = append(candidates[:idx:idx], candidates[idx+1:]...)
	}
	return p.OfferedIDs()
}

// Reroll discards the standing offer and draws again.
func (p *Pool) Reroll(count int) []string {
	if p == nil {
		return nil
	}
	return p.Offer(count)
}

// Choose activates one of the offered modifiers and closes the offer.
// Choosing an id that was not offered is refused.
func (p *Pool) Choose(id string) bool {
	if p == nil {
		return false
	}
	if !contains(p.offered, id) {
		p.logger.Printf("ascension: choose %q refused, not offered", id)
		return false
	}
	p.active = append(p.active, id)
	p.offered = nil
	return true
}

// ActiveIDs returns chosen modifiers in choose order.
func (p *Pool) ActiveIDs() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.active))
	copy(out, p.active)
	return out
}

// OfferedIDs returns the standing offer in draw order.
func (p *Pool) OfferedIDs() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.offered))
	copy(out, p.offered)
	return out
}

// Definition looks a modifier up by id.
func (p *Pool) Definition(id string) (Definition, bool) {
	if p == nil {
		return Definition{}, false
	}
	def, ok := p.defs[id]
	return def, ok
}

// Modifiers concatenates every active definition's stat modifiers in
// choose order, ready to fold on top of the skill aggregate.
func (p *Pool) Modifiers() []skills.Modifier {
	if p == nil {
		return nil
	}
	var out []skills.Modifier
	for _, id := range p.active {
		out = append(out, p.defs[id].Modifiers...)
	}
	return out
}

// Save captures the pool's persistable state.
func (p *Pool) Save() State {
	if p == nil {
		return State{}
	}
	return State{
		ActiveModifiers: p.ActiveIDs(),
		OfferedIDs:      p.OfferedIDs(),
	}
}

// Restore replaces the pool's state from a snapshot. Ids the catalog
// no longer knows are dropped with a warning instead of failing the
// whole restore.
func (p *Pool) Restore(state State) {
	if p == nil {
		return
	}
	p.active = nil
	for _, id := range state.ActiveModifiers {
		if _, ok := p.defs[id]; !ok {
			p.logger.Printf("ascension: dropping unknown active modifier %q", id)
			continue
		}
		p.active = append(p.active, id)
	}
	p.offered = nil
	for _, id := range state.OfferedIDs {
		if _, ok := p.defs[id]; !ok {
			p.logger.Printf("ascension: dropping unknown offered modifier %q", id)
			continue
		}
		p.offered = append(p.offered, id)
	}
}

// Reset clears draft state at a full run reset.
func (p *Pool) Reset() {
	if p == nil {
		return
	}
	p.active = nil
	p.offered = nil
}

// weightedPick selects an index from candidates proportionally to
// definition weight; zero or negative weights count as 1.
func (p *Pool) weightedPick(candidates []string) int {
	total := 0
	for _, id := range candidates {
		total += weightOf(p.defs[id])
	}
	target := int(p.rand() * float64(total))
	if target >= total {
		target = total - 1
	}
	for i, id := range candidates {
		target -= weightOf(p.defs[id])
		if target < 0 {
			return i
		}
	}
	return len(candidates) - 1
}

func weightOf(def Definition) int {
	if def.Weight <= 0 {
		return 1
	}
	return def.Weight
}

func contains(list []string, id string) bool {
	for _, existing := range list {
		if existing == id {
			return true
		}
	}
	return false
}
