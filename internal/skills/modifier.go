package skills

// Op is the kind of stat modification a plugin contributes.
type Op string

const (
	OpAdd      Op = "add"
	OpMultiply Op = "multiply"
	OpSet      Op = "set"
)

// Canonical stat names. Plugins and the stat resolver agree on these;
// the aggregate map is keyed by them.
const (
	StatDamage          = "damage"
	StatFireRate        = "fireRate"
	StatProjectileSpeed = "projectileSpeed"
	StatMoveSpeed       = "moveSpeed"
	StatMaxHealth       = "maxHealth"
	StatPickupRadius    = "pickupRadius"
	StatGoldGain        = "goldGain"
	StatCritChance      = "critChance"
)

// Modifier is one declarative stat contribution.
type Modifier struct {
	Stat  string  `json:"stat"`
	Op    Op      `json:"op"`
	Value float64 `json:"value"`
}

// StatAggregate is the folded form of every modifier targeting one
// stat: summed adds, multiplied multipliers, and the last set value
// in equip order when any plugin used set.
type StatAggregate struct {
	Add      float64
	Multiply float64
	Set      *float64
}

func newAggregate() StatAggregate {
	return StatAggregate{Multiply: 1}
}

// fold merges one modifier into the aggregate. Set is last-writer-wins
// in fold order.
func (a StatAggregate) fold(m Modifier) StatAggregate {
	switch m.Op {
	case OpAdd:
		a.Add += m.Value
	case OpMultiply:
		a.Multiply *= m.Value
	case OpSet:
		v := m.Value
		a.Set = &v
	}
	return a
}

// FoldModifiers merges additional modifiers into an aggregate map in
// list order, allocating the map when needed. The ascension pool uses
// it to stack its run modifiers on top of the plugin fold.
func FoldModifiers(agg map[string]StatAggregate, mods []Modifier) map[string]StatAggregate {
	if len(mods) == 0 {
		return agg
	}
	if agg == nil {
		agg = make(map[string]StatAggregate)
	}
	for _, m := range mods {
		if m.Stat == "" {
			continue
		}
		a, ok := agg[m.Stat]
		if !ok {
			a = newAggregate()
		}
		agg[m.Stat] = a.fold(m)
	}
	return agg
}

// ResolveStatValue applies one stat's aggregate to a base value:
// set wins outright, otherwise (base + add) * multiply.
func ResolveStatValue(stat string, base float64, agg map[string]StatAggregate) float64 {
	a, ok := agg[stat]
	if !ok {
		return base
	}
	if a.Set != nil {
		return *a.Set
	}
	return (base + a.Add) * a.Multiply
}
