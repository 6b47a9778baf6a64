package ascension

import "github.com/diegofer25/neon-siege-sub003/internal/skills"

// Ascension modifier ids.
const (
	SharpenedCore  = "sharpened_core"
	SwiftServos    = "swift_servos"
	ReinforcedHull = "reinforced_hull"
	LuckyCircuits  = "lucky_circuits"
	MagnetArray    = "magnet_array"
	GlassCannon    = "glass_cannon"
)

// DefaultCatalog returns the shipped ascension modifiers. Rarer picks
// carry lower weights.
func DefaultCatalog() []Definition {
	return []Definition{
		{
			ID:          SharpenedCore,
			Name:        "Sharpened Core",
			Description: "All damage +10%.",
			Weight:      4,
			Modifiers: []skills.Modifier{
				{Stat: skills.StatDamage, Op: skills.OpMultiply, Value: 1.1},
			},
		},
		{
			ID:          SwiftServos,
			Name:        "Swift Servos",
			Description: "Move speed +8%.",
			Weight:      4,
			Modifiers: []skills.Modifier{
				{Stat: skills.StatMoveSpeed, Op: skills.OpMultiply, Value: 1.08},
			},
		},
		{
			ID:          ReinforcedHull,
			Name:        "Reinforced Hull",
			Description: "Max health +25.",
			Weight:      4,
			Modifiers: []skills.Modifier{
				{Stat: skills.StatMaxHealth, Op: skills.OpAdd, Value: 25},
			},
		},
		{
			ID:          LuckyCircuits,
			Name:        "Lucky Circuits",
			Description: "Crit chance +5%, gold gain +10%.",
			Weight:      3,
			Modifiers: []skills.Modifier{
				{Stat: skills.StatCritChance, Op: skills.OpAdd, Value: 0.05},
				{Stat: skills.StatGoldGain, Op: skills.OpMultiply, Value: 1.1},
			},
		},
		{
			ID:          MagnetArray,
			Name:        "Magnet Array",
			Description: "Pickup radius +40.",
			Weight:      3,
			Modifiers: []skills.Modifier{
				{Stat: skills.StatPickupRadius, Op: skills.OpAdd, Value: 40},
			},
		},
		{
			ID:          GlassCannon,
			Name:        "Glass Cannon",
			Description: "Damage +30%, max health -20%.",
			Weight:      1,
			Modifiers: []skills.Modifier{
				{Stat: skills.StatDamage, Op: skills.OpMultiply, Value: 1.3},
				{Stat: skills.StatMaxHealth, Op: skills.OpMultiply, Value: 0.8},
			},
		},
	}
}
