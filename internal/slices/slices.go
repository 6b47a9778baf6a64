// Package slices defines the fixed state slices of the runtime: their
// names, their initial shapes, and the value vocabulary of enumerated
// fields. Slice records hold only JSON-safe values; every number is a
// float64 so persisted state round-trips without type drift.
package slices

const (
	Phase       = "phase"
	Run         = "run"
	Player      = "player"
	Skills      = "skills"
	Combat      = "combat"
	Entities    = "entities"
	Wave        = "wave"
	Ascension   = "ascension"
	Progression = "progression"
	Settings    = "settings"
)

// Phase slice values for the "current" key.
const (
	PhaseBoot     = "boot"
	PhaseMenu     = "menu"
	PhaseRunning  = "running"
	PhasePaused   = "paused"
	PhaseGameOver = "game_over"
)

// Skills slice attribute names under the "attributes" key.
const (
	AttrVigor    = "vigor"
	AttrFerocity = "ferocity"
	AttrCelerity = "celerity"
	AttrFortune  = "fortune"
)

// Wave slice values for the "state" key.
const (
	WaveStateIdle     = "idle"
	WaveStateSpawning = "spawning"
	WaveStateActive   = "active"
	WaveStateCleared  = "cleared"
)

// Builder constructs a fresh initial record for one slice.
type Builder func() map[string]any

var names = []string{
	Phase,
	Run,
	Player,
	Skills,
	Combat,
	Entities,
	Wave,
	Ascension,
	Progression,
	Settings,
}

var builders = map[string]Builder{
	Phase: func() map[string]any {
		return map[string]any{
			"current":  PhaseBoot,
			"previous": "",
			"since":    float64(0),
		}
	},
	Run: func() map[string]any {
		return map[string]any{
			"active":    false,
			"runId":     "",
			"wave":      float64(0),
			"score":     float64(0),
			"kills":     float64(0),
			"gold":      float64(0),
			"startedAt": float64(0),
			"duration":  float64(0),
			"seed":      "",
		}
	},
	Player: func() map[string]any {
		return map[string]any{
			"health":      float64(100),
			"maxHealth":   float64(100),
			"shield":      float64(0),
			"alive":       true,
			"lives":       float64(3),
			"invulnUntil": float64(0),
		}
	},
	Skills: func() map[string]any {
		return map[string]any{
			"xp":        float64(0),
			"level":     float64(1),
			"points":    float64(0),
			"equipped":  []any{},
			"ranks":     map[string]any{},
			"cooldowns": map[string]any{},
			"attributes": map[string]any{
				AttrVigor:    float64(0),
				AttrFerocity: float64(0),
				AttrCelerity: float64(0),
				AttrFortune:  float64(0),
			},
		}
	},
	Combat: func() map[string]any {
		return map[string]any{
			"combo":         float64(0),
			"comboTimer":    float64(0),
			"bestCombo":     float64(0),
			"damageDealt":   float64(0),
			"damageTaken":   float64(0),
			"killsThisWave": float64(0),
		}
	},
	Entities: func() map[string]any {
		return map[string]any{
			"enemies":      float64(0),
			"projectiles":  float64(0),
			"pickups":      float64(0),
			"spawnedTotal": float64(0),
		}
	},
	Wave: func() map[string]any {
		return map[string]any{
			"number":    float64(0),
			"state":     WaveStateIdle,
			"remaining": float64(0),
			"budget":    float64(0),
			"startedAt": float64(0),
			"bonus":     false,
		}
	},
	Ascension: func() map[string]any {
		return map[string]any{
			"tier":            float64(0),
			"shards":          float64(0),
			"totalAscensions": float64(0),
		}
	},
	Progression: func() map[string]any {
		return map[string]any{
			"totalKills": float64(0),
			"totalRuns":  float64(0),
			"bestWave":   float64(0),
			"bestScore":  float64(0),
			"unlocked":   []any{"rapid_fire", "fireball"},
		}
	},
	Settings: func() map[string]any {
		return map[string]any{
			"musicVolume":   float64(0.8),
			"sfxVolume":     float64(1.0),
			"screenShake":   true,
			"damageNumbers": true,
			"difficulty":    "normal",
		}
	},
}

// Names returns every slice name in registration order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Initial builds a fresh initial record for the named slice.
func Initial(name string) (map[string]any, bool) {
	builder, ok := builders[name]
	if !ok {
		return nil, false
	}
	return builder(), true
}

// Builders returns the full constructor table keyed by slice name.
func Builders() map[string]Builder {
	out := make(map[string]Builder, len(builders))
	for name, builder := range builders {
		out[name] = builder
	}
	return out
}
