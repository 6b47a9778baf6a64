package events

// The fixed event vocabulary. Emitters and listeners agree on these
// names and payload types; the bus itself does not enforce membership.
const (
	Tick              = "tick"
	EnemyHit          = "enemy:hit"
	EnemyKilled       = "enemy:killed"
	PlayerDamaged     = "player:damaged"
	ProjectileFired   = "projectile:fired"
	ProjectileCreated = "projectile:created"
	WaveStarted       = "wave:started"
	WaveCompleted     = "wave:completed"
	StatsSync         = "stats:sync"
)

// TickPayload is emitted once per frame with the clamped delta in
// seconds.
type TickPayload struct {
	Delta float64
}

// EnemyHitPayload is emitted when a projectile damages an enemy.
type EnemyHitPayload struct {
	EnemyID      string
	ProjectileID string
	Damage       float64
}

// EnemyKilledPayload is emitted when an enemy dies, with its last
// position for on-death effects.
type EnemyKilledPayload struct {
	EnemyID   string
	X, Y      float64
	EnemyType string
}

// PlayerDamagedPayload is emitted when the player takes damage.
type PlayerDamagedPayload struct {
	Damage float64
	Source string
}

// ProjectileFiredPayload is emitted when the player fires.
type ProjectileFiredPayload struct {
	ProjectileID string
	Angle        float64
	Damage       float64
}

// ProjectileCreatedPayload is emitted for any new projectile,
// including skill-spawned ones.
type ProjectileCreatedPayload struct {
	ProjectileID string
}

// WaveStartedPayload is emitted when a wave begins spawning.
type WaveStartedPayload struct {
	Wave int
}

// WaveCompletedPayload is emitted when the last enemy of a wave dies.
type WaveCompletedPayload struct {
	Wave int
}

// StatsSyncPayload carries the freshly resolved stat table after
// equipment or rank changes.
type StatsSyncPayload struct {
	Stats map[string]float64
}
