package entity

import "fmt"

// World owns the live actors of one run. Iteration order is spawn
// order, which keeps collision and targeting deterministic for a given
// seed. Not safe for concurrent use.
type World struct {
	Player Player

	enemies     map[string]*Enemy
	enemyOrder  []string
	projectiles map[string]*Projectile
	shotOrder   []string

	nextEnemyID  uint64
	nextShotID   uint64
	spawnedTotal uint64
}

func NewWorld() *World {
	return &World{
		Player:      Player{Radius: 16, Configs: map[string]map[string]any{}, Visuals: map[string]map[string]any{}},
		enemies:     make(map[string]*Enemy),
		projectiles: make(map[string]*Projectile),
	}
}

// SpawnEnemy materializes an enemy from a spec and returns it.
func (w *World) SpawnEnemy(spec EnemySpec) *Enemy {
	w.nextEnemyID++
	w.spawnedTotal++
	enemy := &Enemy{
		ID:          fmt.Sprintf("e-%d", w.nextEnemyID),
		Type:        spec.Type,
		X:           spec.X,
		Y:           spec.Y,
		Health:      spec.Health,
		MaxHealth:   spec.Health,
		Speed:       spec.Speed,
		TouchDamage: spec.TouchDamage,
		Bounty:      spec.Bounty,
		XP:          spec.XP,
		Alive:       true,
	}
	w.enemies[enemy.ID] = enemy
	w.enemyOrder = append(w.enemyOrder, enemy.ID)
	return enemy
}

// Enemy returns a live enemy by id, or nil.
func (w *World) Enemy(id string) *Enemy {
	if w == nil {
		return nil
	}
	enemy := w.enemies[id]
	if enemy == nil || !enemy.Alive {
		return nil
	}
	return enemy
}

// Enemies returns every live enemy in spawn order.
func (w *World) Enemies() []*Enemy {
	if w == nil {
		return nil
	}
	out := make([]*Enemy, 0, len(w.enemies))
	for _, id := range w.enemyOrder {
		if enemy := w.enemies[id]; enemy != nil && enemy.Alive {
			out = append(out, enemy)
		}
	}
	return out
}

// RemoveEnemy drops an enemy from the world entirely.
func (w *World) RemoveEnemy(id string) {
	if w == nil {
		return
	}
	delete(w.enemies, id)
	w.enemyOrder = removeID(w.enemyOrder, id)
}

// SpawnProjectile materializes a projectile from a spec.
func (w *World) SpawnProjectile(spec ProjectileSpec) *Projectile {
	w.nextShotID++
	shot := &Projectile{
		ID:             fmt.Sprintf("p-%d", w.nextShotID),
		ProjectileSpec: spec,
		Alive:          true,
	}
	w.projectiles[shot.ID] = shot
	w.shotOrder = append(w.shotOrder, shot.ID)
	return shot
}

// Projectile returns a live projectile by id, or nil.
func (w *World) Projectile(id string) *Projectile {
	if w == nil {
		return nil
	}
	shot := w.projectiles[id]
	if shot == nil || !shot.Alive {
		return nil
	}
	return shot
}

// Projectiles returns every live projectile in spawn order.
func (w *World) Projectiles() []*Projectile {
	if w == nil {
		return nil
	}
	out := make([]*Projectile, 0, len(w.projectiles))
	for _, id := range w.shotOrder {
		if shot := w.projectiles[id]; shot != nil && shot.Alive {
			out = append(out, shot)
		}
	}
	return out
}

// RemoveProjectile drops a projectile from the world entirely.
func (w *World) RemoveProjectile(id string) {
	if w == nil {
		return
	}
	delete(w.projectiles, id)
	w.shotOrder = removeID(w.shotOrder, id)
}

// Sweep removes dead enemies and expired projectiles in one pass.
func (w *World) Sweep() {
	if w == nil {
		return
	}
	kept := w.enemyOrder[:0]
	for _, id := range w.enemyOrder {
		if enemy := w.enemies[id]; enemy != nil && enemy.Alive {
			kept = append(kept, id)
		} else {
			delete(w.enemies, id)
		}
	}
	w.enemyOrder = kept

	keptShots := w.shotOrder[:0]
	for _, id := range w.shotOrder {
		if shot := w.projectiles[id]; shot != nil && shot.Alive {
			keptShots = append(keptShots, id)
		} else {
			delete(w.projectiles, id)
		}
	}
	w.shotOrder = keptShots
}

// Counts reports live enemies, live projectiles and total spawns.
func (w *World) Counts() (enemies, projectiles int, spawnedTotal uint64) {
	if w == nil {
		return 0, 0, 0
	}
	return len(w.enemies), len(w.projectiles), w.spawnedTotal
}

// Reset clears all actors and recenters the player, keeping id
// counters so ids stay unique across resets within a session.
func (w *World) Reset() {
	if w == nil {
		return
	}
	w.enemies = make(map[string]*Enemy)
	w.enemyOrder = nil
	w.projectiles = make(map[string]*Projectile)
	w.shotOrder = nil
	w.spawnedTotal = 0
	w.Player = Player{Radius: 16, Configs: map[string]map[string]any{}, Visuals: map[string]map[string]any{}}
}

func removeID(list []string, id string) []string {
	for i, existing := range list {
		if existing == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
