// Package entity holds the live actors of a run: the player, enemies
// and projectiles. These are plain mutable structs owned by the game
// goroutine, intentionally outside the store; the store carries only
// slim counts and summaries of them.
package entity

import "math"

// Player is the single controllable actor.
type Player struct {
	X, Y        float64
	VX, VY      float64
	Radius      float64
	FacingAngle float64

	// Configs and Visuals hold per-skill contributions collected from
	// plugins, keyed by skill id.
	Configs map[string]map[string]any
	Visuals map[string]map[string]any
}

// EnemySpec describes an enemy to spawn.
type EnemySpec struct {
	Type        string
	X, Y        float64
	Health      float64
	Speed       float64
	TouchDamage float64
	Bounty      float64
	XP          float64
}

// Enemy is one live hostile.
type Enemy struct {
	ID          string
	Type        string
	X, Y        float64
	Health      float64
	MaxHealth   float64
	Speed       float64
	TouchDamage float64
	Bounty      float64
	XP          float64
	Alive       bool
}

// StepToward moves the enemy toward a point by speed*delta.
func (e *Enemy) StepToward(x, y, delta float64) {
	if e == nil || !e.Alive {
		return
	}
	dx := x - e.X
	dy := y - e.Y
	dist := math.Hypot(dx, dy)
	if dist < 1e-9 {
		return
	}
	step := e.Speed * delta
	if step > dist {
		step = dist
	}
	e.X += dx / dist * step
	e.Y += dy / dist * step
}

// ProjectileSpec describes a projectile to spawn.
type ProjectileSpec struct {
	X, Y   float64
	Angle  float64
	Speed  float64
	Damage float64
	Radius float64
	TTL    float64
	Pierce int
	Source string
}

// Projectile is one live shot.
type Projectile struct {
	ID string
	ProjectileSpec
	Age   float64
	Alive bool
}

// Step advances the projectile and expires it past its TTL.
func (p *Projectile) Step(delta float64) {
	if p == nil || !p.Alive {
		return
	}
	p.X += math.Cos(p.Angle) * p.Speed * delta
	p.Y += math.Sin(p.Angle) * p.Speed * delta
	p.Age += delta
	if p.TTL > 0 && p.Age >= p.TTL {
		p.Alive = false
	}
}
