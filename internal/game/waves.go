package game

import (
	"math"

	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
)

const (
	// waveStartGrace delays the first wave so a fresh run has a beat
	// before enemies arrive.
	waveStartGrace = 1.5
	// waveIntermission is the breather between a clear and the next
	// wave starting.
	waveIntermission = 3.0
	// spawnInterval staggers enemy arrivals while a wave spawns.
	spawnInterval = 0.6
	// spawnDistance is the ring radius enemies appear on, outside the
	// playfield edge.
	spawnDistance = 420.0
)

// waveBudget is the enemy count of a wave.
func waveBudget(wave int) int {
	return 4 + 2*wave
}

// driveWaves runs the wave state machine for one frame: count down
// the intermission, start the next wave, stagger its spawns, then
// hand off to the kill chain which completes the wave when remaining
// hits zero.
func (m *Manager) driveWaves(delta float64) {
	if active, _ := m.st.Get(slices.Run, "active").(bool); !active {
		return
	}
	if phase, _ := m.st.Get(slices.Phase, "current").(string); phase != slices.PhaseRunning {
		return
	}
	state, _ := m.st.Get(slices.Wave, "state").(string)
	switch state {
	case slices.WaveStateIdle, slices.WaveStateCleared:
		m.waveRest -= delta
		if m.waveRest > 0 {
			return
		}
		next := int(m.num(slices.Wave, "number")) + 1
		m.spawnedThisWave = 0
		m.spawnGap = 0
		m.waveRest = waveIntermission
		m.d.Dispatch(dispatch.Action{
			Type: dispatch.ActionWaveStart,
			Payload: map[string]any{
				"wave":    float64(next),
				"enemies": float64(waveBudget(next)),
			},
		})
	case slices.WaveStateSpawning:
		m.spawnGap -= delta
		if m.spawnGap > 0 {
			return
		}
		m.spawnGap = spawnInterval
		wave := int(m.num(slices.Wave, "number"))
		m.spawnWaveEnemy(wave)
		m.spawnedThisWave++
		if float64(m.spawnedThisWave) >= m.num(slices.Wave, "budget") {
			m.d.Dispatch(dispatch.Action{Type: dispatch.ActionWaveProgress})
		}
	}
}

// spawnWaveEnemy places one enemy on the spawn ring around the
// player, scaled to the wave number. Every fourth wave mixes in
// brutes.
func (m *Manager) spawnWaveEnemy(wave int) {
	player := &m.world.Player
	angle := m.rng.Float64() * 2 * math.Pi
	spec := entity.EnemySpec{
		Type:        "grunt",
		X:           player.X + spawnDistance*math.Cos(angle),
		Y:           player.Y + spawnDistance*math.Sin(angle),
		Health:      20 + 5*float64(wave),
		Speed:       40 + 2*float64(wave),
		TouchDamage: 8 + float64(wave),
		Bounty:      2 + float64(wave),
		XP:          10 + 4*float64(wave),
	}
	if wave >= 4 && m.spawnedThisWave%4 == 3 {
		spec.Type = "brute"
		spec.Health *= 3
		spec.Speed *= 0.6
		spec.TouchDamage *= 2
		spec.Bounty *= 2
		spec.XP *= 2
	}
	m.world.SpawnEnemy(spec)
}

// resetWaveDirector rearms the director timers for a fresh run.
func (m *Manager) resetWaveDirector() {
	m.waveRest = waveStartGrace
	m.spawnGap = 0
	m.spawnedThisWave = 0
}
