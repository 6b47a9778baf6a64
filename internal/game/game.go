// Package game is the orchestrator above the store, dispatcher, event
// bus and skill engine. It owns XP, levels, attributes and cooldowns,
// registers the reducer and effect tables for the whole action
// vocabulary, and drives the per-frame Advance.
package game

import (
	"errors"
	"log"
	"math/rand"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/diegofer25/neon-siege-sub003/internal/ascension"
	"github.com/diegofer25/neon-siege-sub003/internal/dispatch"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
	"github.com/diegofer25/neon-siege-sub003/logging"
)

// Deps carries the orchestrator's collaborators. Store, Bus, World and
// Pool are required; the dispatcher and skill engine are built here so
// their tick and host wiring cannot be gotten wrong.
type Deps struct {
	Store *store.Store
	Bus   *events.Bus
	World *entity.World
	Pool  *ascension.Pool

	Catalog map[string]skills.Factory

	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	Clock     logging.Clock

	Seed           int64
	ActionLogCap   int
	EntitySyncEach uint64
}

// Manager wires the runtime together and is the skills.Host plugins
// act through. Single-goroutine by contract, like everything it owns.
type Manager struct {
	st     *store.Store
	d      *dispatch.Dispatcher
	bus    *events.Bus
	engine *skills.Engine
	world  *entity.World
	pool   *ascension.Pool

	logger    telemetry.Logger
	metrics   telemetry.Metrics
	publisher logging.Publisher
	clock     logging.Clock
	rng       *rand.Rand

	// tick is atomic so session read goroutines may stamp commands
	// and log events without holding the frame mutex. Everything
	// else in the manager stays single-goroutine by contract.
	tick           atomic.Uint64
	entitySyncEach uint64

	waveRest        float64
	spawnGap        float64
	spawnedThisWave int
}

func New(deps Deps) (*Manager, error) {
	if deps.Store == nil {
		return nil, errors.New("game: nil store")
	}
	if deps.Bus == nil {
		return nil, errors.New("game: nil event bus")
	}
	if deps.World == nil {
		return nil, errors.New("game: nil world")
	}
	if deps.Pool == nil {
		return nil, errors.New("game: nil ascension pool")
	}
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.SystemClock()
	}
	syncEach := deps.EntitySyncEach
	if syncEach == 0 {
		syncEach = 30
	}

	m := &Manager{
		st:             deps.Store,
		bus:            deps.Bus,
		world:          deps.World,
		pool:           deps.Pool,
		logger:         logger,
		metrics:        deps.Metrics,
		publisher:      publisher,
		clock:          clock,
		rng:            rand.New(rand.NewSource(deps.Seed)),
		entitySyncEach: syncEach,
	}

	d, err := dispatch.New(dispatch.Deps{
		Store:       deps.Store,
		Logger:      logger,
		Metrics:     deps.Metrics,
		Publisher:   publisher,
		Clock:       clock,
		Tick:        m.Tick,
		LogCapacity: deps.ActionLogCap,
	})
	if err != nil {
		return nil, err
	}
	m.d = d

	engine, err := skills.NewEngine(skills.Deps{
		Bus:     deps.Bus,
		Host:    m,
		Logger:  logger,
		Metrics: deps.Metrics,
	})
	if err != nil {
		return nil, err
	}
	if len(deps.Catalog) > 0 {
		if err := engine.RegisterAll(deps.Catalog); err != nil {
			return nil, err
		}
	}
	m.engine = engine

	m.d.Use(payloadGuard)
	m.registerReducers()
	m.registerEffects()
	return m, nil
}

// payloadGuard normalizes actions so reducers can index payloads
// without nil checks.
func payloadGuard(action dispatch.Action, _ store.View, next func(dispatch.Action)) {
	if action.Payload == nil {
		action.Payload = map[string]any{}
	}
	next(action)
}

// Dispatcher exposes the action pipeline for the gateway and tests.
func (m *Manager) Dispatcher() *dispatch.Dispatcher { return m.d }

// Engine exposes the skill engine for the snapshot manager.
func (m *Manager) Engine() *skills.Engine { return m.engine }

// StartRun resets per-run state and begins a fresh run with a new id.
func (m *Manager) StartRun(seed string) string {
	runID := uuid.NewString()
	m.world.Reset()
	m.resetWaveDirector()
	m.st.Transaction(func() {
		m.st.ResetSlice(slices.Run)
		m.st.ResetSlice(slices.Combat)
		m.st.ResetSlice(slices.Wave)
		m.st.ResetSlice(slices.Entities)
	})
	m.d.DispatchBatch([]dispatch.Action{
		{Type: dispatch.ActionRunStart, Payload: map[string]any{
			"runId":     runID,
			"seed":      seed,
			"startedAt": float64(m.clock.Now().UnixMilli()),
		}},
		{Type: dispatch.ActionPhaseSet, Payload: map[string]any{"phase": slices.PhaseRunning}},
	})
	return runID
}

// EndRun closes the current run and records progression.
func (m *Manager) EndRun() {
	m.d.DispatchBatch([]dispatch.Action{
		{Type: dispatch.ActionRunEnd},
		{Type: dispatch.ActionPhaseSet, Payload: map[string]any{"phase": slices.PhaseGameOver}},
	})
}

// Advance is the per-frame entry point the external loop drives.
// Order within a frame: tick event, timer decay, wave bookkeeping,
// entity stepping, then the periodic slim entity-count sync.
func (m *Manager) Advance(delta float64) {
	tick := m.tick.Add(1)
	m.bus.Emit(events.Tick, events.TickPayload{Delta: delta})
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionCooldownsTick,
		Payload: map[string]any{"delta": delta},
	})
	m.driveWaves(delta)
	m.stepEntities(delta)
	if tick%m.entitySyncEach == 0 {
		m.syncEntityCounts()
	}
}

// stepEntities advances live actors: projectiles fly and expire,
// enemies close on the player, overlaps deal damage. This is the slim
// in-process stand-in for the external entity layer; plugins interact
// with it through the Host surface.
func (m *Manager) stepEntities(delta float64) {
	player := &m.world.Player
	for _, shot := range m.world.Projectiles() {
		shot.Step(delta)
		if !shot.Alive {
			continue
		}
		for _, enemy := range m.world.Enemies() {
			dx := enemy.X - shot.X
			dy := enemy.Y - shot.Y
			reach := shot.Radius + 12
			if dx*dx+dy*dy > reach*reach {
				continue
			}
			m.bus.Emit(events.EnemyHit, events.EnemyHitPayload{
				EnemyID:      enemy.ID,
				ProjectileID: shot.ID,
				Damage:       shot.Damage,
			})
			m.DamageEnemy(enemy.ID, shot.Damage, shot.Source)
			if shot.Pierce > 0 {
				shot.Pierce--
			} else {
				shot.Alive = false
			}
			if !shot.Alive {
				break
			}
		}
	}
	for _, enemy := range m.world.Enemies() {
		enemy.StepToward(player.X, player.Y, delta)
		dx := enemy.X - player.X
		dy := enemy.Y - player.Y
		reach := player.Radius + 10
		if dx*dx+dy*dy <= reach*reach && enemy.TouchDamage > 0 {
			m.DamagePlayer(enemy.TouchDamage*delta, enemy.Type)
		}
	}
	m.world.Sweep()
}

func (m *Manager) syncEntityCounts() {
	enemies, projectiles, spawnedTotal := m.world.Counts()
	m.d.Dispatch(dispatch.Action{
		Type: dispatch.ActionEntityCounts,
		Payload: map[string]any{
			"enemies":      float64(enemies),
			"projectiles":  float64(projectiles),
			"spawnedTotal": float64(spawnedTotal),
		},
	})
}

// DamagePlayer routes incoming damage through aura reduction, the
// action pipeline and the bus.
func (m *Manager) DamagePlayer(amount float64, source string) {
	if amount <= 0 {
		return
	}
	for _, cfg := range m.engine.PlayerConfigs(m.skillContext()) {
		if reduction, ok := cfg["damageReduction"].(float64); ok && reduction > 0 && reduction < 1 {
			amount *= 1 - reduction
		}
	}
	m.d.Dispatch(dispatch.Action{
		Type:    dispatch.ActionPlayerDamaged,
		Payload: map[string]any{"damage": amount, "source": source},
	})
}

func (m *Manager) skillContext() skills.Context {
	return skills.Context{
		Tick:  m.tick.Load(),
		Level: int(m.num(slices.Skills, "level")),
		Wave:  int(m.num(slices.Wave, "number")),
		View:  m.st,
	}
}

func (m *Manager) num(slice, key string) float64 {
	f, _ := m.st.Get(slice, key).(float64)
	return f
}
