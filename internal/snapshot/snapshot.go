// Package snapshot implements versioned save/restore: full-state
// capture, a thin adapter over the blob store, forward-only migration,
// and a busy guard that refuses re-entrant use instead of tearing
// state.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/diegofer25/neon-siege-sub003/internal/ascension"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/savestore"
	"github.com/diegofer25/neon-siege-sub003/internal/skills"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
	"github.com/diegofer25/neon-siege-sub003/logging"
	logsnapshots "github.com/diegofer25/neon-siege-sub003/logging/snapshots"
)

// CurrentVersion is the snapshot schema written by Capture. Loads of
// strictly older versions migrate forward; newer versions are
// rejected.
const CurrentVersion = 3

// Snapshot is one immutable capture of full game state.
type Snapshot struct {
	Version   int              `json:"version"`
	SavedAt   int64            `json:"savedAt"`
	Store     store.Serialized `json:"store"`
	Entities  map[string]any   `json:"entities"`
	Plugins   PluginsPayload   `json:"plugins"`
	Ascension ascension.State  `json:"ascension"`
}

// PluginsPayload carries the equipped skill ids plus any private
// plugin state, keyed by skill id.
type PluginsPayload struct {
	ActiveIDs   []string                  `json:"activeIds"`
	PluginState map[string]map[string]any `json:"pluginState,omitempty"`
}

// RestorePayload is what Restore hands back for the caller to
// re-materialize live objects. The manager never constructs entities
// itself.
type RestorePayload struct {
	Entities map[string]any
	Plugins  PluginsPayload
}

// Deps carries the manager's collaborators. Store and Engine are
// required; Blob may be nil when persistence is disabled.
type Deps struct {
	Store   *store.Store
	Engine  *skills.Engine
	World   *entity.World
	Pool    *ascension.Pool
	Blob    savestore.Store
	Backend string

	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	Clock     logging.Clock
	Tick      func() uint64
}

// Manager owns capture, persistence and restore. The busy flag
// serializes its operations: a call made while another runs is
// rejected outright, never queued, so a snapshot can never observe a
// half-written sibling.
type Manager struct {
	store   *store.Store
	engine  *skills.Engine
	world   *entity.World
	pool    *ascension.Pool
	blob    savestore.Store
	backend string

	logger    telemetry.Logger
	metrics   telemetry.Metrics
	publisher logging.Publisher
	clock     logging.Clock
	tick      func() uint64

	busy bool
}

func NewManager(deps Deps) (*Manager, error) {
	if deps.Store == nil {
		return nil, errors.New("snapshot: nil store")
	}
	if deps.Engine == nil {
		return nil, errors.New("snapshot: nil skill engine")
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
	tick := deps.Tick
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	backend := deps.Backend
	if backend == "" {
		backend = "memory"
	}
	return &Manager{
		store:     deps.Store,
		engine:    deps.Engine,
		world:     deps.World,
		pool:      deps.Pool,
		blob:      deps.Blob,
		backend:   backend,
		logger:    logger,
		metrics:   deps.Metrics,
		publisher: publisher,
		clock:     clock,
		tick:      tick,
	}, nil
}

// Capture serializes the full game state: every store slice, a slim
// projection of the live entities, the active plugin ids with their
// private state, and the ascension pool.
func (m *Manager) Capture() *Snapshot {
	if m == nil {
		return nil
	}
	if !m.enter("capture") {
		return nil
	}
	defer m.exit()
	return m.capture()
}

func (m *Manager) capture() *Snapshot {
	snap := &Snapshot{
		Version:  CurrentVersion,
		SavedAt:  m.clock.Now().UnixMilli(),
		Store:    m.store.Serialize(),
		Entities: m.projectEntities(),
		Plugins: PluginsPayload{
			ActiveIDs:   m.engine.ActiveIDs(),
			PluginState: m.engine.SaveStates(),
		},
		Ascension: m.pool.Save(),
	}
	if m.metrics != nil {
		m.metrics.Add("snapshots_captured", 1)
	}
	logsnapshots.Captured(context.Background(), m.publisher, m.tick(), logsnapshots.CapturedPayload{
		Version: snap.Version,
		Slices:  len(snap.Store.Slices),
	})
	return snap
}

// projectEntities reduces the hot per-frame entity arrays to counts
// and a player summary. The full arrays are never persisted; a
// restored run re-materializes from these hints plus the wave slice.
func (m *Manager) projectEntities() map[string]any {
	if m.world == nil {
		return map[string]any{}
	}
	enemies, projectiles, spawnedTotal := m.world.Counts()
	return map[string]any{
		"enemies":      float64(enemies),
		"projectiles":  float64(projectiles),
		"spawnedTotal": float64(spawnedTotal),
		"player": map[string]any{
			"x": m.world.Player.X,
			"y": m.world.Player.Y,
		},
	}
}

// Save captures and persists the current state under key. Returns
// false when the manager is busy, persistence is disabled, or the
// backend write fails.
func (m *Manager) Save(ctx context.Context, key string) bool {
	if m == nil {
		return false
	}
	if !m.enter("save") {
		return false
	}
	defer m.exit()
	if m.blob == nil {
		m.logger.Printf("snapshot: save skipped, no persistence backend")
		return false
	}
	snap := m.capture()
	payload, err := json.Marshal(snap)
	if err != nil {
		m.logger.Printf("snapshot: marshal failed: %v", err)
		return false
	}
	if err := m.blob.Put(ctx, key, payload); err != nil {
		m.logger.Printf("snapshot: save %q failed: %v", key, err)
		if m.metrics != nil {
			m.metrics.Add("snapshot_save_failures", 1)
		}
		return false
	}
	if m.metrics != nil {
		m.metrics.Add("snapshots_saved", 1)
	}
	logsnapshots.Saved(ctx, m.publisher, m.tick(), logsnapshots.SavedPayload{
		Key:     key,
		Backend: m.backend,
		Bytes:   len(payload),
	})
	return true
}

// Load reads a snapshot from the backend, detects its version and
// migrates it forward. A missing key, corrupt payload or unsupported
// version all return nil; the caller treats nil as "no usable save".
func (m *Manager) Load(ctx context.Context, key string) *Snapshot {
	if m == nil {
		return nil
	}
	if !m.enter("load") {
		return nil
	}
	defer m.exit()
	if m.blob == nil {
		m.logger.Printf("snapshot: load skipped, no persistence backend")
		return nil
	}
	payload, err := m.blob.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, savestore.ErrNotFound) {
			m.logger.Printf("snapshot: load %q failed: %v", key, err)
		}
		return nil
	}
	snap, fromVersion, err := m.decode(payload)
	if err != nil {
		m.logger.Printf("snapshot: rejecting save %q: %v", key, err)
		if m.metrics != nil {
			m.metrics.Add("snapshots_rejected", 1)
		}
		logsnapshots.Rejected(ctx, m.publisher, m.tick(), logsnapshots.RejectedPayload{
			Key:     key,
			Version: fromVersion,
			Reason:  err.Error(),
		})
		return nil
	}
	logsnapshots.Loaded(ctx, m.publisher, m.tick(), logsnapshots.LoadedPayload{
		Key:         key,
		Version:     snap.Version,
		FromVersion: fromVersion,
		Migrated:    fromVersion != snap.Version,
	})
	return snap
}

// Restore applies a snapshot: all store slices inside one transaction,
// then the ascension pool, returning the entity and plugin payload for
// the caller to re-materialize. Nothing is applied when the snapshot
// is nil or malformed.
func (m *Manager) Restore(snap *Snapshot) *RestorePayload {
	if m == nil || snap == nil {
		return nil
	}
	if !m.enter("restore") {
		return nil
	}
	defer m.exit()
	if err := m.store.Restore(snap.Store); err != nil {
		m.logger.Printf("snapshot: restore failed: %v", err)
		if m.metrics != nil {
			m.metrics.Add("snapshot_restore_failures", 1)
		}
		return nil
	}
	m.pool.Restore(snap.Ascension)
	if m.metrics != nil {
		m.metrics.Add("snapshots_restored", 1)
	}
	logsnapshots.Restored(context.Background(), m.publisher, m.tick(), snap.Version)
	return &RestorePayload{
		Entities: store.CloneRecord(snap.Entities),
		Plugins: PluginsPayload{
			ActiveIDs:   append([]string(nil), snap.Plugins.ActiveIDs...),
			PluginState: clonePluginState(snap.Plugins.PluginState),
		},
	}
}

// enter takes the busy guard or rejects the operation, logging the
// block. Operations are never queued.
func (m *Manager) enter(op string) bool {
	if m.busy {
		m.logger.Printf("snapshot: %s blocked, another operation is in flight", op)
		if m.metrics != nil {
			m.metrics.Add("snapshot_blocked", 1)
		}
		logsnapshots.Busy(context.Background(), m.publisher, m.tick(), op)
		return false
	}
	m.busy = true
	return true
}

func (m *Manager) exit() {
	m.busy = false
}

func clonePluginState(state map[string]map[string]any) map[string]map[string]any {
	if state == nil {
		return nil
	}
	out := make(map[string]map[string]any, len(state))
	for id, record := range state {
		out[id] = store.CloneRecord(record)
	}
	return out
}
