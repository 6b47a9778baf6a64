package waves

import (
	"context"

	"github.com/diegofer25/neon-siege-sub003/logging"
)

const (
	// EventRunStarted is emitted when a fresh run begins.
	EventRunStarted logging.EventType = "wave.run_started"
	// EventRunEnded is emitted when the run finishes or the player dies.
	EventRunEnded logging.EventType = "wave.run_ended"
	// EventStarted is emitted when a wave begins spawning.
	EventStarted logging.EventType = "wave.started"
	// EventCompleted is emitted when the last enemy of a wave dies.
	EventCompleted logging.EventType = "wave.completed"
	// EventEnemyKilled is emitted for each enemy death.
	EventEnemyKilled logging.EventType = "wave.enemy_killed"
)

// RunPayload describes a run boundary.
type RunPayload struct {
	RunID string `json:"runId"`
	Seed  string `json:"seed,omitempty"`
	Wave  int    `json:"wave,omitempty"`
	Score int    `json:"score,omitempty"`
}

// WavePayload describes a single wave.
type WavePayload struct {
	Wave    int `json:"wave"`
	Enemies int `json:"enemies,omitempty"`
	Bonus   int `json:"bonus,omitempty"`
}

// KillPayload describes an enemy death reward.
type KillPayload struct {
	EnemyID string  `json:"enemyId"`
	XP      float64 `json:"xp"`
	Gold    int     `json:"gold"`
}

// RunStarted publishes a run start event.
func RunStarted(ctx context.Context, pub logging.Publisher, tick uint64, payload RunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRunStarted,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		RunID:    payload.RunID,
	})
}

// RunEnded publishes a run end event.
func RunEnded(ctx context.Context, pub logging.Publisher, tick uint64, payload RunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRunEnded,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		RunID:    payload.RunID,
	})
}

// Started publishes a wave start event.
func Started(ctx context.Context, pub logging.Publisher, tick uint64, payload WavePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStarted,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// Completed publishes a wave completion event.
func Completed(ctx context.Context, pub logging.Publisher, tick uint64, payload WavePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCompleted,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// EnemyKilled publishes an enemy death event.
func EnemyKilled(ctx context.Context, pub logging.Publisher, tick uint64, payload KillPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEnemyKilled,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: payload.EnemyID, Kind: logging.EntityKindEnemy},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
