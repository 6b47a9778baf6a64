package skills

import (
	"context"

	"github.com/diegofer25/neon-siege-sub003/logging"
)

const (
	// EventEquipped is emitted when a skill plugin is attached to a slot.
	EventEquipped logging.EventType = "skill.equipped"
	// EventUnequipped is emitted when a skill plugin is detached.
	EventUnequipped logging.EventType = "skill.unequipped"
	// EventCast is emitted when an active skill fires.
	EventCast logging.EventType = "skill.cast"
	// EventRejected is emitted when equip, unequip or cast is refused.
	EventRejected logging.EventType = "skill.rejected"
	// EventStatsSynced is emitted after modifier aggregation publishes
	// resolved stats.
	EventStatsSynced logging.EventType = "skill.stats_synced"
)

// EquipPayload captures a slot assignment.
type EquipPayload struct {
	SkillID string `json:"skillId"`
	Rank    int    `json:"rank"`
	Slot    int    `json:"slot"`
}

// CastPayload captures an active skill activation.
type CastPayload struct {
	SkillID    string  `json:"skillId"`
	Rank       int     `json:"rank"`
	CooldownMS float64 `json:"cooldownMs"`
}

// RejectedPayload captures why a skill operation was refused.
type RejectedPayload struct {
	SkillID   string `json:"skillId"`
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
}

// StatsSyncedPayload carries the resolved stat table.
type StatsSyncedPayload struct {
	Stats map[string]float64 `json:"stats"`
}

func skillRef(skillID string) logging.EntityRef {
	return logging.EntityRef{ID: skillID, Kind: logging.EntityKindSkill}
}

// Equipped publishes a skill equip event.
func Equipped(ctx context.Context, pub logging.Publisher, tick uint64, payload EquipPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEquipped,
		Tick:     tick,
		Actor:    skillRef(payload.SkillID),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySkills,
		Payload:  payload,
	})
}

// Unequipped publishes a skill detach event.
func Unequipped(ctx context.Context, pub logging.Publisher, tick uint64, skillID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUnequipped,
		Tick:     tick,
		Actor:    skillRef(skillID),
		Severity: logging.SeverityInfo,
		Category: logging.CategorySkills,
	})
}

// Cast publishes an active skill activation.
func Cast(ctx context.Context, pub logging.Publisher, tick uint64, payload CastPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCast,
		Tick:     tick,
		Actor:    skillRef(payload.SkillID),
		Severity: logging.SeverityDebug,
		Category: logging.CategorySkills,
		Payload:  payload,
	})
}

// Rejected publishes a refused skill operation.
func Rejected(ctx context.Context, pub logging.Publisher, tick uint64, payload RejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRejected,
		Tick:     tick,
		Actor:    skillRef(payload.SkillID),
		Severity: logging.SeverityWarn,
		Category: logging.CategorySkills,
		Payload:  payload,
	})
}

// StatsSynced publishes the resolved stat table after aggregation.
func StatsSynced(ctx context.Context, pub logging.Publisher, tick uint64, payload StatsSyncedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStatsSynced,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityDebug,
		Category: logging.CategorySkills,
		Payload:  payload,
	})
}
