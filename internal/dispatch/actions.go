package dispatch

// The fixed action vocabulary. Dispatch does not enforce membership;
// these constants keep emitters and reducer tables in agreement.
const (
	ActionPhaseSet = "PHASE_SET"

	ActionRunStart = "RUN_START"
	ActionRunEnd   = "RUN_END"

	ActionScoreAdd  = "SCORE_ADD"
	ActionGoldAdd   = "GOLD_ADD"
	ActionGoldSpend = "GOLD_SPEND"

	ActionEnemyKilled   = "ENEMY_KILLED"
	ActionPlayerDamaged = "PLAYER_DAMAGED"
	ActionPlayerHealed  = "PLAYER_HEALED"
	ActionShieldSet     = "SHIELD_SET"

	ActionWaveStart    = "WAVE_START"
	ActionWaveProgress = "WAVE_PROGRESS"
	ActionWaveComplete = "WAVE_COMPLETE"

	ActionXPGrant           = "XP_GRANT"
	ActionLevelUp           = "LEVEL_UP"
	ActionAttributeAllocate = "ATTRIBUTE_ALLOCATE"

	ActionSkillEquip    = "SKILL_EQUIP"
	ActionSkillUnequip  = "SKILL_UNEQUIP"
	ActionSkillRankUp   = "SKILL_RANK_UP"
	ActionCooldownStart = "COOLDOWN_START"
	ActionCooldownsTick = "COOLDOWNS_TICK"

	ActionComboIncrement = "COMBO_INCREMENT"
	ActionComboReset     = "COMBO_RESET"
	ActionDamageDealt    = "DAMAGE_DEALT"

	ActionEntityCounts = "ENTITY_COUNTS"

	ActionAscend          = "ASCEND"
	ActionAscensionOffer  = "ASCENSION_OFFER"
	ActionAscensionChoose = "ASCENSION_CHOOSE"
	ActionShardsAdd       = "SHARDS_ADD"

	ActionSettingsSet    = "SETTINGS_SET"
	ActionProgressRecord = "PROGRESS_RECORD"
)
