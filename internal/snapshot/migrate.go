package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/diegofer25/neon-siege-sub003/internal/ascension"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
)

// decode parses a raw save payload, detects its version and migrates
// strictly older formats forward. Versions newer than CurrentVersion
// are rejected; there is no forward migration. Returns the usable
// snapshot and the version the payload arrived as.
func (m *Manager) decode(payload []byte) (*Snapshot, int, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, 0, fmt.Errorf("corrupt save payload: %w", err)
	}
	version := versionOf(raw)
	switch {
	case version > CurrentVersion:
		return nil, version, fmt.Errorf("save version %d is newer than supported %d", version, CurrentVersion)
	case version == CurrentVersion:
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, version, fmt.Errorf("corrupt v%d save: %w", version, err)
		}
		if snap.Store.Slices == nil {
			return nil, version, fmt.Errorf("v%d save missing store slices", version)
		}
		return &snap, version, nil
	default:
		snap, err := m.migrateLegacy(raw, version)
		if err != nil {
			return nil, version, err
		}
		return snap, version, nil
	}
}

// versionOf reads the version field; saves predating the field count
// as version 1.
func versionOf(raw map[string]any) int {
	if v, ok := raw["version"].(float64); ok && v > 0 {
		return int(v)
	}
	return 1
}

// migrateLegacy rebuilds a v1/v2 flat save as a current snapshot. The
// legacy format kept a handful of top-level scalars plus opaque skills
// and settings objects. Every field absent from the old payload stays
// at its initial-slice default; the migration is recovery, not
// validation, so missing fields are logged and defaulted rather than
// refused.
func (m *Manager) migrateLegacy(raw map[string]any, version int) (*Snapshot, error) {
	records := make(map[string]map[string]any, len(slices.Names()))
	var defaulted []string
	for _, name := range slices.Names() {
		record, _ := slices.Initial(name)
		records[name] = record
	}

	if wave, ok := raw["wave"].(float64); ok {
		records[slices.Run]["wave"] = wave
	} else {
		defaulted = append(defaulted, "wave")
	}
	if score, ok := raw["score"].(float64); ok {
		records[slices.Run]["score"] = score
	} else {
		defaulted = append(defaulted, "score")
	}
	if gold, ok := raw["gold"].(float64); ok {
		records[slices.Run]["gold"] = gold
	} else {
		defaulted = append(defaulted, "gold")
	}

	// The legacy skills object carries over wholesale: its keys were
	// already the current slice's vocabulary in v2, and v1 payloads
	// simply had fewer of them.
	if legacySkills, ok := raw["skills"].(map[string]any); ok {
		records[slices.Skills] = store.CloneRecord(legacySkills)
	} else {
		defaulted = append(defaulted, "skills")
	}
	if legacySettings, ok := raw["settings"].(map[string]any); ok {
		record := records[slices.Settings]
		for key, value := range legacySettings {
			record[key] = store.Clone(value)
		}
	} else {
		defaulted = append(defaulted, "settings")
	}

	if best, ok := raw["bestWave"].(float64); ok {
		records[slices.Progression]["bestWave"] = best
	}
	if best, ok := raw["bestScore"].(float64); ok {
		records[slices.Progression]["bestScore"] = best
	}

	if len(defaulted) > 0 {
		m.logger.Printf("snapshot: v%d save missing %v, using defaults", version, defaulted)
	}

	savedAt, _ := raw["savedAt"].(float64)
	snap := &Snapshot{
		Version: CurrentVersion,
		SavedAt: int64(savedAt),
		Store: store.Serialized{
			Slices: records,
		},
		Entities:  map[string]any{},
		Plugins:   PluginsPayload{},
		Ascension: ascension.State{},
	}
	if m.metrics != nil {
		m.metrics.Add("snapshots_migrated", 1)
	}
	return snap, nil
}
