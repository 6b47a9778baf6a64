package store

import "errors"

// Serialized is the persistable projection of the store: deep-copied
// slice records plus the version counter and commit timestamp at the
// moment of capture.
type Serialized struct {
	Version   uint64                    `json:"version"`
	Timestamp int64                     `json:"timestamp"`
	Slices    map[string]map[string]any `json:"slices"`
}

// Serialize deep-copies every slice into a Serialized payload.
func (s *Store) Serialize() Serialized {
	if s == nil {
		return Serialized{}
	}
	out := Serialized{
		Version:   s.version,
		Timestamp: s.timestamp,
		Slices:    make(map[string]map[string]any, len(s.records)),
	}
	for name, record := range s.records {
		out.Slices[name] = CloneRecord(record)
	}
	return out
}

// Restore replaces slice contents from a Serialized payload inside a
// single transaction. The payload is authoritative for the key set of
// each slice it names: missing keys are deleted, new keys added.
// Slices absent from the payload keep their current state; slice names
// the store does not know are warned about and skipped. The live
// version counter is process-local and is not rewound.
func (s *Store) Restore(data Serialized) error {
	if s == nil {
		return errors.New("store: nil store")
	}
	if data.Slices == nil {
		return errors.New("store: restore payload has no slices")
	}
	s.Transaction(func() {
		for _, name := range s.order {
			incoming, ok := data.Slices[name]
			if !ok {
				continue
			}
			s.restoreSlice(name, incoming)
		}
		for name := range data.Slices {
			if _, ok := s.records[name]; !ok {
				s.warnUnknownSlice("restore", name)
			}
		}
	})
	return nil
}

func (s *Store) restoreSlice(name string, incoming map[string]any) {
	record := s.records[name]
	changed := make([]string, 0, len(incoming))
	for key := range record {
		if _, keep := incoming[key]; !keep {
			delete(record, key)
			changed = append(changed, key)
		}
	}
	for key, value := range incoming {
		cloned := Clone(value)
		current, exists := record[key]
		if exists && sameValue(current, cloned) {
			continue
		}
		record[key] = cloned
		changed = append(changed, key)
	}
	if len(changed) == 0 {
		return
	}
	s.markDirty(name, changed)
}
