package store

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record is a stored document in its JSON form, used by the backends that
// keep documents as JSON (redis, postgres).
type Record struct {
	ID   string
	Data []byte
}

// ToFields turns a record value into a JSON field map.
func ToFields(record any) (map[string]any, error) {
	if m, ok := record.(map[string]any); ok {
		return m, nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return fields, nil
}

// MergeFields applies a partial update to an encoded document.
func MergeFields(data []byte, fields map[string]any) ([]byte, error) {
	var current map[string]any
	if err := json.Unmarshal(data, &current); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if current == nil {
		current = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		current[k] = v
	}
	return json.Marshal(current)
}

// SortRecords orders records by a numeric or string field. Records missing
// the field sort last. The sort is stable so equal keys keep store order.
func SortRecords(records []Record, field string, desc bool) {
	if field == "" {
		return
	}

	keys := make(map[string]any, len(records))
	for _, r := range records {
		var fields map[string]any
		if err := json.Unmarshal(r.Data, &fields); err == nil {
			keys[r.ID] = fields[field]
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := keys[records[i].ID], keys[records[j].ID]
		if a == nil || b == nil {
			return a != nil
		}
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

func less(a, b any) bool {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

// RecordsSnapshot converts ordered records into a snapshot.
func RecordsSnapshot(records []Record) Snapshot {
	snap := make(Snapshot, 0, len(records))
	for _, r := range records {
		snap = append(snap, JSONDocument(r.ID, r.Data))
	}
	return snap
}
