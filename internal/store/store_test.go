package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Stamp int64  `json:"stamp"`
}

func TestSortRecords(t *testing.T) {
	records := []Record{
		{ID: "a", Data: []byte(`{"stamp": 10}`)},
		{ID: "b", Data: []byte(`{"stamp": 30}`)},
		{ID: "c", Data: []byte(`{}`)},
		{ID: "d", Data: []byte(`{"stamp": 20}`)},
	}

	t.Run("descending", func(t *testing.T) {
		rs := append([]Record(nil), records...)
		SortRecords(rs, "stamp", true)
		assert.Equal(t, []string{"b", "d", "a", "c"}, recordIDs(rs))
	})

	t.Run("ascending", func(t *testing.T) {
		rs := append([]Record(nil), records...)
		SortRecords(rs, "stamp", false)
		assert.Equal(t, []string{"a", "d", "b", "c"}, recordIDs(rs))
	})

	t.Run("no field keeps order", func(t *testing.T) {
		rs := append([]Record(nil), records...)
		SortRecords(rs, "", true)
		assert.Equal(t, []string{"a", "b", "c", "d"}, recordIDs(rs))
	})
}

func TestDecode(t *testing.T) {
	snap := RecordsSnapshot([]Record{
		{ID: "x1", Data: []byte(`{"name":"first","stamp":1}`)},
		{ID: "x2", Data: []byte(`{"name":"second","stamp":2}`)},
	})

	items, err := Decode(snap, func(i *item, id string) { i.ID = id })
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, item{ID: "x1", Name: "first", Stamp: 1}, items[0])
	assert.Equal(t, "x2", items[1].ID)
}

func TestDecode_PropagatesError(t *testing.T) {
	snap := Snapshot{JSONDocument("bad", []byte(`{not json`))}
	_, err := Decode(snap, func(i *item, id string) {})
	assert.Error(t, err)
}

func TestMergeFields(t *testing.T) {
	merged, err := MergeFields([]byte(`{"name":"a","stamp":1}`), map[string]any{"name": "b"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(merged, &got))
	assert.Equal(t, "b", got["name"])
	assert.Equal(t, float64(1), got["stamp"])
}

func TestToFields(t *testing.T) {
	fields, err := ToFields(item{ID: "ignored", Name: "n", Stamp: 5})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "n", "stamp": float64(5)}, fields)
}

func recordIDs(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
