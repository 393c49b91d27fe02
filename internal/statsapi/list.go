package statsapi

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// listKeys are the envelope fields checked before any other array field.
var listKeys = []string{"items", "data", "results", "entries", "leaders"}

// list decodes either a bare JSON array or an envelope object holding one
// array field, e.g. {"matches":[...],"total":12}. When an envelope holds
// several unknown arrays the first in key order wins.
type list[T any] struct {
	Items []T
	Total int
}

func (l *list[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if raw, ok := envelope["total"]; ok {
		_ = json.Unmarshal(raw, &l.Total)
	}
	for _, key := range listKeys {
		if raw, ok := envelope[key]; ok {
			return json.Unmarshal(bytes.TrimSpace(raw), &l.Items)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(envelope)) {
		raw := bytes.TrimSpace(envelope[key])
		if len(raw) > 0 && raw[0] == '[' {
			return json.Unmarshal(raw, &l.Items)
		}
	}
	return nil
}
