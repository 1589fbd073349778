// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// FLOW TYPE
// =============================================================================

// Flow is a named, backend-defined conversation pipeline.
//
// Preferences holds the raw preference specs as returned by /api/flows/:
// each entry maps a setting name to an object that may contain a
// "default_value" key. Use TransformPreferences to flatten them into
// effective settings.
type Flow struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// TransformPreferences flattens a raw preference-spec map into a map of
// setting name to default value. Entries whose value is not an object, or
// an object without a "default_value" key, are dropped.
//
// The transform is pure and idempotent: it is reapplied every time a
// chat's effective preferences are recomputed from the latest flow
// catalog, so flow definition changes are always picked up live.
func TransformPreferences(raw map[string]any) map[string]any {
	result := make(map[string]any)
	if raw == nil {
		return result
	}

	for key, value := range raw {
		spec, ok := value.(map[string]any)
		if !ok {
			continue
		}
		def, ok := spec["default_value"]
		if !ok {
			continue
		}
		result[key] = def
	}

	return result
}

// HistoryWindow extracts the history_window preference as an integer.
// Returns 0 when the preference is absent or not numeric. JSON decoding
// produces float64 for numbers, so both are accepted.
func HistoryWindow(preferences map[string]any) int {
	v, ok := preferences["history_window"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
