package transport

import (
	"encoding/json"
	"sort"
)

const fallbackErrorMessage = "Request failed"

// knownErrorFields are checked first, in order. They match the field names
// the platform's serializers emit for the most common failures.
var knownErrorFields = []string{"email", "password", "non_field_errors"}

// scalarErrorFields hold a plain string message when present.
var scalarErrorFields = []string{"detail", "error"}

// ExtractErrorMessage pulls a single human-readable message out of an
// unstructured key -> message(s) error payload. Precedence: a known field
// first, then a scalar detail/error field, then the first value of the
// first key when that value is a list, then a generic fallback.
//
// This is a heuristic tuned to the payload shapes the platform actually
// produces, not a guarantee about arbitrary bodies.
func ExtractErrorMessage(raw []byte) string {
	if len(raw) == 0 {
		return fallbackErrorMessage
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload) == 0 {
		return fallbackErrorMessage
	}

	for _, field := range knownErrorFields {
		if msg, ok := firstListItem(payload[field]); ok {
			return msg
		}
	}
	for _, field := range scalarErrorFields {
		if value, ok := payload[field]; ok {
			var msg string
			if err := json.Unmarshal(value, &msg); err == nil && msg != "" {
				return msg
			}
		}
	}

	// "First key" is undefined for a JSON object; keys are sorted so the
	// choice is at least deterministic.
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if msg, ok := firstListItem(payload[key]); ok {
			return msg
		}
	}
	return fallbackErrorMessage
}

func firstListItem(value json.RawMessage) (string, bool) {
	if value == nil {
		return "", false
	}
	var items []string
	if err := json.Unmarshal(value, &items); err != nil || len(items) == 0 {
		return "", false
	}
	return items[0], true
}
