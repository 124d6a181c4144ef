package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// recoverJSONObject turns raw model output into a decodable JSON object map.
// Model responses are frequently wrapped in fenced code blocks or surrounded
// by prose; direct parse is tried first, then the outermost {...} span.
func recoverJSONObject(raw string) (map[string]json.RawMessage, bool) {
	candidate := stripFences(raw)

	if obj, ok := decodeObject(candidate); ok {
		return obj, true
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start >= 0 && end > start {
		if obj, ok := decodeObject(candidate[start : end+1]); ok {
			return obj, true
		}
	}
	return nil, false
}

func decodeObject(s string) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	// JSON null decodes into a nil map without error; that is not an object.
	if obj == nil {
		return nil, false
	}
	return obj, true
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		s = s[idx+1:]
	} else {
		s = strings.TrimSpace(s)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// stringField coerces a loosely-typed field to a string. Numbers are
// formatted; anything else yields "".
func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// numberField coerces a loosely-typed field to a finite float. Numeric
// strings are accepted; on any failure the field is absent (nil), never zero.
func numberField(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

// objectList decodes an array field into per-entry object maps, skipping
// entries that are not objects. A missing or mistyped field yields an empty
// slice so callers can always iterate.
func objectList(raw json.RawMessage) []map[string]json.RawMessage {
	entries := []map[string]json.RawMessage{}
	if len(raw) == 0 {
		return entries
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return entries
	}
	for _, item := range items {
		if obj, ok := decodeObject(string(item)); ok {
			entries = append(entries, obj)
		}
	}
	return entries
}

// stringList decodes an array field into strings, coercing entry-wise and
// dropping entries that cannot be represented as text.
func stringList(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		if s := stringField(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
