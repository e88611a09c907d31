package advisor

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// cleanModelJSON strips the markdown fences and the prose a model may put
// around a JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '[' to the last ']'.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

// items decodes the model answer as a list. An object answer is searched for
// the list at path.
func items(raw, path string) ([]any, error) {
	clean := cleanModelJSON(raw)
	var parsed any
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if _, ok := parsed.(map[string]any); ok {
		v, err := jsonpath.Get(path, parsed)
		if err != nil {
			return nil, fmt.Errorf("no %s in answer: %w", path, err)
		}
		parsed = v
	}
	list, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("answer is a %T, not a list", parsed)
	}
	return list, nil
}

// get returns the value at path in v, or nil.
func get(v any, path string) any {
	val, err := jsonpath.Get(path, v)
	if err != nil {
		return nil
	}
	// jsonpath returns a list for wildcard paths: keep the first answer.
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		val = list[0]
	}
	return val
}

// getString returns the string at path in v, or "".
func getString(v any, path string) string {
	s, _ := get(v, path).(string)
	return strings.TrimSpace(s)
}

// getInt returns the number at path in v rounded to an int, and whether it is one.
func getInt(v any, path string) (int, bool) {
	n, ok := get(v, path).(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return int(math.Round(n)), true
}
