package stage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/scarflab/scarf/internal/repair"
)

// decodeList decodes a repaired model response that may arrive in one of
// three shapes, tried in fixed priority order: a bare JSON array, an object
// wrapping the array under one of wrapKeys, or a single bare object.
func decodeList[T any](raw string, wrapKeys ...string) ([]T, error) {
	clean := repair.Repair(raw)

	var items []T
	if err := json.Unmarshal([]byte(clean), &items); err == nil {
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &wrapper); err == nil {
		for _, key := range wrapKeys {
			inner, ok := wrapper[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(inner, &items); err == nil {
				return items, nil
			}
		}
		// Not a recognized wrapper; maybe the object is a single item.
		var single T
		if err := json.Unmarshal([]byte(clean), &single); err == nil {
			return []T{single}, nil
		}
	}

	return nil, fmt.Errorf("response is not a list: %s", truncateForLog(clean))
}

// decodeTexts decodes a response expected to be a list of free-text items.
// Items may be plain strings or objects; object items prefer the named
// field and degrade to the first string-valued field.
func decodeTexts(raw string, field string, wrapKeys ...string) ([]string, error) {
	items, err := decodeList[json.RawMessage](raw, wrapKeys...)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if v, ok := obj[field].(string); ok && strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
			continue
		}
		if v, ok := firstStringField(obj); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// firstStringField returns the first non-empty string value in key order,
// so salvage is deterministic.
func firstStringField(obj map[string]interface{}) (string, bool) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := obj[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func truncateForLog(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
