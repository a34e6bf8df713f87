// Package repair normalizes raw model output into parseable JSON on a
// best-effort basis. Models wrap JSON in code fences, echo the schema they
// were shown, prepend prose, and concatenate objects; Repair peels all of
// that away. The result may still be invalid JSON - callers must handle a
// subsequent parse failure themselves.
package repair

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Repair applies the fallback chain in fixed order: strip code fences,
// extract the outermost JSON span, discard echoed JSON-Schema payloads,
// salvage the first value from trailing-data failures, and finally split
// concatenated objects. Repair is idempotent: repairing already-clean JSON
// returns it unchanged.
func Repair(raw string) string {
	return repairText(strings.TrimSpace(raw))
}

func repairText(s string) string {
	s = stripFences(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return strings.TrimSpace(s)
	}
	end := strings.LastIndexAny(s, "}]")
	if end <= start {
		return strings.TrimSpace(s)
	}
	candidate := s[start : end+1]

	var whole interface{}
	if err := json.Unmarshal([]byte(candidate), &whole); err == nil {
		if isSchemaEcho(whole) {
			// An echoed schema with nothing after it leaves nothing to
			// salvage.
			if rest := strings.TrimSpace(s[end+1:]); rest != "" {
				return repairText(rest)
			}
			return strings.TrimSpace(s)
		}
		return candidate
	}

	// The span did not parse as a whole; try just the first value.
	dec := json.NewDecoder(strings.NewReader(candidate))
	var first json.RawMessage
	if err := dec.Decode(&first); err == nil {
		rest := candidate[dec.InputOffset():]
		var fv interface{}
		if json.Unmarshal(first, &fv) == nil && isSchemaEcho(fv) {
			return repairText(rest)
		}
		return strings.TrimSpace(string(first))
	}

	if out, ok := splitConcatenated(candidate); ok {
		return out
	}
	return strings.TrimSpace(s)
}

// stripFences removes markdown code-fence lines regardless of language tag.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// isSchemaEcho heuristically detects a JSON-Schema document echoed back by
// the model: a definitions map, or properties + type:object + title
// together.
func isSchemaEcho(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	if _, ok := m["$defs"]; ok {
		return true
	}
	if _, ok := m["definitions"]; ok {
		return true
	}
	_, hasProps := m["properties"]
	_, hasTitle := m["title"]
	typ, _ := m["type"].(string)
	return hasProps && hasTitle && typ == "object"
}

var objectBoundary = regexp.MustCompile(`\}\s*\{`)

// splitConcatenated splits adjacent top-level objects and tries the last
// segment, then the first.
func splitConcatenated(s string) (string, bool) {
	bounds := objectBoundary.FindAllStringIndex(s, -1)
	if len(bounds) == 0 {
		return "", false
	}
	var segments []string
	prev := 0
	for _, b := range bounds {
		segments = append(segments, s[prev:b[0]]+"}")
		prev = b[1] - 1 // keep the opening brace for the next segment
	}
	segments = append(segments, s[prev:])

	for _, i := range []int{len(segments) - 1, 0} {
		candidate := strings.TrimSpace(segments[i])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}
