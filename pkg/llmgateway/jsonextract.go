package llmgateway

import (
	"encoding/json"
	"strings"
)

// ExtractJSON is the pure, separately-testable helper every agent uses to
// pull a structured object out of free-form model text. It strips code-fence
// markers if present, locates the first balanced {...} region with a
// brace-depth scanner (preferred over a regex per spec §9's Design Notes),
// and parses it. Returns false if no balanced, parseable object is found —
// callers treat that identically to a Gateway fallback: use the rule-based
// path for this field, or the whole response.
func ExtractJSON(text string) (map[string]any, bool) {
	stripped := stripCodeFences(text)

	start := strings.IndexByte(stripped, '{')
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	end := -1
	for i := start; i < len(stripped); i++ {
		c := stripped[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil, false
	}

	candidate := stripped[start : end+1]
	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, false
	}
	return out, true
}

// stripCodeFences removes leading/trailing ``` or ```json fences that
// models commonly wrap JSON responses in.
func stripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if idx := strings.IndexByte(t, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(t[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			t = t[idx+1:]
		}
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

func isLanguageTag(s string) bool {
	switch strings.ToLower(s) {
	case "json", "js", "javascript":
		return true
	default:
		return false
	}
}

// StringField reads a string field from an extracted JSON object, returning
// "" and false if missing or not a string.
func StringField(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// NumberField reads a numeric field, accepting both JSON numbers and
// numeric strings (models sometimes quote scores).
func NumberField(obj map[string]any, key string) (float64, bool) {
	v, ok := obj[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := json.Number(strings.TrimSpace(n)).Float64()
		return f, err == nil
	}
	return 0, false
}

// StringSliceField reads a []string field from JSON's generic []any shape.
func StringSliceField(obj map[string]any, key string) ([]string, bool) {
	v, ok := obj[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}
