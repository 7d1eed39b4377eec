package scrape

import (
	"encoding/json"
	"strings"

	"github.com/fwojciec/structex"
)

// maxRepairPasses bounds how many closing brackets a repair may append.
// Gross structural truncation deeper than this is not worth salvaging.
const maxRepairPasses = 16

// ParseResponse parses completion text as structured data. It attempts a
// strict parse first and falls back to bounded syntactic repair: stripping
// markdown fences, trimming prose around the outermost JSON value, and
// closing unterminated strings and brackets. Repair never alters field
// values. If repair fails the result is an EBADRESPONSE error carrying the
// raw text for diagnostics.
//
// In list mode (wantArray) a bare object is tolerated and wrapped in a
// single-element array; in single mode a single-element array is unwrapped.
func ParseResponse(raw string, wantArray bool) (any, error) {
	candidates := []string{
		strings.TrimSpace(raw),
		stripFences(raw),
		trimToOuterValue(stripFences(raw)),
	}
	if repaired := closeUnterminated(trimToOuterValue(stripFences(raw))); repaired != "" {
		candidates = append(candidates, repaired)
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(c), &v); err != nil {
			continue
		}
		return coerceShape(v, wantArray, raw)
	}

	return nil, &structex.ResponseError{Raw: raw, Reason: "response is not valid JSON and could not be repaired"}
}

func coerceShape(v any, wantArray bool, raw string) (any, error) {
	switch t := v.(type) {
	case []any:
		if wantArray {
			return t, nil
		}
		if len(t) == 1 {
			if obj, ok := t[0].(map[string]any); ok {
				return obj, nil
			}
		}
		return nil, &structex.ResponseError{Raw: raw, Reason: "expected a JSON object, got an array"}
	case map[string]any:
		if wantArray {
			return []any{t}, nil
		}
		return t, nil
	}
	return nil, &structex.ResponseError{Raw: raw, Reason: "expected a JSON object or array"}
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag, if one surrounds the payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// trimToOuterValue cuts leading and trailing prose around the outermost
// JSON object or array, e.g. "Here is the data: {...} Hope this helps!".
func trimToOuterValue(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	open := s[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		// No closer at all; return the tail and let closeUnterminated work.
		return s[start:]
	}
	return s[start : end+1]
}

// closeUnterminated appends the closers a truncated JSON value is missing.
// It tracks string state so brackets inside values don't count, and gives up
// beyond maxRepairPasses missing closers. It never touches existing content.
func closeUnterminated(s string) string {
	if s == "" {
		return ""
	}

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !inString && len(stack) == 0 {
		return s
	}
	if len(stack) > maxRepairPasses {
		return ""
	}

	var sb strings.Builder
	if inString {
		sb.WriteString(s)
		sb.WriteByte('"')
	} else {
		// A truncated list often ends mid-separator; a trailing comma would
		// make the closed value invalid JSON.
		sb.WriteString(strings.TrimRight(s, ", \t\n"))
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			sb.WriteByte('}')
		} else {
			sb.WriteByte(']')
		}
	}
	return sb.String()
}
