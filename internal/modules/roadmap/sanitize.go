package roadmap

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var itemsArrayRE = regexp.MustCompile(`"items"\s*:\s*\[`)

// Sanitized is the outcome of Sanitize. Repaired is set when the text had to
// be cut back or closed.
type Sanitized struct {
	JSON     string
	Repaired bool
	// KeptItems counts complete items kept by a truncation repair.
	KeptItems int
}

// Sanitize turns raw generator text into parseable JSON. Valid input comes
// back unchanged. truncated reports that the generator stopped at its output
// token limit.
func Sanitize(raw string, truncated bool) (Sanitized, error) {
	if json.Valid([]byte(raw)) {
		return Sanitized{JSON: raw}, nil
	}

	s := stripCodeFences(raw)
	s = startAtObject(s)
	if json.Valid([]byte(s)) {
		return Sanitized{JSON: s}, nil
	}

	trimmed := strings.TrimSpace(s)
	closed := strings.HasSuffix(trimmed, "}") || strings.HasSuffix(trimmed, "]")
	if closed && !truncated {
		if fixed := stripTrailingCommas(trimmed); json.Valid([]byte(fixed)) {
			return Sanitized{JSON: fixed, Repaired: true}, nil
		}
	}

	if out, kept, ok := repairItems(s); ok {
		return Sanitized{JSON: out, Repaired: true, KeptItems: kept}, nil
	}
	if fixed := stripTrailingCommas(trimmed); json.Valid([]byte(fixed)) {
		return Sanitized{JSON: fixed, Repaired: true}, nil
	}
	return Sanitized{}, fmt.Errorf("%w: could not repair %d bytes of output", ErrInvalidJSON, len(raw))
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// language tag such as ```json
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// startAtObject drops any prose before the first '{'.
func startAtObject(s string) string {
	if i := strings.IndexByte(s, '{'); i > 0 {
		return s[i:]
	}
	return s
}

// repairItems cuts s back to the last complete object inside the "items"
// array and closes every container still open at that point. With no
// complete object the array is closed empty.
func repairItems(s string) (string, int, bool) {
	loc := itemsArrayRE.FindStringIndex(s)
	if loc == nil {
		return "", 0, false
	}
	arrOpen := loc[1]
	if inStringAt(s, loc[0]) {
		return "", 0, false
	}

	var (
		depth    int
		inString bool
		escaped  bool
		lastEnd  = -1
		kept     int
	)
scan:
	for i := arrOpen; i < len(s); i++ {
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
			depth++
		case '}':
			depth--
			if depth == 0 {
				lastEnd = i + 1
				kept++
			}
		case ']':
			if depth == 0 {
				// the array itself completed; keep it whole
				lastEnd = i
				break scan
			}
			depth--
		}
	}

	cut := arrOpen
	if lastEnd > 0 {
		cut = lastEnd
	}
	prefix := strings.TrimRight(s[:cut], " \t\r\n")
	prefix = strings.TrimSuffix(prefix, ",")
	out := prefix + closersFor(prefix)
	if !json.Valid([]byte(out)) {
		return "", 0, false
	}
	return out, kept, true
}

// closersFor returns the tokens that close every container open at the end
// of s, innermost first.
func closersFor(s string) string {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
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
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	var b strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}

func inStringAt(s string, pos int) bool {
	inString, escaped := false, false
	for i := 0; i < pos && i < len(s); i++ {
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
		if c == '"' {
			inString = true
		}
	}
	return inString
}

// stripTrailingCommas removes commas directly before a closing bracket or
// brace, outside string literals.
func stripTrailingCommas(s string) string {
	var (
		b        strings.Builder
		inString bool
		escaped  bool
	)
	b.Grow(len(s))
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
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\r' || s[j] == '\t') {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
