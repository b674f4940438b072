package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator validates a parsed struct after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractJSON extracts a JSON object or array of type T from raw LLM output.
// It handles markdown code fences, leading/trailing text, nested brackets,
// comments and leading-decimal numbers. If validator is non-nil, the extracted
// value is validated before return. Every failure wraps ErrMalformedResponse.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	block := extractJSONBlock(stripCodeFences(raw))
	if block == "" {
		return zero, fmt.Errorf("%w: no JSON value found in response", ErrMalformedResponse)
	}
	jsonStr := sanitizeJSON(block)

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrMalformedResponse, err)
		}
	}

	return result, nil
}

// stripCodeFences drops markdown fence lines (```json, ```) and keeps
// everything between them.
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// literalState tracks whether a byte walk is inside a JSON string literal.
type literalState struct {
	inString bool
	escaped  bool
}

// step advances over c and reports whether c belongs to a string literal,
// quotes included.
func (st *literalState) step(c byte) bool {
	switch {
	case st.escaped:
		st.escaped = false
		return true
	case st.inString && c == '\\':
		st.escaped = true
		return true
	case c == '"':
		st.inString = !st.inString
		return true
	}
	return st.inString
}

// extractJSONBlock returns the first balanced { ... } or [ ... ] block in s,
// or "" when none closes.
func extractJSONBlock(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}

	var st literalState
	depth := 0
	for i := start; i < len(s); i++ {
		if st.step(s[i]) {
			continue
		}
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// sanitizeJSON repairs the non-JSON habits models have. Outside string
// literals it drops // and /* */ comments and rewrites bare leading-decimal
// numbers such as .8 or -.3 to 0.8 and -0.3.
func sanitizeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var st literalState
	for i := 0; i < len(s); i++ {
		c := s[i]
		if st.step(c) {
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				if end := strings.IndexByte(s[i:], '\n'); end >= 0 {
					i += end - 1
				} else {
					i = len(s)
				}
				continue
			case '*':
				if end := strings.Index(s[i+2:], "*/"); end >= 0 {
					i += end + 3
				} else {
					i = len(s)
				}
				continue
			}
		}

		if c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(prevNonSpace(s, i-1)) {
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
		default:
			return s[i]
		}
	}
	return 0
}

// startsNumber reports whether a value may begin right after c.
func startsNumber(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
