// Package parse holds the tolerant parsing utilities for embedded
// structured data: marketplaces inline their product state as JavaScript
// object literals, which are close to JSON but not strict JSON.
package parse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var ErrNoLiteral = errors.New("no object literal found")

// ExtractObjectLiteral returns the balanced {...} block starting at the
// first '{' at or after marker. The scan is string- and escape-aware, so
// braces inside quoted values do not unbalance it. Known failure mode:
// a literal containing unterminated strings or regex literals with braces
// may be cut short; callers must treat a parse failure as a fall-through,
// never as a fatal error.
func ExtractObjectLiteral(s, marker string) (string, error) {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return "", ErrNoLiteral
	}

	start := strings.IndexByte(s[idx:], '{')
	if start < 0 {
		return "", ErrNoLiteral
	}
	start += idx

	depth := 0
	inString := false
	var quote byte
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				inString = false
			}
			continue
		}

		switch ch {
		case '"', '\'':
			inString = true
			quote = ch
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", ErrNoLiteral
}

var (
	unquotedKeyPattern   = regexp.MustCompile(`([,{]\s*)([A-Za-z_$][A-Za-z0-9_$]*)\s*:`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseLenient parses a quasi-JSON object literal. Strict JSON is tried
// first; on failure the input is normalized (single-quoted strings to
// double quotes, unquoted keys quoted, trailing commas removed) and
// parsed again. Normalization is regex-based and may silently mis-parse
// deeply nested or string-embedded braces; the waterfall treats any error
// here as a signal to fall through to the DOM strategy.
func ParseLenient(raw string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		return doc, nil
	}

	normalized := normalizeQuotes(raw)
	normalized = unquotedKeyPattern.ReplaceAllString(normalized, `$1"$2":`)
	normalized = trailingCommaPattern.ReplaceAllString(normalized, `$1`)

	if err := json.Unmarshal([]byte(normalized), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeQuotes rewrites single-quoted JS strings as double-quoted JSON
// strings, escaping any double quotes they contain.
func normalizeQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inSingle := false
	inDouble := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if escaped {
			// \' inside a single-quoted string becomes a plain quote.
			if inSingle && ch == '\'' {
				b.WriteByte('\'')
			} else {
				b.WriteByte('\\')
				b.WriteByte(ch)
			}
			escaped = false
			continue
		}

		switch {
		case ch == '\\' && (inSingle || inDouble):
			escaped = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteByte('"')
		case ch == '"' && inSingle:
			b.WriteString(`\"`)
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteByte('"')
		default:
			b.WriteByte(ch)
		}
	}

	return b.String()
}
