package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObjectLiteral(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		marker   string
		expected string
		wantErr  bool
	}{
		{
			name:     "simple assignment",
			input:    `window.runParams = {"a": 1};`,
			marker:   "window.runParams",
			expected: `{"a": 1}`,
		},
		{
			name:     "nested objects",
			input:    `var data = {a: {b: {c: 2}}, d: 3}; doSomething();`,
			marker:   "data",
			expected: `{a: {b: {c: 2}}, d: 3}`,
		},
		{
			name:     "braces inside double-quoted string",
			input:    `window.runParams = {"title": "curly } brace { soup", "n": 1};`,
			marker:   "window.runParams",
			expected: `{"title": "curly } brace { soup", "n": 1}`,
		},
		{
			name:     "braces inside single-quoted string",
			input:    `detailData = {desc: 'has a } in it', ok: true}`,
			marker:   "detailData",
			expected: `{desc: 'has a } in it', ok: true}`,
		},
		{
			name:     "escaped quote inside string",
			input:    `runParams = {"s": "he said \"}\"", "x": 1}`,
			marker:   "runParams",
			expected: `{"s": "he said \"}\"", "x": 1}`,
		},
		{
			name:    "marker not present",
			input:   `var somethingElse = {};`,
			marker:  "runParams",
			wantErr: true,
		},
		{
			name:    "marker without object",
			input:   `window.runParams = null;`,
			marker:  "window.runParams",
			wantErr: true,
		},
		{
			name:    "unbalanced literal",
			input:   `runParams = {"a": {"b": 1}`,
			marker:  "runParams",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractObjectLiteral(tt.input, tt.marker)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoLiteral)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseLenient(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, doc map[string]any)
	}{
		{
			name:  "strict JSON",
			input: `{"title": "Widget", "price": 9.99}`,
			check: func(t *testing.T, doc map[string]any) {
				assert.Equal(t, "Widget", doc["title"])
				assert.Equal(t, 9.99, doc["price"])
			},
		},
		{
			name:  "unquoted keys",
			input: `{title: "Widget", price: {value: "12.99"}}`,
			check: func(t *testing.T, doc map[string]any) {
				assert.Equal(t, "Widget", doc["title"])
				price, ok := doc["price"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "12.99", price["value"])
			},
		},
		{
			name:  "single-quoted strings",
			input: `{title: 'Funda Transparente', tags: ['a', 'b']}`,
			check: func(t *testing.T, doc map[string]any) {
				assert.Equal(t, "Funda Transparente", doc["title"])
				assert.Equal(t, []any{"a", "b"}, doc["tags"])
			},
		},
		{
			name:  "trailing commas",
			input: `{items: [1, 2, 3,], last: true,}`,
			check: func(t *testing.T, doc map[string]any) {
				assert.Equal(t, []any{1.0, 2.0, 3.0}, doc["items"])
				assert.Equal(t, true, doc["last"])
			},
		},
		{
			name:  "double quote inside single-quoted string",
			input: `{desc: 'a 5" screen'}`,
			check: func(t *testing.T, doc map[string]any) {
				assert.Equal(t, `a 5" screen`, doc["desc"])
			},
		},
		{
			name:  "colon inside quoted value not treated as key",
			input: `{url: "https://example.com/a", n: 1}`,
			check: func(t *testing.T, doc map[string]any) {
				assert.Equal(t, "https://example.com/a", doc["url"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseLenient(tt.input)
			require.NoError(t, err)
			tt.check(t, doc)
		})
	}
}

func TestParseLenientRejectsGarbage(t *testing.T) {
	_, err := ParseLenient(`function() { return 1; }`)
	assert.Error(t, err)
}
