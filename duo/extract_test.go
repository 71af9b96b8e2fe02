package duo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantCode   string
		wantFenced bool
	}{
		{
			name:       "fenced with language tag",
			reply:      "Here you go:\n```python\ndef rev(s):\n    return s[::-1]\n```\nDone.",
			wantCode:   "def rev(s):\n    return s[::-1]",
			wantFenced: true,
		},
		{
			name:       "fenced without language tag",
			reply:      "```\nx = 1\n```",
			wantCode:   "x = 1",
			wantFenced: true,
		},
		{
			name:       "first block wins",
			reply:      "```go\nfirst()\n```\nand\n```go\nsecond()\n```",
			wantCode:   "first()",
			wantFenced: true,
		},
		{
			name:       "inner whitespace kept verbatim",
			reply:      "```\n\n  indented\n\n```",
			wantCode:   "\n  indented\n",
			wantFenced: true,
		},
		{
			name:       "empty block",
			reply:      "```\n```",
			wantCode:   "",
			wantFenced: true,
		},
		{
			name:       "backticks in prose are not a fence",
			reply:      "I wrapped the solution in ``` fences as asked:\n```python\ndef rev(s):\n    return s[::-1]\n```",
			wantCode:   "def rev(s):\n    return s[::-1]",
			wantFenced: true,
		},
		{
			name:       "inline closing backticks do not end the block",
			reply:      "```go\ns := \"```\"\nreturn s\n```",
			wantCode:   "s := \"```\"\nreturn s",
			wantFenced: true,
		},
		{
			name:       "indented fence",
			reply:      "Steps:\n  ```sh\n  go test ./...\n  ```",
			wantCode:   "  go test ./...",
			wantFenced: true,
		},
		{
			name:       "no fence falls back to full reply",
			reply:      "def rev(s): return s[::-1]",
			wantCode:   "def rev(s): return s[::-1]",
			wantFenced: false,
		},
		{
			name:       "unterminated fence falls back",
			reply:      "```python\nprint('hi')",
			wantCode:   "```python\nprint('hi')",
			wantFenced: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, fenced := ExtractCode(tt.reply)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantFenced, fenced)
		})
	}
}
