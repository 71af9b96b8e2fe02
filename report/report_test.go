package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devduo/duo"
)

func sampleResult() duo.Result {
	return duo.Result{
		Task:      "reverse a string",
		Model:     "gpt-3.5-turbo",
		FinalCode: "def reverse(s):\n    return s[::-1]",
		Transcript: []duo.Turn{
			{Role: duo.RoleWriter, Round: 1, Reply: "```python\ndef reverse(s):\n    return s[::-1]\n```", Code: "def reverse(s):\n    return s[::-1]"},
			{Role: duo.RoleReviewer, Round: 1, Reply: "Looks good & <safe>."},
		},
		Iterations: 1,
		Satisfied:  true,
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, SaveJSON(path, sampleResult()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{`"task"`, `"final_code"`, `"transcript"`, `"iterations": 1`, `"satisfied": true`} {
		assert.Contains(t, string(raw), key)
	}

	got, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, sampleResult().FinalCode, got.FinalCode)
	assert.Len(t, got.Transcript, 2)
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleResult())
	assert.Contains(t, out, "- **Task:** reverse a string")
	assert.Contains(t, out, "### Round 1: writer")
	assert.Contains(t, out, "### Round 1: reviewer")
	assert.Contains(t, out, "```\ndef reverse(s):\n    return s[::-1]\n```")
}

func TestFenceGrowsPastBackticks(t *testing.T) {
	out := fence("x = '```'")
	assert.True(t, strings.HasPrefix(out, "````\n"))
}

func TestSaveHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.html")
	require.NoError(t, SaveHTML(path, sampleResult()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "<h1>DevDuo collaboration</h1>")
	assert.Contains(t, html, "<pre><code>def reverse(s):")
	assert.Contains(t, html, `<code class="language-python">`)
	assert.Contains(t, html, "Looks good &amp;")
	// 模型回复里的原始 HTML 不会原样输出。
	assert.NotContains(t, html, "<safe>")
}
