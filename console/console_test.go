package console

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devduo/duo"
)

func newPlain(t *testing.T, input string) (*Console, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c, err := New(strings.NewReader(input), &out, Options{Plain: true})
	require.NoError(t, err)
	return c, &out
}

func TestSelectModel(t *testing.T) {
	models := []string{"gpt-3.5-turbo", "gpt-4o"}
	tests := []struct {
		input string
		want  string
	}{
		{"2\n", "gpt-4o"},
		{"1\n", "gpt-3.5-turbo"},
		{"\n", "gpt-3.5-turbo"},
		{"9\n", "gpt-3.5-turbo"},
		{"", "gpt-3.5-turbo"},
	}
	for _, tt := range tests {
		c, _ := newPlain(t, tt.input)
		got, err := c.SelectModel(models)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestSelectModelEmptyList(t *testing.T) {
	c, out := newPlain(t, "")
	got, err := c.SelectModel(nil)
	require.NoError(t, err)
	assert.Equal(t, duo.FallbackModel, got)
	assert.Contains(t, out.String(), "No models detected")
}

func TestSelectTask(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3\n", ExampleTasks[2]},
		{"\n", ExampleTasks[0]},
		{"sort a linked list\n", "sort a linked list"},
		{"0\n", "0"},
	}
	for _, tt := range tests {
		c, _ := newPlain(t, tt.input)
		got, err := c.SelectTask()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
		c, _ := newPlain(t, input)
		got, err := c.Confirm("Save?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestPrintResultAndTurn(t *testing.T) {
	c, out := newPlain(t, "")
	c.PrintTurn(duo.Turn{Role: duo.RoleReviewer, Round: 2, Reply: "Looks good."})
	c.PrintResult(duo.Result{Task: "reverse", FinalCode: "print(1)", Iterations: 2, Satisfied: true})

	s := out.String()
	assert.Contains(t, s, "[round 2] Reviewer:")
	assert.Contains(t, s, "Looks good.")
	assert.Contains(t, s, "Iterations: 2")
	assert.Contains(t, s, "print(1)")
	assert.Contains(t, s, "Reviewer is satisfied.")
}

func TestPrintFailure(t *testing.T) {
	c, out := newPlain(t, "")
	err := &duo.CallError{Role: duo.RoleWriter, Round: 1, Kind: duo.KindModelAccess, Err: errors.New("model_not_found")}
	c.PrintFailure(fmt.Errorf("collaborate: %w", err), "gpt-4")

	s := out.String()
	assert.Contains(t, s, "CRITICAL ERROR")
	assert.Contains(t, s, duo.FallbackModel)
}

func TestMarkdownRenderer(t *testing.T) {
	var out bytes.Buffer
	c, err := New(strings.NewReader(""), &out, Options{Style: "notty", WordWrap: 80})
	require.NoError(t, err)

	c.Markdown("# Heading\n\nSome **bold** text.")
	assert.Contains(t, out.String(), "Heading")
	assert.Contains(t, out.String(), "bold")
}
