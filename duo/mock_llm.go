package duo

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// MockLLM 按顺序返回预设回复，不调用外部模型；本地调试和测试用。
type MockLLM struct {
	// Replies are returned in order. Once exhausted Reply is consulted.
	Replies []string
	// Reply builds a response from the prompt when Replies is exhausted.
	Reply func(call int, prompt Prompt) (string, error)
	Models []string

	mu      sync.Mutex
	prompts []Prompt
}

func (m *MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	call := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if call < len(m.Replies) {
		return m.Replies[call], nil
	}
	if m.Reply != nil {
		return m.Reply(call, prompt)
	}
	return "", errors.New("mock llm: no reply scripted")
}

func (m *MockLLM) ListModels(context.Context) ([]string, error) {
	return m.Models, nil
}

// Prompts returns every prompt received so far.
func (m *MockLLM) Prompts() []Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Prompt(nil), m.prompts...)
}

// EchoReply 把用户任务拼成一个代码块，reviewer 一律通过。用于 --mock 离线运行。
func EchoReply(_ int, prompt Prompt) (string, error) {
	if prompt.Role == RoleReviewer {
		return "The implementation looks good. No further changes needed.", nil
	}
	var sb strings.Builder
	sb.WriteString("Here is a first implementation.\n\n")
	sb.WriteString("```python\n")
	sb.WriteString("# ")
	sb.WriteString(firstLine(prompt.User))
	sb.WriteString("\ndef solve(*args):\n    raise NotImplementedError\n")
	sb.WriteString("```\n")
	return sb.String(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
