package duo

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Config tunes a collaboration run.
type Config struct {
	Model string
	// Delay is the fixed pause between two completion calls.
	Delay    time.Duration
	Approval ApprovalFunc
	Logger   *zap.Logger
	// OnTurn 在每个 turn 记录后回调（CLI 打印进度用）。
	OnTurn func(Turn)
}

// Agent 负责驱动 writer/reviewer 两个角色轮流调用 LLM。
type Agent struct {
	llm LLMClient
	cfg Config
}

// NewAgent returns an agent that sends both roles' prompts to llm. A nil
// cfg.Approval selects DefaultApproval.
func NewAgent(llm LLMClient, cfg Config) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if cfg.Approval == nil {
		cfg.Approval = DefaultApproval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Agent{llm: llm, cfg: cfg}, nil
}

// Model reports the model identifier the agent was configured with.
func (a *Agent) Model() string { return a.cfg.Model }

// Collaborate runs a fresh session for task with at most maxRounds rounds.
func (a *Agent) Collaborate(ctx context.Context, task string, maxRounds int) (Result, error) {
	return NewSession(task, a).Run(ctx, maxRounds)
}

// Write asks the writer role for a first or revised implementation.
// earlier is replayed as history; see BuildWriterPrompt.
func (a *Agent) Write(ctx context.Context, task, prevCode, feedback string, earlier []Turn) (Prompt, string, error) {
	prompt := BuildWriterPrompt(task, prevCode, feedback, earlier)
	raw, err := a.llm.Complete(ctx, prompt)
	return prompt, raw, err
}

// Review asks the reviewer role to critique code.
func (a *Agent) Review(ctx context.Context, task, code string) (Prompt, string, error) {
	prompt := BuildReviewerPrompt(task, code)
	raw, err := a.llm.Complete(ctx, prompt)
	return prompt, raw, err
}
