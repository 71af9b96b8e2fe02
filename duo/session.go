package duo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Session 持有一次任务的多轮 writer/reviewer 上下文。
type Session struct {
	Task       string
	Transcript []Turn
	agent      *Agent
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewSession 创建 session，尚未调用模型。
func NewSession(task string, agent *Agent) *Session {
	limit := rate.Inf
	if agent.cfg.Delay > 0 {
		limit = rate.Every(agent.cfg.Delay)
	}
	return &Session{
		Task:    task,
		agent:   agent,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Run alternates writer and reviewer turns until the reviewer approves or
// maxRounds rounds have been played. Any completion failure ends the run.
func (s *Session) Run(ctx context.Context, maxRounds int) (Result, error) {
	if strings.TrimSpace(s.Task) == "" {
		return Result{}, ErrEmptyTask
	}
	if maxRounds < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidRounds, maxRounds)
	}
	log := s.agent.cfg.Logger.With(zap.String("model", s.agent.cfg.Model))
	s.Transcript = nil

	var code, feedback string
	satisfied := false
	round := 0
	for round < maxRounds && !satisfied {
		round++

		if err := s.wait(ctx, RoleWriter, round); err != nil {
			return Result{}, err
		}
		// 上一轮的代码和意见已在 User 中，history 只放更早的轮次。
		var earlier []Turn
		if n := len(s.Transcript); n > 2 {
			earlier = s.Transcript[:n-2]
		}
		prompt, reply, err := s.agent.Write(ctx, s.Task, code, feedback, earlier)
		if err != nil {
			return Result{}, s.fail(log, RoleWriter, round, err)
		}
		code, _ = ExtractCode(reply)
		s.appendTurn(RoleWriter, round, prompt, reply, code)

		if err := s.wait(ctx, RoleReviewer, round); err != nil {
			return Result{}, err
		}
		prompt, reply, err = s.agent.Review(ctx, s.Task, code)
		if err != nil {
			return Result{}, s.fail(log, RoleReviewer, round, err)
		}
		reviewed, fenced := ExtractCode(reply)
		if !fenced {
			reviewed = ""
		}
		s.appendTurn(RoleReviewer, round, prompt, reply, reviewed)
		feedback = reply

		satisfied = s.agent.cfg.Approval(reply)
		log.Debug("round finished", zap.Int("round", round), zap.Bool("satisfied", satisfied))
	}

	log.Info("collaboration finished", zap.Int("iterations", round), zap.Bool("satisfied", satisfied))
	return Result{
		Task:       s.Task,
		Model:      s.agent.cfg.Model,
		FinalCode:  s.finalCode(),
		Transcript: append([]Turn(nil), s.Transcript...),
		Iterations: round,
		Satisfied:  satisfied,
	}, nil
}

func (s *Session) wait(ctx context.Context, role Role, round int) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &CallError{Role: role, Round: round, Kind: KindTransient, Err: err}
	}
	return nil
}

func (s *Session) fail(log *zap.Logger, role Role, round int, err error) error {
	kind := Classify(err)
	log.Warn("completion failed",
		zap.String("role", string(role)),
		zap.Int("round", round),
		zap.String("kind", string(kind)),
		zap.Error(err))
	return &CallError{Role: role, Round: round, Kind: kind, Err: err}
}

func (s *Session) appendTurn(role Role, round int, prompt Prompt, reply, code string) {
	t := Turn{
		Role:      role,
		Round:     round,
		Prompt:    prompt.User,
		Reply:     reply,
		Code:      code,
		CreatedAt: s.now(),
	}
	s.Transcript = append(s.Transcript, t)
	if s.agent.cfg.OnTurn != nil {
		s.agent.cfg.OnTurn(t)
	}
}

// finalCode 取最近一次 writer 的非空代码。
func (s *Session) finalCode() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		t := s.Transcript[i]
		if t.Role == RoleWriter && t.Code != "" {
			return t.Code
		}
	}
	return ""
}
