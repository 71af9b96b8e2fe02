package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devduo/duo"
)

// AgentFactory builds an agent for the requested model ("" means the default).
type AgentFactory func(model string) (*duo.Agent, error)

type Server struct {
	newAgent  AgentFactory
	models    duo.ModelLister
	maxRounds int
	timeout   time.Duration
	store     *runStore
	logger    *zap.Logger
}

// Options 配置 HTTP 服务。
type Options struct {
	MaxRounds int
	// Timeout bounds one collaboration request.
	Timeout time.Duration
	Logger  *zap.Logger
}

type runStore struct {
	mu   sync.Mutex
	runs map[string]duo.Result
}

func newStore() *runStore {
	return &runStore{runs: make(map[string]duo.Result)}
}

func (s *runStore) set(id string, res duo.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = res
}

func (s *runStore) get(id string) (duo.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.runs[id]
	return res, ok
}

func New(newAgent AgentFactory, models duo.ModelLister, opts Options) (*Server, error) {
	if newAgent == nil {
		return nil, errors.New("agent factory required")
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = duo.DefaultMaxRounds
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		newAgent:  newAgent,
		models:    models,
		maxRounds: opts.MaxRounds,
		timeout:   opts.Timeout,
		store:     newStore(),
		logger:    opts.Logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/collaborations", s.handleCollaborationCreate)
	mux.HandleFunc("/api/collaborations/", s.handleCollaborationByID)
	mux.HandleFunc("/api/models", s.handleModels)
	return logMiddleware(s.logger, mux)
}

// --- Handlers ---

type collaborationReq struct {
	Task   string `json:"task"`
	Rounds int    `json:"rounds"`
	Model  string `json:"model"`
}

type collaborationResp struct {
	ID     string     `json:"id"`
	Result duo.Result `json:"result"`
}

type errorResp struct {
	Error  string        `json:"error"`
	Kind   duo.ErrorKind `json:"kind,omitempty"`
	Advice string        `json:"advice,omitempty"`
}

type modelsResp struct {
	Models      []string           `json:"models"`
	Recommended duo.Recommendation `json:"recommended"`
}

func (s *Server) handleCollaborationCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req collaborationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Task) == "" {
		s.writeError(w, http.StatusBadRequest, errorResp{Error: duo.ErrEmptyTask.Error()})
		return
	}
	rounds := req.Rounds
	if rounds == 0 {
		rounds = s.maxRounds
	}
	if rounds < 0 || rounds > s.maxRounds {
		s.writeError(w, http.StatusBadRequest, errorResp{Error: duo.ErrInvalidRounds.Error()})
		return
	}

	agent, err := s.newAgent(req.Model)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := agent.Collaborate(ctx, req.Task, rounds)
	if err != nil {
		kind := duo.KindOf(err)
		s.writeError(w, http.StatusBadGateway, errorResp{
			Error:  err.Error(),
			Kind:   kind,
			Advice: duo.Advice(kind, agent.Model()),
		})
		return
	}

	id := uuid.NewString()
	s.store.set(id, res)
	s.writeJSON(w, http.StatusOK, collaborationResp{ID: id, Result: res})
}

func (s *Server) handleCollaborationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/collaborations/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	res, ok := s.store.get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, errorResp{Error: "collaboration not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, collaborationResp{ID: id, Result: res})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.models == nil {
		s.writeError(w, http.StatusNotImplemented, errorResp{Error: "model listing unavailable"})
		return
	}
	ids, err := s.models.ListModels(r.Context())
	if err != nil {
		kind := duo.Classify(err)
		s.writeError(w, http.StatusBadGateway, errorResp{Error: err.Error(), Kind: kind, Advice: duo.Advice(kind, "")})
		return
	}
	chat := duo.FilterChatModels(ids)
	if chat == nil {
		chat = []string{}
	}
	s.writeJSON(w, http.StatusOK, modelsResp{Models: chat, Recommended: duo.Recommend(chat)})
}

// --- Helpers ---

// writeJSON 写入状态码后编码失败只能记日志，响应头已经发出。
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("encode response", zap.Int("status", status), zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, e errorResp) {
	s.writeJSON(w, status, e)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
