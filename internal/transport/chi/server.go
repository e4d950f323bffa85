// Package chi exposes the conversational API over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/athenaeum-labs/minerva/internal/domain"
	logpkg "github.com/athenaeum-labs/minerva/internal/logger"
	"github.com/athenaeum-labs/minerva/internal/metrics"
)

const maxMessageLen = 8192

// ChatService answers one conversational turn.
type ChatService interface {
	Respond(ctx context.Context, message string, history []domain.Message) (string, error)
}

// Pinger probes a dependency for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the HTTP handlers.
type Server struct {
	chat      ChatService
	store     Pinger
	embedding domain.HealthChecker
	logger    *zap.Logger
}

// NewServer creates the API server.
func NewServer(chat ChatService, store Pinger, logger *zap.Logger) *Server {
	return &Server{chat: chat, store: store, logger: logger}
}

// WithEmbeddingCheck adds the embedding backend to the health report.
func (s *Server) WithEmbeddingCheck(hc domain.HealthChecker) *Server {
	s.embedding = hc
	return s
}

// Router assembles the full middleware and route stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/v1/chat", s.Chat)

	return r
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string        `json:"message"`
	History []chatMessage `json:"history,omitempty"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	TurnID string `json:"turn_id"`
}

// Chat handles POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "message is required")
		return
	}
	if len(req.Message) > maxMessageLen {
		writeError(w, http.StatusBadRequest, "validation_failed", "message too long")
		return
	}

	history, err := historyFromRequest(req.History)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	turnID := uuid.NewString()
	logger := logpkg.FromContext(r.Context()).With(zap.String("turn_id", turnID))

	reply, err := s.chat.Respond(r.Context(), req.Message, history)
	if err != nil {
		s.handleDomainError(w, logger, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, TurnID: turnID})
}

// historyFromRequest validates and converts prior turns. Only user and
// assistant messages are accepted; the system prompt is server-owned.
func historyFromRequest(history []chatMessage) ([]domain.Message, error) {
	out := make([]domain.Message, 0, len(history))
	for i, m := range history {
		switch domain.Role(m.Role) {
		case domain.RoleUser:
			out = append(out, domain.UserMessage(m.Content))
		case domain.RoleAssistant:
			out = append(out, domain.AssistantMessage(m.Content))
		default:
			return nil, fmt.Errorf("history[%d]: role must be \"user\" or \"assistant\"", i)
		}
	}
	return out, nil
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		checks["database"] = "unhealthy"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "healthy"
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(r.Context()); err != nil {
			checks["embedding"] = "unhealthy"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["embedding"] = "healthy"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrChatBackend):
		logger.Warn("chat backend error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "chat_backend_error", "the language model is unavailable")
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		logger.Warn("embedding provider error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "embedding_provider_error", "the embedding service is unavailable")
	default:
		logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
