package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/ratelimit"
	"github.com/aiact-formation/auditor/internal/scoring"
)

const maxBodyBytes = 1 << 20

// QuizNotifier delivers quiz results.
type QuizNotifier interface {
	SendQuizResults(ctx context.Context, req model.QuizResultRequest) (model.Delivery, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	engine   *scoring.Engine
	notifier QuizNotifier
	limiter  *ratelimit.Limiter
	config   model.ServerConfig
}

// New creates a new Handler.
func New(e *scoring.Engine, n QuizNotifier, cfg model.ServerConfig) (*Handler, error) {
	if e == nil {
		return nil, errors.New("scoring engine is required")
	}
	if n == nil {
		return nil, errors.New("quiz notifier is required")
	}
	return &Handler{
		engine:   e,
		notifier: n,
		limiter: ratelimit.New(ratelimit.Config{
			PerMinute: cfg.RateLimit,
			Burst:     cfg.RateBurst,
		}),
		config: cfg,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(i18n.Middleware())
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/audit/questions", h.handleQuestions)
		r.Post("/audit/score", h.handleScore)
		r.Post("/audit/report", h.handleReport)
		r.With(h.limiter.Middleware(h.rateLimited)).Post("/quiz-results", h.handleQuizResults)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"bank_version": h.engine.Bank().Version,
		"bank_source":  h.config.BankSource,
		"questions":    len(h.engine.Bank().Questions),
		"rate_limit": map[string]any{
			"enabled": h.limiter.Enabled(),
			"clients": h.limiter.Clients(),
		},
	})
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	plan := model.Plan(r.URL.Query().Get("plan"))
	if plan == "" {
		plan = model.PlanSolo
	}
	if !plan.Valid() {
		writeError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrUnknownPlan"))
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Bank().Catalog(plan))
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var req model.ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Warn("invalid score request", "error", err)
		writeError(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrInvalidJSON"))
		return
	}
	if req.Plan == "" {
		req.Plan = model.PlanSolo
	}
	res := h.engine.Calculate(req.Answers, req.Plan)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request, res ratelimit.Result) {
	slog.Warn("rate limit exceeded", "client", ratelimit.ClientIP(r), "path", r.URL.Path, "retry_after", res.RetryAfter)
	writeError(w, http.StatusTooManyRequests, i18n.T(r.Context(), "ErrRateLimited"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
