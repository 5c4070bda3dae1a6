package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/tactical-intel/external/footballapi"
	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
	"github.com/riskibarqy/tactical-intel/internal/usecase"
)

// MatchIntel serves the cached analysis views.
type MatchIntel interface {
	TacticalPlan(ctx context.Context, opponentID, opponentName string) (usecase.TacticalPlan, error)
	AnalyzeMatch(ctx context.Context, opponentID, opponentName string) (usecase.MatchAnalysis, error)
	RecentStats(ctx context.Context, opponentID, opponentName string, limit int) (usecase.RecentStats, error)
}

type QuotaReporter interface {
	UsageStats(ctx context.Context) (usecase.QuotaUsage, error)
}

// CredentialSwitch exposes the provider's primary/backup state.
type CredentialSwitch interface {
	ResetPrimary(ctx context.Context) error
	State(ctx context.Context) footballapi.State
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HandlerConfig struct {
	Intel       MatchIntel
	Quota       QuotaReporter
	Credentials CredentialSwitch
	// Store is optional; the in-memory store has nothing to check.
	Store  HealthChecker
	Logger *logging.Logger
}

type Handler struct {
	intel       MatchIntel
	quota       QuotaReporter
	credentials CredentialSwitch
	store       HealthChecker
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		intel:       cfg.Intel,
		quota:       cfg.Quota,
		credentials: cfg.Credentials,
		store:       cfg.Store,
		logger:      logger.Named("handler"),
		validator:   validator.New(),
	}
}

type opponentRequest struct {
	OpponentID   string `validate:"required,numeric,max=20"`
	OpponentName string `validate:"required,max=100"`
}

type recentStatsRequest struct {
	opponentRequest
	Limit int `validate:"omitempty,min=1,max=20"`
}

type healthDTO struct {
	Status     string `json:"status"`
	Store      string `json:"store"`
	Credential string `json:"credential,omitempty"`
}

type apiUsageDTO struct {
	Status   string             `json:"status"`
	Usage    usecase.QuotaUsage `json:"usage"`
	Warnings []string           `json:"warnings"`
}

type resetPrimaryDTO struct {
	Status     string `json:"status"`
	Credential string `json:"credential"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	out := healthDTO{Status: "ok", Store: "memory"}
	if h.store != nil {
		if err := h.store.HealthCheck(ctx); err != nil {
			h.logger.WarnContext(ctx, "store health check failed", "error", err)
			writeError(ctx, w, fmt.Errorf("%w: store health check failed", usecase.ErrDependencyUnavailable))
			return
		}
		out.Store = "ok"
	}
	if h.credentials != nil {
		out.Credential = string(h.credentials.State(ctx))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetTacticalPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTacticalPlan")
	defer span.End()

	if h.intel == nil {
		writeError(ctx, w, fmt.Errorf("%w: match analysis is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := h.decodeOpponent(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	plan, err := h.intel.TacticalPlan(ctx, req.OpponentID, req.OpponentName)
	if err != nil {
		h.logger.ErrorContext(ctx, "get tactical plan failed", "opponent_id", req.OpponentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, plan)
}

func (h *Handler) GetMatchAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchAnalysis")
	defer span.End()

	if h.intel == nil {
		writeError(ctx, w, fmt.Errorf("%w: match analysis is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := h.decodeOpponent(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.intel.AnalyzeMatch(ctx, req.OpponentID, req.OpponentName)
	if err != nil {
		h.logger.ErrorContext(ctx, "analyze match failed", "opponent_id", req.OpponentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, analysis)
}

func (h *Handler) GetRecentStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRecentStats")
	defer span.End()

	if h.intel == nil {
		writeError(ctx, w, fmt.Errorf("%w: match analysis is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req := recentStatsRequest{opponentRequest: opponentFromRequest(r)}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		req.Limit = limit
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.intel.RecentStats(ctx, req.OpponentID, req.OpponentName, req.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "get recent stats failed", "opponent_id", req.OpponentID, "limit", req.Limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) GetAPIUsage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAPIUsage")
	defer span.End()

	if h.quota == nil {
		writeError(ctx, w, fmt.Errorf("%w: quota tracker is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	usage, err := h.quota.UsageStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get api usage failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, apiUsageDTO{
		Status: "ok",
		Usage:  usage,
		Warnings: []string{
			fmt.Sprintf("Limited to %d API calls per day", usage.DailyLimit),
			"Use cached data when possible",
			"Counter resets daily at midnight",
		},
	})
}

func (h *Handler) ResetPrimaryKey(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetPrimaryKey")
	defer span.End()

	if h.credentials == nil {
		writeError(ctx, w, fmt.Errorf("%w: football api client is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	if err := h.credentials.ResetPrimary(ctx); err != nil {
		h.logger.ErrorContext(ctx, "reset primary key failed", "error", err)
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resetPrimaryDTO{
		Status:     "ok",
		Credential: string(h.credentials.State(ctx)),
	})
}

func (h *Handler) decodeOpponent(ctx context.Context, r *http.Request) (opponentRequest, error) {
	req := opponentFromRequest(r)
	if err := h.validateRequest(ctx, req); err != nil {
		return opponentRequest{}, err
	}
	return req, nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func opponentFromRequest(r *http.Request) opponentRequest {
	return opponentRequest{
		OpponentID:   strings.TrimSpace(r.PathValue("opponentID")),
		OpponentName: strings.TrimSpace(r.URL.Query().Get("opponent_name")),
	}
}
