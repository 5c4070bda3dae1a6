package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tactical-intel/internal/platform/metrics"
)

func handle(mux *http.ServeMux, m *metrics.Metrics, pattern string, h http.Handler) {
	mux.Handle(pattern, instrumentRoute(m, pattern, h))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics, metricsEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsEnabled {
		mux.Handle("GET /metrics", m.Handler())
	}
}

func registerIntelRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics) {
	handle(mux, m, "GET /v1/tactical-plan/{opponentID}", http.HandlerFunc(handler.GetTacticalPlan))
	handle(mux, m, "GET /v1/match-analysis/{opponentID}", http.HandlerFunc(handler.GetMatchAnalysis))
	handle(mux, m, "GET /v1/opponents/{opponentID}/recent-stats", http.HandlerFunc(handler.GetRecentStats))
	handle(mux, m, "GET /v1/api-usage", http.HandlerFunc(handler.GetAPIUsage))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics, internalJobToken string) {
	handle(mux, m, "POST /v1/internal/football-api/reset-primary",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ResetPrimaryKey)))
}
