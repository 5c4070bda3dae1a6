package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/tactical-intel/external/footballapi"
	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
	"github.com/riskibarqy/tactical-intel/internal/platform/metrics"
	"github.com/riskibarqy/tactical-intel/internal/usecase"
)

type fakeIntel struct {
	calls     int
	gotID     string
	gotName   string
	gotLimit  int
	err       error
	fromCache bool
}

func (f *fakeIntel) TacticalPlan(_ context.Context, id, name string) (usecase.TacticalPlan, error) {
	f.calls++
	f.gotID, f.gotName = id, name
	if f.err != nil {
		return usecase.TacticalPlan{}, f.err
	}
	source := usecase.DataSourceAPI
	if f.fromCache {
		source = usecase.DataSourceCache
	}
	return usecase.TacticalPlan{Opponent: name, DataSource: source}, nil
}

func (f *fakeIntel) AnalyzeMatch(_ context.Context, id, name string) (usecase.MatchAnalysis, error) {
	f.calls++
	f.gotID, f.gotName = id, name
	if f.err != nil {
		return usecase.MatchAnalysis{}, f.err
	}
	return usecase.MatchAnalysis{Match: "Gil Vicente vs " + name, DataSource: usecase.DataSourceAPI}, nil
}

func (f *fakeIntel) RecentStats(_ context.Context, id, name string, limit int) (usecase.RecentStats, error) {
	f.calls++
	f.gotID, f.gotName, f.gotLimit = id, name, limit
	if f.err != nil {
		return usecase.RecentStats{}, f.err
	}
	return usecase.RecentStats{TeamID: id, TeamName: name}, nil
}

type fakeQuota struct {
	usage usecase.QuotaUsage
}

func (f fakeQuota) UsageStats(context.Context) (usecase.QuotaUsage, error) {
	return f.usage, nil
}

type fakeCredentials struct {
	state  footballapi.State
	resets int
}

func (f *fakeCredentials) ResetPrimary(context.Context) error {
	f.resets++
	f.state = footballapi.StatePrimaryActive
	return nil
}

func (f *fakeCredentials) State(context.Context) footballapi.State {
	return f.state
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) HealthCheck(context.Context) error {
	return f.err
}

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       map[string]any `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func newTestRouter(cfg HandlerConfig) http.Handler {
	cfg.Logger = logging.NewNop()
	return NewRouter(RouterConfig{
		Handler:            NewHandler(cfg),
		Logger:             logging.NewNop(),
		Metrics:            metrics.New(),
		MetricsEnabled:     true,
		CORSAllowedOrigins: []string{"*"},
		InternalJobToken:   "job-token",
	})
}

func serve(t *testing.T, router http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHandler_GetTacticalPlan(t *testing.T) {
	intel := &fakeIntel{fromCache: true}
	router := newTestRouter(HandlerConfig{Intel: intel})

	rec, body := serve(t, router, httptest.NewRequest(http.MethodGet, "/v1/tactical-plan/8?opponent_name=Porto", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if intel.gotID != "8" || intel.gotName != "Porto" {
		t.Fatalf("unexpected opponent forwarded: id=%q name=%q", intel.gotID, intel.gotName)
	}
	if got, _ := body.Data["data_source"].(string); got != usecase.DataSourceCache {
		t.Fatalf("expected data_source=cache, got %v", body.Data["data_source"])
	}
}

func TestHandler_RejectsInvalidOpponent(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing name", path: "/v1/tactical-plan/8"},
		{name: "blank name", path: "/v1/match-analysis/8?opponent_name=%20"},
		{name: "non numeric id", path: "/v1/tactical-plan/porto?opponent_name=Porto"},
		{name: "bad limit", path: "/v1/opponents/8/recent-stats?opponent_name=Porto&limit=abc"},
		{name: "limit out of range", path: "/v1/opponents/8/recent-stats?opponent_name=Porto&limit=50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intel := &fakeIntel{}
			router := newTestRouter(HandlerConfig{Intel: intel})

			rec, body := serve(t, router, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if body.Error == nil || body.Error.Status != "INVALID_ARGUMENT" {
				t.Fatalf("expected INVALID_ARGUMENT error, got %+v", body.Error)
			}
			if intel.calls != 0 {
				t.Fatalf("expected no pipeline call, got %d", intel.calls)
			}
		})
	}
}

func TestHandler_PipelineErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "quota", err: fmt.Errorf("list league matches: %w", usecase.ErrQuotaExceeded), want: http.StatusTooManyRequests},
		{name: "upstream", err: &footballapi.UpstreamError{Endpoint: "/matches", StatusCode: 500}, want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(HandlerConfig{Intel: &fakeIntel{err: tt.err}})

			rec, body := serve(t, router, httptest.NewRequest(http.MethodGet, "/v1/match-analysis/8?opponent_name=Porto", nil))
			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
			if body.Error == nil || body.Error.Code != tt.want {
				t.Fatalf("expected error body with code %d, got %+v", tt.want, body.Error)
			}
		})
	}
}

func TestHandler_GetRecentStatsForwardsLimit(t *testing.T) {
	intel := &fakeIntel{}
	router := newTestRouter(HandlerConfig{Intel: intel})

	rec, _ := serve(t, router, httptest.NewRequest(http.MethodGet, "/v1/opponents/8/recent-stats?opponent_name=Porto&limit=3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if intel.gotLimit != 3 {
		t.Fatalf("expected limit 3, got %d", intel.gotLimit)
	}

	rec, _ = serve(t, router, httptest.NewRequest(http.MethodGet, "/v1/opponents/8/recent-stats?opponent_name=Porto", nil))
	if rec.Code != http.StatusOK || intel.gotLimit != 0 {
		t.Fatalf("expected default limit passthrough, status=%d limit=%d", rec.Code, intel.gotLimit)
	}
}

func TestHandler_GetAPIUsage(t *testing.T) {
	router := newTestRouter(HandlerConfig{Quota: fakeQuota{usage: usecase.QuotaUsage{
		DailyLimit:     100,
		CallsMade:      25,
		CallsRemaining: 75,
		PercentageUsed: 25,
		ResetDate:      "2026-10-14",
	}}})

	rec, body := serve(t, router, httptest.NewRequest(http.MethodGet, "/v1/api-usage", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	warnings, _ := body.Data["warnings"].([]any)
	if len(warnings) != 3 || warnings[0] != "Limited to 100 API calls per day" {
		t.Fatalf("unexpected warnings: %v", body.Data["warnings"])
	}
	usage, _ := body.Data["usage"].(map[string]any)
	if got, _ := usage["calls_remaining"].(float64); got != 75 {
		t.Fatalf("unexpected usage: %v", body.Data["usage"])
	}
}

func TestHandler_ResetPrimaryRequiresJobToken(t *testing.T) {
	creds := &fakeCredentials{state: footballapi.StateBackupActive}
	router := newTestRouter(HandlerConfig{Credentials: creds})

	rec, _ := serve(t, router, httptest.NewRequest(http.MethodPost, "/v1/internal/football-api/reset-primary", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}
	if creds.resets != 0 {
		t.Fatalf("reset must not run without a token")
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/football-api/reset-primary", nil)
	req.Header.Set("X-Internal-Job-Token", "job-token")
	rec, body := serve(t, router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if creds.resets != 1 || body.Data["credential"] != string(footballapi.StatePrimaryActive) {
		t.Fatalf("unexpected reset result: resets=%d data=%v", creds.resets, body.Data)
	}
}

func TestHandler_Healthz(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		router := newTestRouter(HandlerConfig{
			Store:       fakeHealth{},
			Credentials: &fakeCredentials{state: footballapi.StateBackupActive},
		})

		rec, body := serve(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if body.Data["store"] != "ok" || body.Data["credential"] != string(footballapi.StateBackupActive) {
			t.Fatalf("unexpected health body: %v", body.Data)
		}
	})

	t.Run("store down", func(t *testing.T) {
		router := newTestRouter(HandlerConfig{Store: fakeHealth{err: errors.New("dial tcp: refused")}})

		rec, _ := serve(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}
	})
}

func TestRouter_ExposesRequestMetrics(t *testing.T) {
	router := newTestRouter(HandlerConfig{Quota: fakeQuota{usage: usecase.QuotaUsage{DailyLimit: 100}}})

	serve(t, router, httptest.NewRequest(http.MethodGet, "/v1/api-usage", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `tactical_intel_http_requests_total{method="GET",route="/v1/api-usage",status_code="200"} 1`) {
		t.Fatalf("request counter missing from /metrics output")
	}
}
