package footballapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/tactical-intel/internal/domain/match"
	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
	"github.com/riskibarqy/tactical-intel/internal/platform/metrics"
	"github.com/riskibarqy/tactical-intel/internal/platform/resilience"
	"github.com/riskibarqy/tactical-intel/internal/usecase"
)

const (
	defaultBaseURL      = "https://free-api-live-football-data.p.rapidapi.com"
	defaultHost         = "free-api-live-football-data.p.rapidapi.com"
	defaultTimeout      = 30 * time.Second
	matchesByLeaguePath = "/football-get-all-matches-by-league"
	maxBodyBytes        = 6 << 20
)

var _ match.Source = (*Client)(nil)

// Quota is the daily budget the client consults before every attempt.
type Quota interface {
	CanRequest(ctx context.Context) (bool, error)
	RecordRequest(ctx context.Context) (int64, error)
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Host       string
	PrimaryKey string
	BackupKey  string
	Timeout    time.Duration
	Quota      Quota
	// Failover defaults to a process-local flag.
	Failover       FailoverFlag
	Logger         *logging.Logger
	Metrics        *metrics.Metrics
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client calls the football data provider with a primary and a backup key.
// After the primary fails once, every call uses the backup until ResetPrimary.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	keys       map[Credential]string
	quota      Quota
	failover   FailoverFlag
	logger     *logging.Logger
	metrics    *metrics.Metrics
	breaker    *resilience.CircuitBreaker
	flight     resilience.Group[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("footballapi")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}
	failover := cfg.Failover
	if failover == nil {
		failover = NewLocalFailover()
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("football api circuit breaker state changed", "from", from, "to", to)
		cfg.Metrics.CircuitState(string(to))
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		host:       host,
		keys: map[Credential]string{
			CredentialPrimary: strings.TrimSpace(cfg.PrimaryKey),
			CredentialBackup:  strings.TrimSpace(cfg.BackupKey),
		},
		quota:    cfg.Quota,
		failover: failover,
		logger:   logger,
		metrics:  cfg.Metrics,
		breaker:  breaker,
	}
}

// ListLeagueMatches fetches every fixture of a league.
func (c *Client) ListLeagueMatches(ctx context.Context, leagueID int64) ([]match.Match, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be greater than zero", usecase.ErrInvalidInput)
	}

	var envelope matchesEnvelope
	params := url.Values{"leagueid": []string{strconv.FormatInt(leagueID, 10)}}
	if err := c.GetJSON(ctx, matchesByLeaguePath, params, &envelope); err != nil {
		return nil, err
	}

	matches := envelope.Response.Matches
	if matches == nil {
		matches = []match.Match{}
	}
	return matches, nil
}

// GetJSON performs Get and decodes the body into target.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, target any) error {
	raw, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "decode %s payload", endpoint), usecase.ErrMalformedData)
	}
	return nil
}

// Get returns the raw body of a successful GET. It fails with
// *UpstreamError only when the active credentials are exhausted, and with
// usecase.ErrQuotaExceeded when the daily budget is spent.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	endpoint = "/" + strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	fullURL := c.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err, _ := c.flight.DoContext(ctx, fullURL, func(runCtx context.Context) ([]byte, error) {
		var body []byte
		runErr := c.breaker.Execute(func() error {
			var fetchErr error
			body, fetchErr = c.fetch(runCtx, endpoint, fullURL)
			return fetchErr
		}, isUpstreamFailure)
		return body, runErr
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "football api circuit breaker rejected request", "endpoint", endpoint, "state", c.breaker.State())
		return nil, &UpstreamError{Endpoint: endpoint, Err: err}
	}
	return raw, err
}

// ResetPrimary returns the client to the primary credential and closes the
// circuit breaker so the next call reaches the provider.
func (c *Client) ResetPrimary(ctx context.Context) error {
	if err := c.failover.Reset(ctx); err != nil {
		return crerr.Wrap(err, "reset primary credential")
	}
	c.breaker.Reset()
	c.logger.InfoContext(ctx, "primary key status reset")
	return nil
}

func (c *Client) State(ctx context.Context) State {
	if c.backupActive(ctx) {
		return StateBackupActive
	}
	return StatePrimaryActive
}

func (c *Client) fetch(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	var primaryErr error

	if !c.backupActive(ctx) {
		raw, err := c.attempt(ctx, CredentialPrimary, fullURL)
		if err == nil {
			return raw, nil
		}
		if !shouldFailover(ctx, err) {
			return nil, err
		}
		primaryErr = err
		c.activateBackup(ctx, endpoint, err)
	}

	raw, err := c.attempt(ctx, CredentialBackup, fullURL)
	if err == nil {
		return raw, nil
	}
	if !shouldFailover(ctx, err) {
		return nil, err
	}

	c.logger.ErrorContext(ctx, "backup key also failed", "endpoint", endpoint, "error", err, "primary_error", primaryErr)
	upstreamErr := &UpstreamError{Endpoint: endpoint, Credential: CredentialBackup, Err: err}
	var statusErr *statusError
	if stderrors.As(err, &statusErr) {
		upstreamErr.StatusCode = statusErr.status
	}
	return nil, upstreamErr
}

// attempt sends one request with one credential. Quota is checked first and
// recorded only once the request is about to be dispatched.
func (c *Client) attempt(ctx context.Context, credential Credential, fullURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.quota != nil {
		ok, err := c.quota.CanRequest(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: check quota: %v", usecase.ErrDependencyUnavailable, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: refusing %s call", usecase.ErrQuotaExceeded, credential)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.keys[credential])

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.quota != nil {
		if _, err := c.quota.RecordRequest(ctx); err != nil {
			c.logger.WarnContext(ctx, "record api call failed", "credential", credential, "error", err)
		}
	}

	c.logger.InfoContext(ctx, "calling football api", "url", fullURL, "credential", credential)
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamAttempt(string(credential), "transport_error", time.Since(started))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, crerr.Newf("send request: %s", c.sanitize(err.Error()))
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if readErr != nil {
		c.metrics.UpstreamAttempt(string(credential), "transport_error", time.Since(started))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, crerr.Wrap(readErr, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.UpstreamAttempt(string(credential), "status_error", time.Since(started))
		return nil, &statusError{status: resp.StatusCode, body: c.sanitize(abbreviateBody(raw))}
	}

	c.metrics.UpstreamAttempt(string(credential), "success", time.Since(started))
	return raw, nil
}

func (c *Client) backupActive(ctx context.Context) bool {
	active, err := c.failover.BackupActive(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "read failover flag failed, assuming primary", "error", err)
		return false
	}
	return active
}

func (c *Client) activateBackup(ctx context.Context, endpoint string, cause error) {
	reason := "upstream failure"
	var statusErr *statusError
	if stderrors.As(cause, &statusErr) && statusErr.credentialRejected() {
		reason = "credential rejected"
	}

	switched, err := c.failover.ActivateBackup(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "persist failover flag failed", "error", err)
	}
	if switched {
		c.metrics.Failover()
	}
	c.logger.WarnContext(ctx, "primary key failed, switching to backup",
		"endpoint", endpoint,
		"reason", reason,
		"error", cause,
	)
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	for _, key := range c.keys {
		if key != "" {
			value = strings.ReplaceAll(value, key, "REDACTED")
		}
	}
	return value
}

// shouldFailover is false for quota refusals and caller cancellation; those
// say nothing about the credential.
func shouldFailover(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if stderrors.Is(err, usecase.ErrQuotaExceeded) || stderrors.Is(err, usecase.ErrDependencyUnavailable) {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func isUpstreamFailure(err error) bool {
	var upstreamErr *UpstreamError
	return stderrors.As(err, &upstreamErr)
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

type matchesEnvelope struct {
	Status   string `json:"status"`
	Response struct {
		Matches []match.Match `json:"matches"`
	} `json:"response"`
}
