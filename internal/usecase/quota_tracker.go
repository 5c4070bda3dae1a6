package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/tactical-intel/internal/platform/kv"
	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
	"github.com/riskibarqy/tactical-intel/internal/platform/metrics"
)

const (
	DefaultDailyLimit = 100

	quotaCounterKey = "football_api:daily_calls"
	quotaResetKey   = "football_api:last_reset"
	quotaDateLayout = "2006-01-02"
)

type QuotaTrackerConfig struct {
	Store      kv.Store
	DailyLimit int64
	// Location decides the calendar day; nil means process-local time.
	Location *time.Location
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// QuotaUsage is the read-only daily usage report.
type QuotaUsage struct {
	DailyLimit     int64   `json:"daily_limit"`
	CallsMade      int64   `json:"calls_made"`
	CallsRemaining int64   `json:"calls_remaining"`
	PercentageUsed float64 `json:"percentage_used"`
	ResetDate      string  `json:"reset_date"`
}

// QuotaTracker counts upstream calls per calendar day in a shared store.
// Rollover and increment are delegated to the store's atomic operations.
type QuotaTracker struct {
	store    kv.Store
	limit    int64
	location *time.Location
	logger   *logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewQuotaTracker(cfg QuotaTrackerConfig) *QuotaTracker {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	limit := cfg.DailyLimit
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &QuotaTracker{
		store:    cfg.Store,
		limit:    limit,
		location: location,
		logger:   logger,
		metrics:  cfg.Metrics,
		now:      now,
	}
}

func (q *QuotaTracker) Limit() int64 {
	return q.limit
}

// CanRequest reports whether another upstream call fits in today's budget.
// It never consumes quota.
func (q *QuotaTracker) CanRequest(ctx context.Context) (bool, error) {
	used, _, err := q.current(ctx)
	if err != nil {
		return false, err
	}
	if used >= q.limit {
		q.logger.WarnContext(ctx, "daily api limit reached", "calls_made", used, "daily_limit", q.limit)
		q.metrics.QuotaRejected()
		return false, nil
	}
	return true, nil
}

// RecordRequest counts one dispatched call. It does not enforce the limit.
func (q *QuotaTracker) RecordRequest(ctx context.Context) (int64, error) {
	if _, err := q.rollover(ctx); err != nil {
		return 0, err
	}

	count, err := q.store.Incr(ctx, quotaCounterKey)
	if err != nil {
		return 0, fmt.Errorf("increment quota counter: %w", err)
	}

	q.logger.InfoContext(ctx, "api call recorded", "calls_made", count, "daily_limit", q.limit)
	q.metrics.QuotaUsage(count, q.limit)
	return count, nil
}

func (q *QuotaTracker) Remaining(ctx context.Context) (int64, error) {
	used, _, err := q.current(ctx)
	if err != nil {
		return 0, err
	}
	return remaining(q.limit, used), nil
}

func (q *QuotaTracker) UsageStats(ctx context.Context) (QuotaUsage, error) {
	used, today, err := q.current(ctx)
	if err != nil {
		return QuotaUsage{}, err
	}

	return QuotaUsage{
		DailyLimit:     q.limit,
		CallsMade:      used,
		CallsRemaining: remaining(q.limit, used),
		PercentageUsed: round2(float64(used) * 100 / float64(q.limit)),
		ResetDate:      today,
	}, nil
}

func (q *QuotaTracker) current(ctx context.Context) (int64, string, error) {
	today, err := q.rollover(ctx)
	if err != nil {
		return 0, "", err
	}

	raw, ok, err := q.store.Get(ctx, quotaCounterKey)
	if err != nil {
		return 0, "", fmt.Errorf("read quota counter: %w", err)
	}
	if !ok || raw == "" {
		return 0, today, nil
	}

	used, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse quota counter %q: %w", raw, err)
	}
	q.metrics.QuotaUsage(used, q.limit)
	return used, today, nil
}

func (q *QuotaTracker) rollover(ctx context.Context) (string, error) {
	today := q.now().In(q.location).Format(quotaDateLayout)

	reset, err := q.store.Rollover(ctx, quotaResetKey, today, quotaCounterKey)
	if err != nil {
		return "", fmt.Errorf("roll over quota day: %w", err)
	}
	if reset {
		q.logger.InfoContext(ctx, "api rate limiter reset for new day", "reset_date", today)
		q.metrics.QuotaUsage(0, q.limit)
	}
	return today, nil
}

func remaining(limit, used int64) int64 {
	if used >= limit {
		return 0
	}
	return limit - used
}
