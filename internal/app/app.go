package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/tactical-intel/external/footballapi"
	"github.com/riskibarqy/tactical-intel/internal/config"
	"github.com/riskibarqy/tactical-intel/internal/infrastructure/redisstore"
	"github.com/riskibarqy/tactical-intel/internal/interfaces/httpapi"
	"github.com/riskibarqy/tactical-intel/internal/jobs"
	"github.com/riskibarqy/tactical-intel/internal/platform/kv"
	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
	"github.com/riskibarqy/tactical-intel/internal/platform/metrics"
	"github.com/riskibarqy/tactical-intel/internal/platform/resilience"
	"github.com/riskibarqy/tactical-intel/internal/usecase"
)

// App is the wired service: HTTP server plus the primary reset scheduler.
type App struct {
	Server    *http.Server
	Scheduler *jobs.Scheduler

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	app := &App{}
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	store, health, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		app.closers = append(app.closers, closer.Close)
	}

	quota := usecase.NewQuotaTracker(usecase.QuotaTrackerConfig{
		Store:      store,
		DailyLimit: cfg.FootballAPIDailyLimit,
		Logger:     logger,
		Metrics:    m,
	})

	var failover footballapi.FailoverFlag = footballapi.NewLocalFailover()
	if cfg.FootballAPISharedFailover {
		failover = footballapi.NewSharedFailover(store)
	}

	client := footballapi.NewClient(footballapi.ClientConfig{
		BaseURL:    cfg.FootballAPIBaseURL,
		Host:       cfg.FootballAPIHost,
		PrimaryKey: cfg.FootballAPIKey,
		BackupKey:  cfg.FootballAPIBackupKey,
		Timeout:    cfg.FootballAPITimeout,
		Quota:      quota,
		Failover:   failover,
		Logger:     logger,
		Metrics:    m,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballAPICircuitEnabled,
			FailureThreshold: cfg.FootballAPICircuitFailures,
			OpenTimeout:      cfg.FootballAPICircuitOpen,
			HalfOpenMaxReq:   cfg.FootballAPICircuitHalfOpenRq,
		},
	})

	analysis := usecase.NewMatchAnalysisService(usecase.MatchAnalysisConfig{
		Source:          client,
		Store:           store,
		LeagueID:        cfg.LeagueID,
		PrimaryTeamID:   cfg.PrimaryTeamID,
		PrimaryTeamName: cfg.PrimaryTeamName,
		RecentLimit:     cfg.RecentMatchLimit,
		CacheTTL:        cfg.CacheTTL,
		SingleFlight:    cfg.CacheSingleFlight,
		Logger:          logger,
		Metrics:         m,
	})

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.SchedulePrimaryReset(cfg.PrimaryResetSchedule, client); err != nil {
		app.close()
		return nil, err
	}
	app.Scheduler = scheduler

	handler := httpapi.NewHandler(httpapi.HandlerConfig{
		Intel:       analysis,
		Quota:       quota,
		Credentials: client,
		Store:       health,
		Logger:      logger,
	})
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handler:            handler,
		Logger:             logger,
		Metrics:            m,
		MetricsEnabled:     cfg.MetricsEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	if cfg.HTTPAddr == "" {
		app.close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return app, nil
}

// Shutdown stops the scheduler, drains the server and releases the store.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := a.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (a *App) close() error {
	var firstErr error
	for _, closer := range a.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func openStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (kv.Store, httpapi.HealthChecker, error) {
	if !cfg.RedisEnabled {
		logger.Info("using in-memory store", "reason", "REDIS_ENABLED=false")
		return kv.NewMemoryStore(), nil, nil
	}

	store, err := redisstore.Open(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.RedisTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("open redis store: %w", err)
	}
	logger.Info("redis store connected", "prefix", cfg.RedisPrefix)
	return store, store, nil
}
