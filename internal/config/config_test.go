package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("FOOTBALL_API_KEY", "primary-key")
	t.Setenv("FOOTBALL_API_BACKUP_KEY", "backup-key")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_RequiresBothAPIKeys(t *testing.T) {
	t.Run("missing primary", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("FOOTBALL_API_KEY", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error without FOOTBALL_API_KEY")
		}
	})

	t.Run("missing backup", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("FOOTBALL_API_BACKUP_KEY", " ")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error without FOOTBALL_API_BACKUP_KEY")
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	for _, key := range []string{
		"FOOTBALL_API_TIMEOUT", "FOOTBALL_API_DAILY_LIMIT", "CACHE_TTL", "CACHE_SINGLE_FLIGHT",
		"REDIS_ENABLED", "LEAGUE_ID", "PRIMARY_TEAM_ID", "PRIMARY_TEAM_NAME", "RECENT_MATCH_LIMIT",
		"PRIMARY_RESET_SCHEDULE", "FOOTBALL_API_SHARED_FAILOVER",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FootballAPITimeout != 30*time.Second {
		t.Fatalf("unexpected FootballAPITimeout: %s", cfg.FootballAPITimeout)
	}
	if cfg.FootballAPIDailyLimit != 100 {
		t.Fatalf("unexpected FootballAPIDailyLimit: %d", cfg.FootballAPIDailyLimit)
	}
	if cfg.CacheTTL != 24*time.Hour || cfg.CacheSingleFlight {
		t.Fatalf("unexpected cache defaults: ttl=%s single_flight=%v", cfg.CacheTTL, cfg.CacheSingleFlight)
	}
	if cfg.RedisEnabled || cfg.FootballAPISharedFailover {
		t.Fatalf("expected in-process defaults for store and failover")
	}
	if cfg.LeagueID != 61 || cfg.PrimaryTeamID != "9764" || cfg.PrimaryTeamName != "Gil Vicente" {
		t.Fatalf("unexpected team defaults: %d %s %s", cfg.LeagueID, cfg.PrimaryTeamID, cfg.PrimaryTeamName)
	}
	if cfg.RecentMatchLimit != 5 || cfg.PrimaryResetSchedule != "@every 1h" {
		t.Fatalf("unexpected defaults: limit=%d schedule=%q", cfg.RecentMatchLimit, cfg.PrimaryResetSchedule)
	}
	if !cfg.FootballAPICircuitEnabled || cfg.FootballAPICircuitFailures != 3 || cfg.FootballAPICircuitOpen != time.Minute {
		t.Fatalf("unexpected circuit defaults: %+v", cfg)
	}
}

func TestLoad_FootballAPIValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad timeout", key: "FOOTBALL_API_TIMEOUT", value: "soon"},
		{name: "zero timeout", key: "FOOTBALL_API_TIMEOUT", value: "0s"},
		{name: "zero daily limit", key: "FOOTBALL_API_DAILY_LIMIT", value: "0"},
		{name: "bad shared failover", key: "FOOTBALL_API_SHARED_FAILOVER", value: "maybe"},
		{name: "zero circuit failures", key: "FOOTBALL_API_CIRCUIT_FAILURE_COUNT", value: "0"},
		{name: "bad cache ttl", key: "CACHE_TTL", value: "bad"},
		{name: "negative league", key: "LEAGUE_ID", value: "-1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_RedisAndCacheParsing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("CACHE_TTL", "12h")
	t.Setenv("CACHE_SINGLE_FLIGHT", "true")
	t.Setenv("FOOTBALL_API_SHARED_FAILOVER", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.RedisEnabled || cfg.RedisURL != "redis://cache:6379/2" {
		t.Fatalf("unexpected redis config: %v %q", cfg.RedisEnabled, cfg.RedisURL)
	}
	if cfg.CacheTTL != 12*time.Hour || !cfg.CacheSingleFlight || !cfg.FootballAPISharedFailover {
		t.Fatalf("unexpected parsed config: %+v", cfg)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_SERVICE_NAME", "tactical-intel-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "tactical-intel-api-test" {
		t.Fatalf("unexpected PyroscopeAppName: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default origins: %v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("csv", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
		}
	})
}
