package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	InternalJobToken   string
	MetricsEnabled     bool

	RedisEnabled bool
	RedisURL     string
	RedisPrefix  string
	RedisTimeout time.Duration

	FootballAPIBaseURL           string
	FootballAPIHost              string
	FootballAPIKey               string
	FootballAPIBackupKey         string
	FootballAPITimeout           time.Duration
	FootballAPIDailyLimit        int64
	FootballAPISharedFailover    bool
	FootballAPICircuitEnabled    bool
	FootballAPICircuitFailures   int
	FootballAPICircuitOpen       time.Duration
	FootballAPICircuitHalfOpenRq int
	PrimaryResetSchedule         string

	CacheTTL          time.Duration
	CacheSingleFlight bool

	LeagueID         int64
	PrimaryTeamID    string
	PrimaryTeamName  string
	RecentMatchLimit int

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	redisURL := strings.TrimSpace(getEnv("REDIS_URL", "redis://localhost:6379/0"))
	if redisEnabled && redisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL is required when REDIS_ENABLED=true")
	}
	redisTimeout, err := time.ParseDuration(getEnv("REDIS_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_TIMEOUT: %w", err)
	}
	if redisTimeout <= 0 {
		return Config{}, fmt.Errorf("REDIS_TIMEOUT must be > 0")
	}

	apiKey := strings.TrimSpace(getEnv("FOOTBALL_API_KEY", ""))
	if apiKey == "" {
		return Config{}, fmt.Errorf("FOOTBALL_API_KEY is required")
	}
	backupKey := strings.TrimSpace(getEnv("FOOTBALL_API_BACKUP_KEY", ""))
	if backupKey == "" {
		return Config{}, fmt.Errorf("FOOTBALL_API_BACKUP_KEY is required")
	}
	apiTimeout, err := time.ParseDuration(getEnv("FOOTBALL_API_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_TIMEOUT: %w", err)
	}
	if apiTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_TIMEOUT must be > 0")
	}
	dailyLimit, err := getEnvAsInt("FOOTBALL_API_DAILY_LIMIT", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_DAILY_LIMIT: %w", err)
	}
	if dailyLimit < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_API_DAILY_LIMIT must be >= 1")
	}
	sharedFailover, err := strconv.ParseBool(getEnv("FOOTBALL_API_SHARED_FAILOVER", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_SHARED_FAILOVER: %w", err)
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("FOOTBALL_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailures, err := getEnvAsInt("FOOTBALL_API_CIRCUIT_FAILURE_COUNT", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailures < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpen, err := time.ParseDuration(getEnv("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpen <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpen, err := getEnvAsInt("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpen < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cacheSingleFlight, err := strconv.ParseBool(getEnv("CACHE_SINGLE_FLIGHT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_SINGLE_FLIGHT: %w", err)
	}

	leagueID, err := strconv.ParseInt(strings.TrimSpace(getEnv("LEAGUE_ID", "61")), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUE_ID: %w", err)
	}
	if leagueID <= 0 {
		return Config{}, fmt.Errorf("LEAGUE_ID must be > 0")
	}
	recentLimit, err := getEnvAsInt("RECENT_MATCH_LIMIT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECENT_MATCH_LIMIT: %w", err)
	}
	if recentLimit < 1 {
		return Config{}, fmt.Errorf("RECENT_MATCH_LIMIT must be >= 1")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	// Upstream calls may take the full provider timeout twice on failover.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "75s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "tactical-intel-api"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                  readTimeout,
		WriteTimeout:                 writeTimeout,
		LogLevel:                     parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		InternalJobToken:             strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		MetricsEnabled:               metricsEnabled,
		RedisEnabled:                 redisEnabled,
		RedisURL:                     redisURL,
		RedisPrefix:                  strings.TrimSpace(getEnv("REDIS_KEY_PREFIX", "tactical-intel")),
		RedisTimeout:                 redisTimeout,
		FootballAPIBaseURL:           strings.TrimSpace(getEnv("FOOTBALL_API_BASE_URL", "https://free-api-live-football-data.p.rapidapi.com")),
		FootballAPIHost:              strings.TrimSpace(getEnv("FOOTBALL_API_HOST", "free-api-live-football-data.p.rapidapi.com")),
		FootballAPIKey:               apiKey,
		FootballAPIBackupKey:         backupKey,
		FootballAPITimeout:           apiTimeout,
		FootballAPIDailyLimit:        int64(dailyLimit),
		FootballAPISharedFailover:    sharedFailover,
		FootballAPICircuitEnabled:    circuitEnabled,
		FootballAPICircuitFailures:   circuitFailures,
		FootballAPICircuitOpen:       circuitOpen,
		FootballAPICircuitHalfOpenRq: circuitHalfOpen,
		PrimaryResetSchedule:         strings.TrimSpace(getEnv("PRIMARY_RESET_SCHEDULE", "@every 1h")),
		CacheTTL:                     cacheTTL,
		CacheSingleFlight:            cacheSingleFlight,
		LeagueID:                     leagueID,
		PrimaryTeamID:                strings.TrimSpace(getEnv("PRIMARY_TEAM_ID", "9764")),
		PrimaryTeamName:              strings.TrimSpace(getEnv("PRIMARY_TEAM_NAME", "Gil Vicente")),
		RecentMatchLimit:             recentLimit,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		UptraceLogsEnabled:           uptraceLogsEnabled,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.PrimaryTeamID == "" || cfg.PrimaryTeamName == "" {
		return Config{}, fmt.Errorf("PRIMARY_TEAM_ID and PRIMARY_TEAM_NAME cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
