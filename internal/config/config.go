package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/courtsync/courtsync/internal/domain/season"
	"github.com/courtsync/courtsync/internal/platform/logging"
)

// Config stores runtime configuration for the pipeline.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	DataDir       string
	FirstSeason   season.Season
	CurrentSeason season.Season

	RefreshTTL      time.Duration
	SeasonWorkers   int
	BoxScoreWorkers int

	NBAStatsBaseURL              string
	NBAStatsTimeout              time.Duration
	NBAStatsMaxRetries           int
	NBAStatsCircuitEnabled       bool
	NBAStatsCircuitFailureCount  int
	NBAStatsCircuitOpenTimeout   time.Duration
	NBAStatsCircuitHalfOpenMaxRq int
	CacheEnabled                 bool
	CacheTTL                     time.Duration

	ArchiveEnabled bool
	DBURL          string

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

	currentDefault := defaultCurrentSeason(time.Now().UTC())
	firstSeason, err := getEnvAsInt("FIRST_SEASON", 2016)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIRST_SEASON: %w", err)
	}
	currentSeason, err := getEnvAsInt("CURRENT_SEASON", int(currentDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse CURRENT_SEASON: %w", err)
	}
	if firstSeason > currentSeason {
		return Config{}, fmt.Errorf("FIRST_SEASON %d is after CURRENT_SEASON %d", firstSeason, currentSeason)
	}
	// League data starts with the 1946-47 season.
	if firstSeason < 1947 {
		return Config{}, fmt.Errorf("FIRST_SEASON %d predates the league", firstSeason)
	}

	refreshTTL, err := time.ParseDuration(getEnv("REFRESH_TTL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_TTL: %w", err)
	}
	if refreshTTL <= 0 {
		return Config{}, fmt.Errorf("REFRESH_TTL must be > 0")
	}

	seasonWorkers, err := getEnvAsInt("REFRESH_WORKERS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_WORKERS: %w", err)
	}
	if seasonWorkers < 1 {
		return Config{}, fmt.Errorf("REFRESH_WORKERS must be >= 1")
	}
	boxScoreWorkers, err := getEnvAsInt("BOX_SCORE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse BOX_SCORE_WORKERS: %w", err)
	}
	if boxScoreWorkers < 1 {
		return Config{}, fmt.Errorf("BOX_SCORE_WORKERS must be >= 1")
	}

	nbaTimeout, err := time.ParseDuration(getEnv("NBA_STATS_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_TIMEOUT: %w", err)
	}
	if nbaTimeout <= 0 {
		return Config{}, fmt.Errorf("NBA_STATS_TIMEOUT must be > 0")
	}
	nbaMaxRetries, err := getEnvAsInt("NBA_STATS_MAX_RETRIES", 12)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_MAX_RETRIES: %w", err)
	}
	if nbaMaxRetries < 0 {
		return Config{}, fmt.Errorf("NBA_STATS_MAX_RETRIES must be >= 0")
	}
	nbaCircuitEnabled, err := strconv.ParseBool(getEnv("NBA_STATS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_ENABLED: %w", err)
	}
	nbaCircuitFailureCount, err := getEnvAsInt("NBA_STATS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if nbaCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("NBA_STATS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	nbaCircuitOpenTimeout, err := time.ParseDuration(getEnv("NBA_STATS_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if nbaCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("NBA_STATS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	nbaCircuitHalfOpenMaxReq, err := getEnvAsInt("NBA_STATS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if nbaCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("NBA_STATS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	archiveEnabled, err := strconv.ParseBool(getEnv("ARCHIVE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_ENABLED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if archiveEnabled && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when ARCHIVE_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
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

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "courtsync"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                     parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		DataDir:                      getEnv("DATA_DIR", "./data"),
		FirstSeason:                  season.Season(firstSeason),
		CurrentSeason:                season.Season(currentSeason),
		RefreshTTL:                   refreshTTL,
		SeasonWorkers:                seasonWorkers,
		BoxScoreWorkers:              boxScoreWorkers,
		NBAStatsBaseURL:              strings.TrimSpace(getEnv("NBA_STATS_BASE_URL", "https://stats.nba.com/stats")),
		NBAStatsTimeout:              nbaTimeout,
		NBAStatsMaxRetries:           nbaMaxRetries,
		NBAStatsCircuitEnabled:       nbaCircuitEnabled,
		NBAStatsCircuitFailureCount:  nbaCircuitFailureCount,
		NBAStatsCircuitOpenTimeout:   nbaCircuitOpenTimeout,
		NBAStatsCircuitHalfOpenMaxRq: nbaCircuitHalfOpenMaxReq,
		CacheEnabled:                 cacheEnabled,
		CacheTTL:                     cacheTTL,
		ArchiveEnabled:               archiveEnabled,
		DBURL:                        dbURL,
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

	return cfg, nil
}

// defaultCurrentSeason maps the clock to the season ending year. A new
// season starts in October; before that the previous season is current.
func defaultCurrentSeason(now time.Time) season.Season {
	if now.Month() >= time.October {
		return season.Season(now.Year() + 1)
	}
	return season.Season(now.Year())
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
