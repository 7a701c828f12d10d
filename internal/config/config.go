package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"rank-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	StatsAPIKey        string
	StatsBaseURL       string
	ExternalAPITimeout time.Duration
	StatsCacheTTL      time.Duration
	RedisURL           string

	DBPath     string
	ServerPort string
	LogLevel   string
	AppEnv     string

	ClientURL     string
	BackendURL    string
	SessionSecret string
	SessionTTL    time.Duration
	SteamAPIKey   string

	RateLimitRequests     int
	RateLimitWindow       time.Duration
	RefreshAllConcurrency int
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		StatsAPIKey:  getEnv("BRAWLHALLA_API_KEY", ""),
		StatsBaseURL: strings.TrimRight(getEnv("BRAWLHALLA_BASE_URL", "https://api.brawlhalla.com"), "/"),
		RedisURL:     getEnv("REDIS_URL", ""),

		DBPath:     getEnv("DB_PATH", "tracker.db"),
		ServerPort: getEnv("PORT", "5000"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		AppEnv:     getEnv("APP_ENV", "development"),

		ClientURL:     strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:3000"), "/"),
		BackendURL:    strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SteamAPIKey:   getEnv("STEAM_API_KEY", ""),
	}

	var err error
	if cfg.ExternalAPITimeout, err = getDuration("EXTERNAL_API_TIMEOUT", constants.ExternalAPITimeout); err != nil {
		return nil, err
	}
	if cfg.StatsCacheTTL, err = getDuration("STATS_CACHE_TTL", constants.StatsCacheTTL); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", constants.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitRequests, err = getInt("RATE_LIMIT_REQUESTS", 60); err != nil {
		return nil, err
	}
	if cfg.RefreshAllConcurrency, err = getInt("REFRESH_ALL_CONCURRENCY", constants.RefreshAllLimit); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("stats_base_url", cfg.StatsBaseURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("app_env", cfg.AppEnv).
		Bool("redis_cache", cfg.RedisURL != "").
		Bool("steam_profiles", cfg.SteamAPIKey != "").
		Dur("stats_cache_ttl", cfg.StatsCacheTTL).
		Dur("external_api_timeout", cfg.ExternalAPITimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	if c.StatsAPIKey == "" {
		return fmt.Errorf("BRAWLHALLA_API_KEY is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.ExternalAPITimeout <= 0 {
		return fmt.Errorf("EXTERNAL_API_TIMEOUT must be positive")
	}
	if c.RefreshAllConcurrency < 1 {
		return fmt.Errorf("REFRESH_ALL_CONCURRENCY must be at least 1")
	}
	if c.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

var Module = fx.Provide(Load)
