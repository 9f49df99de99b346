package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Invites       InviteConfig
	Mirror        MirrorConfig
	AI            AIConfig
	Notifications NotificationConfig
	Reports       ReportsConfig
	CORS          CORSConfig
	Log           LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig drives the passwordless session model.
type AuthConfig struct {
	SessionSecret  string
	SessionTTL     time.Duration
	LeaderMemberID string
	LoginBaseURL   string
}

// InviteConfig bounds invite link lifetimes.
type InviteConfig struct {
	DefaultTTL time.Duration
	MinTTL     time.Duration
}

// MirrorConfig controls best-effort remote replication.
type MirrorConfig struct {
	Enabled        bool
	ReplicaWorkers int
	MaxRetries     int
	RetryDelay     time.Duration
	CallTimeout    time.Duration
}

// AIConfig configures the generative-text collaborator.
type AIConfig struct {
	Enabled           bool
	APIKey            string
	Endpoint          string
	RequestsPerMinute int
	CacheTTL          time.Duration
	CallTimeout       time.Duration
}

// NotificationConfig tunes the deadline poller.
type NotificationConfig struct {
	Enabled      bool
	PollInterval time.Duration
	Lookahead    time.Duration
}

// ReportsConfig gates the export endpoints.
type ReportsConfig struct {
	Enabled    bool
	StorageDir string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionTTL:     parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
		LeaderMemberID: v.GetString("LEADER_MEMBER_ID"),
		LoginBaseURL:   v.GetString("LOGIN_BASE_URL"),
	}

	cfg.Invites = InviteConfig{
		DefaultTTL: parseDuration(v.GetString("INVITE_DEFAULT_TTL"), time.Hour),
		MinTTL:     parseDuration(v.GetString("INVITE_MIN_TTL"), time.Minute),
	}

	cfg.Mirror = MirrorConfig{
		Enabled:        v.GetBool("ENABLE_MIRROR"),
		ReplicaWorkers: v.GetInt("MIRROR_WORKERS"),
		MaxRetries:     v.GetInt("MIRROR_MAX_RETRIES"),
		RetryDelay:     parseDuration(v.GetString("MIRROR_RETRY_DELAY"), 2*time.Second),
		CallTimeout:    parseDuration(v.GetString("MIRROR_CALL_TIMEOUT"), 3*time.Second),
	}

	cfg.AI = AIConfig{
		Enabled:           v.GetBool("ENABLE_AI"),
		APIKey:            v.GetString("AI_API_KEY"),
		Endpoint:          v.GetString("AI_ENDPOINT"),
		RequestsPerMinute: v.GetInt("AI_REQUESTS_PER_MINUTE"),
		CacheTTL:          parseDuration(v.GetString("AI_CACHE_TTL"), 10*time.Minute),
		CallTimeout:       parseDuration(v.GetString("AI_CALL_TIMEOUT"), 20*time.Second),
	}

	cfg.Notifications = NotificationConfig{
		Enabled:      v.GetBool("ENABLE_NOTIFICATIONS"),
		PollInterval: parseDuration(v.GetString("NOTIFICATIONS_POLL_INTERVAL"), 15*time.Minute),
		Lookahead:    parseDuration(v.GetString("NOTIFICATIONS_LOOKAHEAD"), 48*time.Hour),
	}

	cfg.Reports = ReportsConfig{
		Enabled:    v.GetBool("ENABLE_REPORTS"),
		StorageDir: v.GetString("REPORTS_STORAGE_DIR"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "makers_team_hq")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", "dev_secret")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("LEADER_MEMBER_ID", "member_001")
	v.SetDefault("LOGIN_BASE_URL", "http://localhost:8080/login")

	v.SetDefault("INVITE_DEFAULT_TTL", "1h")
	v.SetDefault("INVITE_MIN_TTL", "1m")

	v.SetDefault("ENABLE_MIRROR", false)
	v.SetDefault("MIRROR_WORKERS", 1)
	v.SetDefault("MIRROR_MAX_RETRIES", 3)
	v.SetDefault("MIRROR_RETRY_DELAY", "2s")
	v.SetDefault("MIRROR_CALL_TIMEOUT", "3s")

	v.SetDefault("ENABLE_AI", false)
	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent")
	v.SetDefault("AI_REQUESTS_PER_MINUTE", 30)
	v.SetDefault("AI_CACHE_TTL", "10m")
	v.SetDefault("AI_CALL_TIMEOUT", "20s")

	v.SetDefault("ENABLE_NOTIFICATIONS", false)
	v.SetDefault("NOTIFICATIONS_POLL_INTERVAL", "15m")
	v.SetDefault("NOTIFICATIONS_LOOKAHEAD", "48h")

	v.SetDefault("ENABLE_REPORTS", false)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
