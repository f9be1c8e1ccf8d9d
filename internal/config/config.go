package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Queue        QueueConfig
	Idempotency  IdempotencyConfig
	Media        MediaConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// QueueConfig tunes the claim-based workers. BudgetSeconds must sit safely
// below the hosting platform's hard invocation limit.
type QueueConfig struct {
	AssignIntervalSeconds int
	ImportIntervalSeconds int
	BatchSize             int
	InterBatchDelayMillis int
	BudgetSeconds         int
}

// IdempotencyConfig controls replay-record retention.
type IdempotencyConfig struct {
	TTLHours int
}

// MediaConfig restricts which storage references comments may attach.
type MediaConfig struct {
	AllowedPrefix string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "hotel-ops"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Queue: QueueConfig{
			AssignIntervalSeconds: getEnvAsInt("QUEUE_ASSIGN_INTERVAL_SECONDS", 60),
			ImportIntervalSeconds: getEnvAsInt("QUEUE_IMPORT_INTERVAL_SECONDS", 120),
			BatchSize:             getEnvAsInt("QUEUE_BATCH_SIZE", 20),
			InterBatchDelayMillis: getEnvAsInt("QUEUE_INTER_BATCH_DELAY_MS", 200),
			BudgetSeconds:         getEnvAsInt("QUEUE_BUDGET_SECONDS", 50),
		},
		Idempotency: IdempotencyConfig{
			TTLHours: getEnvAsInt("IDEMPOTENCY_TTL_HOURS", 24),
		},
		Media: MediaConfig{
			AllowedPrefix: getEnv("MEDIA_ALLOWED_PREFIX", "uploads/tickets/"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AssignInterval returns the auto-assignment cadence.
func (q QueueConfig) AssignInterval() time.Duration {
	return time.Duration(q.AssignIntervalSeconds) * time.Second
}

// ImportInterval returns the import worker cadence.
func (q QueueConfig) ImportInterval() time.Duration {
	return time.Duration(q.ImportIntervalSeconds) * time.Second
}

// InterBatchDelay returns the pause between claimed batches.
func (q QueueConfig) InterBatchDelay() time.Duration {
	return time.Duration(q.InterBatchDelayMillis) * time.Millisecond
}

// Budget returns the wall-clock budget for one bounded worker invocation.
func (q QueueConfig) Budget() time.Duration {
	return time.Duration(q.BudgetSeconds) * time.Second
}

// TTL returns how long recorded idempotent responses are kept.
func (i IdempotencyConfig) TTL() time.Duration {
	return time.Duration(i.TTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
