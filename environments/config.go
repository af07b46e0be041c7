package environments

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Provider  ProviderConfig
	Webhook   WebhookConfig
	Status    StatusConfig
	Sweeper   SweeperConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port          string
	Env           string
	BodyLimit     string
	PublicBaseURL string
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	SMSPerWindow   int
	EmailPerWindow int
	Window         time.Duration
}

type ProviderConfig struct {
	Mode         string
	MinLatency   time.Duration
	MaxLatency   time.Duration
	RelayURL     string
	RelayAuthKey string
	RelayTimeout time.Duration
}

type WebhookConfig struct {
	TwilioAuthToken   string
	SendGridPublicKey string
	SkipAuth          bool
	MaxTimestampAge   time.Duration
}

type StatusConfig struct {
	GuardRegressions bool
}

type SweeperConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	AutoStart  bool
}

type AuthConfig struct {
	AdminAPIKey string
}

const (
	ProviderModeMock  = "mock"
	ProviderModeRelay = "relay"
)

// Load reads configuration from the environment, after loading a .env file
// when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:          GetEnv("PORT", "3000"),
			Env:           GetEnv("APP_ENV", "development"),
			BodyLimit:     GetEnv("MAX_PAYLOAD_SIZE", "10M"),
			PublicBaseURL: GetEnv("PUBLIC_BASE_URL", ""),
		},
		Log: LogConfig{
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "gateway"),
			Password: GetEnv("DB_PASSWORD", "gateway123"),
			DBName:   GetEnv("DB_NAME", "messaging_gateway"),
		},
		Redis: RedisConfig{
			Enabled:  GetEnvAsBool("REDIS_ENABLED", true),
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			SMSPerWindow:   GetEnvAsInt("RATE_LIMIT_SMS", 100),
			EmailPerWindow: GetEnvAsInt("RATE_LIMIT_EMAIL", 500),
			Window:         GetEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Provider: ProviderConfig{
			Mode:         GetEnv("PROVIDER_MODE", ProviderModeMock),
			MinLatency:   GetEnvAsDuration("PROVIDER_MIN_LATENCY", 100*time.Millisecond),
			MaxLatency:   GetEnvAsDuration("PROVIDER_MAX_LATENCY", 500*time.Millisecond),
			RelayURL:     GetEnv("PROVIDER_RELAY_URL", ""),
			RelayAuthKey: GetEnv("PROVIDER_RELAY_AUTH_KEY", ""),
			RelayTimeout: GetEnvAsDuration("PROVIDER_RELAY_TIMEOUT", 10*time.Second),
		},
		Webhook: WebhookConfig{
			TwilioAuthToken:   GetEnv("TWILIO_AUTH_TOKEN", ""),
			SendGridPublicKey: GetEnv("SENDGRID_WEBHOOK_PUBLIC_KEY", ""),
			SkipAuth:          GetEnvAsBool("SKIP_WEBHOOK_AUTH", false),
			MaxTimestampAge:   GetEnvAsDuration("WEBHOOK_MAX_TIMESTAMP_AGE", 5*time.Minute),
		},
		Status: StatusConfig{
			GuardRegressions: GetEnvAsBool("STATUS_GUARD_REGRESSIONS", false),
		},
		Sweeper: SweeperConfig{
			Interval:   GetEnvAsDuration("SWEEPER_INTERVAL", time.Minute),
			StaleAfter: GetEnvAsDuration("SWEEPER_STALE_AFTER", 10*time.Minute),
			AutoStart:  GetEnvAsBool("SWEEPER_AUTO_START", true),
		},
		Auth: AuthConfig{
			AdminAPIKey: GetEnv("ADMIN_API_KEY", ""),
		},
	}
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
