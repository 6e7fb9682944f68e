package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ticketing service
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig

	// Logging
	LogLevel string

	Kafka   KafkaConfig
	PubNub  PubNubConfig
	Fiscal  FiscalConfig
	Payment PaymentConfig
	Refund  RefundConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int

	ConnMaxLifetime time.Duration
	// LockTimeout bounds how long an issuance or cancellation waits on a
	// seat, sector or counter row lock. Zero waits forever.
	LockTimeout      time.Duration
	StatementTimeout time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	PoolSize     int
	MinIdleConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled              bool          `json:"enabled"`
	WindowDuration       time.Duration `json:"window_duration"`
	DefaultRequests      int           `json:"default_requests"`
	PublicRequests       int           `json:"public_requests"`
	IssuanceRequests     int           `json:"issuance_requests"`
	CancellationRequests int           `json:"cancellation_requests"`
	CheckinRequests      int           `json:"checkin_requests"`
	AdminRequests        int           `json:"admin_requests"`
	HealthRequests       int           `json:"health_requests"`
	WhitelistedIPs       []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds ticket lifecycle event publishing configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	Topic    string
	ClientID string
}

// PubNubConfig holds live availability broadcast configuration
type PubNubConfig struct {
	Enabled       bool
	PublishKey    string
	SubscribeKey  string
	SecretKey     string
	UserID        string
	ChannelPrefix string
}

// FiscalConfig holds numbering/seal configuration
type FiscalConfig struct {
	SealKey            string
	Timezone           string
	DeviceRequired     bool
	DeviceReadyKey     string
	DeviceCheckTimeout time.Duration
}

// PaymentConfig holds payment collaborator configuration
type PaymentConfig struct {
	Provider              string
	StripeSecretKey       string
	Currency              string
	CallTimeout           time.Duration
	BreakerMaxFailures    int
	BreakerOpenTimeout    time.Duration
	BreakerHalfOpenProbes int
}

// RefundConfig holds the refund retry job configuration
type RefundConfig struct {
	RetryEnabled  bool
	RetryInterval time.Duration
	MaxAttempts   int
	BatchSize     int
	LockTTL       time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "ticketing_db"),
			User:         getEnv("DB_USER", "ticketing_user"),
			Password:     getEnv("DB_PASSWORD", "ticketing_password"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 10),

			ConnMaxLifetime:  getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			LockTimeout:      getDurationEnv("DB_LOCK_TIMEOUT", 3*time.Second),
			StatementTimeout: getDurationEnv("DB_STATEMENT_TIMEOUT", 15*time.Second),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 5),
		},

		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		RateLimit: RateLimitConfig{
			Enabled:              getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:       getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:      getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:       getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 120),
			IssuanceRequests:     getIntEnv("RATE_LIMIT_ISSUANCE_REQUESTS", 300),
			CancellationRequests: getIntEnv("RATE_LIMIT_CANCELLATION_REQUESTS", 60),
			CheckinRequests:      getIntEnv("RATE_LIMIT_CHECKIN_REQUESTS", 600),
			AdminRequests:        getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:       getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 600),
			WhitelistedIPs:       getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Kafka: KafkaConfig{
			Enabled:  getBoolEnv("KAFKA_ENABLED", false),
			Brokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:    getEnv("KAFKA_TICKET_TOPIC", "ticket-lifecycle"),
			ClientID: getEnv("KAFKA_CLIENT_ID", "ticketing-producer"),
		},

		PubNub: PubNubConfig{
			Enabled:       getBoolEnv("PUBNUB_ENABLED", false),
			PublishKey:    getEnv("PUBNUB_PUBLISH_KEY", ""),
			SubscribeKey:  getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
			SecretKey:     getEnv("PUBNUB_SECRET_KEY", ""),
			UserID:        getEnv("PUBNUB_USER_ID", "ticketing-backend"),
			ChannelPrefix: getEnv("PUBNUB_CHANNEL_PREFIX", "sector-availability"),
		},

		Fiscal: FiscalConfig{
			SealKey:            getEnv("FISCAL_SEAL_KEY", ""),
			Timezone:           getEnv("FISCAL_TIMEZONE", "Europe/Rome"),
			DeviceRequired:     getBoolEnv("FISCAL_DEVICE_REQUIRED", true),
			DeviceReadyKey:     getEnv("FISCAL_DEVICE_READY_KEY", "ticketing:fiscal:device:ready"),
			DeviceCheckTimeout: getDurationEnv("FISCAL_DEVICE_CHECK_TIMEOUT", 500*time.Millisecond),
		},

		Payment: PaymentConfig{
			Provider:              getEnv("PAYMENT_PROVIDER", "mock"),
			StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
			Currency:              getEnv("PAYMENT_CURRENCY", "eur"),
			CallTimeout:           getDurationEnv("PAYMENT_CALL_TIMEOUT", 10*time.Second),
			BreakerMaxFailures:    getIntEnv("PAYMENT_BREAKER_MAX_FAILURES", 5),
			BreakerOpenTimeout:    getDurationEnv("PAYMENT_BREAKER_OPEN_TIMEOUT", 30*time.Second),
			BreakerHalfOpenProbes: getIntEnv("PAYMENT_BREAKER_HALF_OPEN_PROBES", 1),
		},

		Refund: RefundConfig{
			RetryEnabled:  getBoolEnv("REFUND_RETRY_ENABLED", false),
			RetryInterval: getDurationEnv("REFUND_RETRY_INTERVAL", 5*time.Minute),
			MaxAttempts:   getIntEnv("REFUND_MAX_ATTEMPTS", 5),
			BatchSize:     getIntEnv("REFUND_RETRY_BATCH_SIZE", 50),
			LockTTL:       getDurationEnv("REFUND_LOCK_TTL", 30*time.Second),
		},
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
