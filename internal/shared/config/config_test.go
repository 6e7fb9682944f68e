package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_PREFIX", "API_VERSION", "REDIS_HOST", "REDIS_PORT", "DB_NAME",
		"FISCAL_TIMEZONE", "DB_LOCK_TIMEOUT", "FISCAL_DEVICE_REQUIRED", "PAYMENT_PROVIDER", "KAFKA_ENABLED", "REFUND_MAX_ATTEMPTS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, ":8080", cfg.GetServerAddress())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Contains(t, cfg.Database.DSN, "dbname=ticketing_db")
	assert.Equal(t, "Europe/Rome", cfg.Fiscal.Timezone)
	assert.True(t, cfg.Fiscal.DeviceRequired)
	assert.Equal(t, "mock", cfg.Payment.Provider)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 5, cfg.Refund.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.Database.LockTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("DB_NAME", "fiscal")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("FISCAL_DEVICE_REQUIRED", "false")
	t.Setenv("FISCAL_DEVICE_CHECK_TIMEOUT", "2s")
	t.Setenv("REFUND_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("RATE_LIMIT_WHITELISTED_IPS", "10.0.0.1,10.0.0.2")
	t.Setenv("DB_LOCK_TIMEOUT", "750ms")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.GetServerAddress())
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.Contains(t, cfg.Database.DSN, "dbname=fiscal")
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Fiscal.DeviceRequired)
	assert.Equal(t, 2*time.Second, cfg.Fiscal.DeviceCheckTimeout)
	assert.Equal(t, 5, cfg.Refund.MaxAttempts)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.WhitelistedIPs)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.LockTimeout)
}
