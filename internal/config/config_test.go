package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "agromonitor", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "agro/sensors/readings", cfg.MQTT.ReadingsTopic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, "agro:events:alerts", cfg.Engine.AlertStream)
	assert.Equal(t, 30, cfg.Engine.RuleCacheTTL)
	assert.Equal(t, 30, cfg.Engine.ProcessTimeout)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("MQTT_READINGS_TOPIC", "farm/plots/+/readings")
	t.Setenv("ALERT_STREAM", "farm:alerts")
	t.Setenv("RULE_CACHE_TTL", "120")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "farm/plots/+/readings", cfg.MQTT.ReadingsTopic)
	assert.Equal(t, "farm:alerts", cfg.Engine.AlertStream)
	assert.Equal(t, 120, cfg.Engine.RuleCacheTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "agro",
		Password: "secret",
		Database: "agromonitor",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5432 user=agro password=secret dbname=agromonitor sslmode=require",
		db.GetDSN(),
	)
}
