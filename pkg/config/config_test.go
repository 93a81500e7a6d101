package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "analysis.requests", c.Kafka.RequestTopic)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Equal(t, 60*time.Second, c.Cache.TTL)
	assert.Equal(t, 10, c.Engine.BacktestHoldBars)
	assert.Equal(t, 60, c.Engine.Timeline.WindowDays)
	assert.Equal(t, 25, c.Engine.Confluence.GoldBuy)
	assert.False(t, c.Engine.DeriveMissingOscillators)
}

func TestParseOverridesEngine(t *testing.T) {
	yml := `
environment: prod
engine:
  derive_missing_oscillators: true
  timeline:
    window_days: 30
    daily:
      fresh: 12h
      recent: 36h
      delayed: 96h
  confluence:
    gold_buy: 30
`
	c, err := Parse([]byte(yml))
	require.NoError(t, err)
	assert.True(t, c.Engine.DeriveMissingOscillators)
	assert.Equal(t, 30, c.Engine.Timeline.WindowDays)
	assert.Equal(t, 12*time.Hour, c.Engine.Timeline.Daily.Fresh)
	assert.Equal(t, 30, c.Engine.Confluence.GoldBuy)
	assert.Equal(t, 20, c.Engine.Confluence.Buy)
	assert.Len(t, c.Engine.Timeline.Intraday, 5)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"kafka without brokers":    "environment: x\nkafka:\n  enabled: true\n",
		"prediction without url":   "environment: x\nprediction:\n  enabled: true\n",
		"unknown cache":            "environment: x\ncache:\n  type: memcached\n",
		"publish without kafka":    "environment: x\nanalysis:\n  publish_bundles: true\n",
		"store without clickhouse": "environment: x\nanalysis:\n  store_timeline: true\n",
		"empty environment":        "environment: \"\"\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(yml))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	env := map[string]string{
		"FUSION_ENV":      "staging",
		"KAFKA_BROKERS":   "a:9092,b:9092",
		"CLICKHOUSE_HOST": "ch",
		"PREDICTION_URL":  "http://model:8000",
		"REDIS_ADDR":      "redis:6379",
	}
	c.applyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "ch", c.ClickHouse.Host)
	assert.True(t, c.Prediction.Enabled)
	assert.Equal(t, "redis", c.Cache.Type)
	assert.NoError(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: dev\nserver:\n  port: 9090\n"), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadShippedConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, "memory", c.Cache.Type)
	assert.Equal(t, 168*time.Hour, c.Engine.Timeline.Daily.Delayed)
	assert.Len(t, c.Engine.Timeline.Intraday, 5)
	assert.False(t, c.Kafka.Enabled)
}
