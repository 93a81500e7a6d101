package di

import (
	"testing"

	"SignalFusion/internal/service/cache"
	"SignalFusion/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAppWithDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Logger.Output = "stderr"

	app, err := InitializeApp(cfg)
	require.NoError(t, err)

	paths := map[string]bool{}
	for _, r := range app.HTTP().Echo().Routes() {
		paths[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/analyze",
		"POST /api/analyze",
		"GET /api/multi-ticker",
		"GET /api/timeline",
		"GET /api/confluence",
		"GET /api/available-options",
		"POST /api/cache/clear",
		"GET /healthz",
		"GET /metrics",
	} {
		assert.True(t, paths[want], want)
	}
}

func TestOptionalProvidersDisabled(t *testing.T) {
	cfg := config.Default()

	ch, err := ProvideClickHouseClient(cfg)
	require.NoError(t, err)
	assert.Nil(t, ch)

	bars, err := ProvideBarStore(nil, cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, bars)

	p, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Nil(t, ProvideBundlePublisher(nil, cfg))
	assert.Nil(t, ProvidePredictionClient(cfg))

	cfg.RateLimit.Enabled = false
	assert.Nil(t, ProvideRateLimiter(cfg))
}

func TestProvideCache(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &cache.TTLCache{}, ProvideCache(cfg))

	cfg.Cache.Type = "redis"
	assert.IsType(t, &cache.RedisCache{}, ProvideCache(cfg))

	cfg.Cache.Type = "none"
	assert.Nil(t, ProvideCache(cfg))
}
