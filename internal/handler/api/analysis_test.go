package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	icache "SignalFusion/internal/service/cache"
	"SignalFusion/internal/service/ratelimit"
	"SignalFusion/internal/services/engine"
	"SignalFusion/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

type memBars struct {
	mu    sync.Mutex
	bars  map[string][]models.Bar
	calls int
}

func (m *memBars) GetBars(ctx context.Context, symbol string, _, _ time.Time, iv domrepo.Interval) ([]models.Bar, error) {
	return m.GetLatestNBars(ctx, symbol, 0, iv)
}

func (m *memBars) GetLatestNBars(_ context.Context, symbol string, _ int, _ domrepo.Interval) ([]models.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.bars[symbol], nil
}

func bars(n int) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		p := 100 + float64(i%7) - float64(i%3)
		out[i] = models.Bar{
			Time:   day0.AddDate(0, 0, i),
			Open:   models.Float(p),
			High:   models.Float(p + 1),
			Low:    models.Float(p - 1),
			Close:  models.Float(p + 0.5),
			Volume: models.Float(1000),
		}
	}
	return out
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T, opts ...Option) (*echo.Echo, *memBars) {
	t.Helper()
	store := &memBars{bars: map[string][]models.Bar{"ACME": bars(60), "BETA": bars(45)}}
	analysis := usecase.NewAnalysisUseCase(engine.New(engine.DefaultConfig()), usecase.WithBarStore(store))
	h := NewAnalysisHandler(analysis, usecase.NewMultiTickerUseCase(analysis, 2, nil), opts...)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, store
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestAnalyzeCached(t *testing.T) {
	e, store := setup(t, WithCache(icache.NewTTLCache(16), time.Minute))

	code, env := do(t, e, http.MethodGet, "/api/analyze?symbol=acme&now=2024-05-01", "")
	require.Equal(t, http.StatusOK, code)
	var b models.Bundle
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "ACME", b.Symbol)
	assert.Equal(t, 60, b.Bars)
	assert.Equal(t, "1d", b.Interval)

	code, _ = do(t, e, http.MethodGet, "/api/analyze?symbol=acme&now=2024-05-01", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, store.calls)

	code, env = do(t, e, http.MethodPost, "/api/cache/clear", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"cleared":true}`, string(env.Data))

	do(t, e, http.MethodGet, "/api/analyze?symbol=acme&now=2024-05-01", "")
	assert.Equal(t, 2, store.calls)
}

func TestAnalyzeWithoutNowSkipsCache(t *testing.T) {
	e, store := setup(t, WithCache(icache.NewTTLCache(16), time.Minute))

	for i := 0; i < 2; i++ {
		code, _ := do(t, e, http.MethodGet, "/api/analyze?symbol=acme", "")
		require.Equal(t, http.StatusOK, code)
		code, _ = do(t, e, http.MethodGet, "/api/confluence?symbol=acme", "")
		require.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, 4, store.calls)
}

func TestCacheKey(t *testing.T) {
	assert.Empty(t, cacheKey("analyze", "", "ACME", "1d", "250"))
	assert.Equal(t, "analyze:ACME:1d:250:2024-05-01", cacheKey("analyze", "2024-05-01", "ACME", "1d", "250"))
}

func TestAnalyzeErrors(t *testing.T) {
	e, _ := setup(t)

	code, _ := do(t, e, http.MethodGet, "/api/analyze", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := do(t, e, http.MethodGet, "/api/analyze?symbol=NONE", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, string(env.Data), "ERR_NOT_FOUND")

	code, env = do(t, e, http.MethodGet, "/api/analyze?symbol=ACME&now=someday", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), `"field":"now"`)

	code, _ = do(t, e, http.MethodGet, "/api/analyze?symbol=ACME&n=5", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRateLimited(t *testing.T) {
	e, _ := setup(t, WithRateLimiter(ratelimit.New(0.001, 1)))

	code, _ := do(t, e, http.MethodGet, "/api/analyze?symbol=ACME", "")
	assert.Equal(t, http.StatusOK, code)
	code, env := do(t, e, http.MethodGet, "/api/analyze?symbol=ACME", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, string(env.Data), "ERR_TOO_MANY_REQUESTS")

	code, _ = do(t, e, http.MethodGet, "/api/available-options", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestAnalyzeSnapshotFromBars(t *testing.T) {
	e, _ := setup(t)
	payload, err := json.Marshal(models.AnalyzeSnapshotRequest{Symbol: "posted", Now: "2024-05-01", Bars: bars(40)})
	require.NoError(t, err)

	code, env := do(t, e, http.MethodPost, "/api/analyze", string(payload))
	require.Equal(t, http.StatusOK, code)
	var b models.Bundle
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "POSTED", b.Symbol)
	assert.Equal(t, 40, b.Bars)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), b.GeneratedAt)

	code, _ = do(t, e, http.MethodPost, "/api/analyze", `{"interval":"1d"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAnalyzeSnapshotFromSeries(t *testing.T) {
	e, _ := setup(t)
	body := `{"snapshot":{"symbol":"S","series":{"close":[
		{"date":"2024-01-01T00:00:00Z","value":1},
		{"date":"2024-01-02T00:00:00Z","value":2}
	]}}}`
	code, env := do(t, e, http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, code)
	var b models.Bundle
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, "S", b.Symbol)
	assert.Equal(t, 2, b.Bars)
}

func TestMultiTicker(t *testing.T) {
	e, _ := setup(t)
	code, env := do(t, e, http.MethodGet, "/api/multi-ticker?symbols=acme,beta,none", "")
	require.Equal(t, http.StatusOK, code)

	var res models.MultiTickerResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res.Bundles, 2)
	assert.Equal(t, 45, res.Bundles["BETA"].Bars)
	assert.Contains(t, res.Errors, "NONE")

	many := strings.Repeat("X,", maxTickers) + "Y"
	code, _ = do(t, e, http.MethodGet, "/api/multi-ticker?symbols="+many, "")
	assert.Equal(t, http.StatusOK, code, "duplicates collapse")

	distinct := make([]string, 0, maxTickers+1)
	for i := 0; i <= maxTickers; i++ {
		distinct = append(distinct, "S"+strings.Repeat("A", i+1))
	}
	code, _ = do(t, e, http.MethodGet, "/api/multi-ticker?symbols="+strings.Join(distinct, ","), "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTimelineAndConfluence(t *testing.T) {
	e, _ := setup(t)

	code, env := do(t, e, http.MethodGet, "/api/timeline?symbol=ACME&limit=3&now=2024-05-01", "")
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Rows  []models.TimelineEntry `json:"rows"`
		Total int64                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.LessOrEqual(t, len(list.Rows), 3)
	assert.Equal(t, int64(len(list.Rows)), list.Total)

	code, env = do(t, e, http.MethodGet, "/api/confluence?symbol=ACME", "")
	require.Equal(t, http.StatusOK, code)
	var view models.ConfluenceView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "ACME", view.Symbol)
	assert.NotEmpty(t, view.Confluence.Recommendation)
	assert.NotEmpty(t, view.Advice.Action)
}

func TestAvailableOptions(t *testing.T) {
	e, _ := setup(t)
	code, env := do(t, e, http.MethodGet, "/api/available-options", "")
	require.Equal(t, http.StatusOK, code)
	var opts models.AvailableOptions
	require.NoError(t, json.Unmarshal(env.Data, &opts))
	assert.Contains(t, opts.Intervals, "1wk")
	assert.Equal(t, "7d", opts.IntervalLimits["1m"])
}

func TestClearWithoutCache(t *testing.T) {
	e, _ := setup(t)
	code, env := do(t, e, http.MethodPost, "/api/cache/clear", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"cleared":false}`, string(env.Data))
}

func TestHealth(t *testing.T) {
	e, _ := setup(t, WithHealthCheck("clickhouse", func(context.Context) error { return nil }))
	code, env := do(t, e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","checks":{"clickhouse":"ok"}}`, string(env.Data))

	e, _ = setup(t, WithHealthCheck("prediction", func(context.Context) error { return errors.New("breaker open") }))
	code, env = do(t, e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, string(env.Data), "breaker open")
}
