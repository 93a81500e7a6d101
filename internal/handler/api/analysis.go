package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"SignalFusion/internal/domain/models"
	icache "SignalFusion/internal/service/cache"
	"SignalFusion/internal/service/metrics"
	"SignalFusion/internal/service/ratelimit"
	"SignalFusion/internal/services/features"
	"SignalFusion/internal/usecase"
	xhttp "SignalFusion/pkg/http"
	xlogger "SignalFusion/pkg/logger"
	"SignalFusion/pkg/util"

	"github.com/labstack/echo/v4"
)

const maxTickers = 25

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// AnalysisHandler serves the analysis API.
type AnalysisHandler struct {
	analysis *usecase.AnalysisUseCase
	multi    *usecase.MultiTickerUseCase
	cache    icache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
	checks   map[string]HealthCheck
	logger   *xlogger.Logger
}

type Option func(*AnalysisHandler)

// WithCache enables response caching with the given TTL.
func WithCache(c icache.BytesCache, ttl time.Duration) Option {
	return func(h *AnalysisHandler) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

func WithRateLimiter(rl *ratelimit.Limiter) Option {
	return func(h *AnalysisHandler) { h.rl = rl }
}

func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *AnalysisHandler) { h.checks[name] = check }
}

func WithLogger(l *xlogger.Logger) Option {
	return func(h *AnalysisHandler) { h.logger = l }
}

func NewAnalysisHandler(analysis *usecase.AnalysisUseCase, multi *usecase.MultiTickerUseCase, opts ...Option) *AnalysisHandler {
	metrics.Register()
	h := &AnalysisHandler{
		analysis: analysis,
		multi:    multi,
		checks:   make(map[string]HealthCheck),
		logger:   xlogger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.POST("/analyze", h.AnalyzeSnapshot)
	g.GET("/multi-ticker", h.MultiTicker)
	g.GET("/timeline", h.Timeline)
	g.GET("/confluence", h.Confluence)
	g.GET("/available-options", h.AvailableOptions)
	g.POST("/cache/clear", h.ClearCache)
}

func (h *AnalysisHandler) Analyze(c echo.Context) error {
	const endpoint = "analyze"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.limited(c)
	}
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now, err := parseNow(req.Now)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	key := cacheKey(endpoint, req.Now, strings.ToUpper(req.Symbol), req.Interval, strconv.Itoa(req.N))
	return h.cached(c, endpoint, key, func(ctx context.Context) (interface{}, error) {
		return h.analysis.Analyze(ctx, usecase.AnalyzeParams{
			Symbol:   req.Symbol,
			Interval: req.Interval,
			Bars:     req.N,
			Now:      now,
		})
	})
}

// AnalyzeSnapshot runs the engine on a snapshot or bar list posted by the caller.
func (h *AnalysisHandler) AnalyzeSnapshot(c echo.Context) error {
	const endpoint = "analyze_snapshot"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.limited(c)
	}
	req := &models.AnalyzeSnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now, err := parseNow(req.Now)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	snap := req.Snapshot
	switch {
	case snap == nil && len(req.Bars) > 0:
		snap = features.SnapshotFromBars(strings.ToUpper(req.Symbol), req.Bars)
	case snap == nil:
		return h.fail(c, endpoint, xhttp.BadRequestError("snapshot or bars is required"))
	case snap.Symbol == "":
		snap.Symbol = strings.ToUpper(req.Symbol)
	}
	return xhttp.SuccessResponse(c, h.analysis.AnalyzeSnapshot(snap, req.Prediction, req.Interval, now))
}

func (h *AnalysisHandler) MultiTicker(c echo.Context) error {
	const endpoint = "multi_ticker"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.limited(c)
	}
	req := &models.MultiTickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := util.SplitSymbols(req.Symbols)
	if len(symbols) > maxTickers {
		return h.fail(c, endpoint, xhttp.BadRequestErrorf("at most %d symbols per request", maxTickers).WithParam("max", maxTickers))
	}
	now, err := parseNow(req.Now)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	key := cacheKey(endpoint, req.Now, strings.Join(symbols, ","), req.Interval, strconv.Itoa(req.N))
	return h.cached(c, endpoint, key, func(ctx context.Context) (interface{}, error) {
		return h.multi.Analyze(ctx, symbols, req.Interval, req.N, now)
	})
}

func (h *AnalysisHandler) Timeline(c echo.Context) error {
	const endpoint = "timeline"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.limited(c)
	}
	req := &models.TimelineRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now, err := parseNow(req.Now)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	entries, err := h.analysis.Timeline(c.Request().Context(), usecase.TimelineParams{
		Symbol:   req.Symbol,
		Interval: req.Interval,
		Bars:     req.N,
		Now:      now,
		Limit:    req.Limit,
	})
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *AnalysisHandler) Confluence(c echo.Context) error {
	const endpoint = "confluence"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.limited(c)
	}
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	now, err := parseNow(req.Now)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	key := cacheKey(endpoint, req.Now, strings.ToUpper(req.Symbol), req.Interval, strconv.Itoa(req.N))
	return h.cached(c, endpoint, key, func(ctx context.Context) (interface{}, error) {
		b, err := h.analysis.Analyze(ctx, usecase.AnalyzeParams{
			Symbol:   req.Symbol,
			Interval: req.Interval,
			Bars:     req.N,
			Now:      now,
		})
		if err != nil {
			return nil, err
		}
		return &models.ConfluenceView{
			Symbol:           b.Symbol,
			Interval:         b.Interval,
			GeneratedAt:      b.GeneratedAt,
			Confluence:       b.Confluence,
			Advice:           b.Advice,
			OscillatorStates: b.OscillatorStates,
		}, nil
	})
}

func (h *AnalysisHandler) AvailableOptions(c echo.Context) error {
	return xhttp.SuccessResponse(c, availableOptions)
}

func (h *AnalysisHandler) ClearCache(c echo.Context) error {
	if h.cache == nil {
		return xhttp.SuccessResponse(c, map[string]bool{"cleared": false})
	}
	if err := h.cache.Clear(c.Request().Context()); err != nil {
		h.logger.Error("cache clear failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cache clear failed").WithError(err))
	}
	h.logger.Info("response cache cleared")
	return xhttp.SuccessResponse(c, map[string]bool{"cleared": true})
}

// Health runs every registered check; any failure turns the answer into 503.
func (h *AnalysisHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	return xhttp.DataResponse(c, status, map[string]interface{}{"status": state, "checks": checks})
}

// cached serves key from the response cache or computes, stores and serves it.
func (h *AnalysisHandler) cached(c echo.Context, endpoint, key string, compute func(ctx context.Context) (interface{}, error)) error {
	ctx := c.Request().Context()
	useCache := h.cache != nil && key != ""
	if useCache {
		b, ok, err := h.cache.GetBytes(ctx, key)
		switch {
		case err != nil:
			h.logger.Warn("cache get failed", xlogger.String("key", key), xlogger.Error(err))
		case ok:
			metrics.CacheLookups.WithLabelValues(endpoint, "hit").Inc()
			h.logger.Debug("cache hit", xlogger.String("key", key))
			return xhttp.SuccessResponse(c, json.RawMessage(b))
		}
		metrics.CacheLookups.WithLabelValues(endpoint, "miss").Inc()
	}

	res, err := compute(ctx)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	b, err := json.Marshal(res)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	if useCache {
		if err := h.cache.SetBytes(ctx, key, b, h.cacheTTL); err != nil {
			h.logger.Warn("cache set failed", xlogger.String("key", key), xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, json.RawMessage(b))
}

// cacheKey builds the response cache key. Requests without an explicit now
// are analysed against the server clock, so their ages change between calls;
// they get an empty key and bypass the cache.
func cacheKey(endpoint, now string, parts ...string) string {
	if now == "" {
		return ""
	}
	return icache.Key(append(append([]string{endpoint}, parts...), now)...)
}

// fail maps use case errors onto API errors.
func (h *AnalysisHandler) fail(c echo.Context, endpoint string, err error) error {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, usecase.ErrSymbolRequired):
		appErr = xhttp.BadRequestError(err.Error()).WithError(err)
		appErr.Field = "symbol"
	case errors.Is(err, usecase.ErrNoData):
		appErr = xhttp.NotFoundError(err.Error()).WithError(err)
	default:
		appErr = xhttp.InternalError("analysis failed").WithError(err)
	}
	metrics.EndpointErrors.WithLabelValues(endpoint, strconv.Itoa(appErr.Status)).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func (h *AnalysisHandler) allow(c echo.Context, endpoint string) bool {
	if h.rl == nil || h.rl.Allow(c.RealIP()) {
		return true
	}
	metrics.RateLimited.WithLabelValues(endpoint).Inc()
	h.logger.Warn("rate limited", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
	return false
}

func (h *AnalysisHandler) limited(c echo.Context) error {
	return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
}

func observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, ok := util.ParseTime(s)
	if !ok {
		e := xhttp.BadRequestErrorf("invalid now %q", s)
		e.Field = "now"
		return time.Time{}, e
	}
	return t, nil
}
