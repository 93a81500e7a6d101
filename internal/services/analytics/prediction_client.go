package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SignalFusion/internal/domain/models"
	domsvc "SignalFusion/internal/domain/service"
)

// HTTPPredictionClient asks the external reinforcement-learning service for
// its call on an instrument.
type HTTPPredictionClient struct {
	base *HTTPServiceBase
}

// NewHTTPPredictionClient creates a prediction client for baseURL.
func NewHTTPPredictionClient(baseURL string, timeout time.Duration, maxFailures uint32, openTimeout time.Duration) *HTTPPredictionClient {
	return &HTTPPredictionClient{base: NewHTTPServiceBase(strings.TrimRight(baseURL, "/"), timeout, BreakerSettings{
		Name:        "prediction",
		MaxFailures: maxFailures,
		OpenTimeout: openTimeout,
	})}
}

type predictionRequest struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
}

// Predict returns nil without error when the service has no call for symbol.
func (c *HTTPPredictionClient) Predict(ctx context.Context, symbol, interval string) (*models.Prediction, error) {
	var out models.Prediction
	if err := c.base.PostJSON(ctx, "/predict", predictionRequest{Symbol: symbol, Interval: interval}, &out); err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}
	if strings.TrimSpace(out.Prediction) == "" {
		return nil, nil
	}
	return &out, nil
}

// BreakerState exposes the circuit breaker state.
func (c *HTTPPredictionClient) BreakerState() string { return c.base.State() }

var _ domsvc.PredictionProvider = (*HTTPPredictionClient)(nil)
