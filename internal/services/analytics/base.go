// Package analytics holds HTTP clients for external model services.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	xhttp "SignalFusion/pkg/http"

	"github.com/sony/gobreaker"
)

// ErrServiceUnavailable is returned while the circuit breaker is open.
var ErrServiceUnavailable = errors.New("analytics service unavailable")

// BreakerSettings configures the circuit breaker around a service.
type BreakerSettings struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
}

// HTTPServiceBase posts JSON to one base URL through a circuit breaker.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPServiceBase builds a client for baseURL. Consecutive failures beyond
// MaxFailures open the breaker for OpenTimeout.
func NewHTTPServiceBase(baseURL string, timeout time.Duration, bs BreakerSettings) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if bs.MaxFailures == 0 {
		bs.MaxFailures = 5
	}
	return &HTTPServiceBase{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    bs.Name,
			Timeout: bs.OpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= bs.MaxFailures
			},
			IsSuccessful: func(err error) bool {
				// 4xx means the request was bad, not that the service is down
				var se *xhttp.StatusError
				if errors.As(err, &se) {
					return se.StatusCode < http.StatusInternalServerError
				}
				return err == nil
			},
		}),
	}
}

// PostJSON posts payload to path under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("analytics http client not initialized")
	}
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: http.MethodPost,
			URL:    b.baseURL + path,
			Body:   payload,
		}, dest)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("post %s: %w", path, ErrServiceUnavailable)
	}
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// State reports the breaker state, e.g. for health output.
func (b *HTTPServiceBase) State() string {
	return b.breaker.State().String()
}
