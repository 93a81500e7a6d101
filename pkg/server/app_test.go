package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalFusion/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (c recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

type noRoutes struct{}

func (noRoutes) RegisterRoutes(*echo.Echo) {}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second

	var order []string
	app := New(cfg, nil, noRoutes{},
		WithCloser("first", recordingCloser{name: "first", order: &order}),
		WithCloser("second", recordingCloser{name: "second", order: &order, err: errors.New("already closed")}),
	)
	require.NotNil(t, app.HTTP().Echo())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.EqualError(t, err, "already closed")
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestMetricsRouteFollowsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	app := New(cfg, nil, noRoutes{})
	for _, r := range app.HTTP().Echo().Routes() {
		assert.NotEqual(t, "/metrics", r.Path)
	}
}
