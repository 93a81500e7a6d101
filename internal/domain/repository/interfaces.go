package repository

import (
	"context"
	"time"

	"SignalFusion/internal/domain/models"
)

// BarStore provides read-only access to bars delivered by the market-data provider.
type BarStore interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time, iv Interval) ([]models.Bar, error)
	GetLatestNBars(ctx context.Context, symbol string, n int, iv Interval) ([]models.Bar, error)
}

// SignalStorage keeps the timeline history of analysed instruments.
type SignalStorage interface {
	Init(ctx context.Context) error
	StoreTimeline(ctx context.Context, symbol string, iv Interval, entries []models.TimelineEntry) error
	// QueryTimeline returns stored signals, newest first. Age and freshness
	// are recomputed by the caller against its own now.
	QueryTimeline(ctx context.Context, symbol string, iv Interval, from, to time.Time, limit int) ([]models.Signal, error)
	Close() error
}

// BundlePublisher forwards finished bundles downstream.
type BundlePublisher interface {
	PublishBundle(ctx context.Context, b *models.Bundle) error
	Close() error
}

type Metrics interface {
	RecordAnalysis(symbol, interval string)
	RecordSignals(family string, n int)
	RecordConfluence(symbol string, score int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
