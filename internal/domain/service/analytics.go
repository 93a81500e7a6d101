package service

import (
	"context"
	"time"

	"SignalFusion/internal/domain/models"
)

// PredictionProvider fetches the external model's call for an instrument.
type PredictionProvider interface {
	Predict(ctx context.Context, symbol, interval string) (*models.Prediction, error)
}

// Analyzer runs the indicator and signal-fusion pipeline over one snapshot.
type Analyzer interface {
	Analyze(snap *models.Snapshot, pred *models.Prediction, now time.Time, interval string) *models.Bundle
}
