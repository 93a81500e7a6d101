package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	xhttp "SignalFusion/pkg/http"
	applogger "SignalFusion/pkg/logger"
	"SignalFusion/pkg/util"
)

// AnalysisRequestHandler consumes analysis requests from Kafka and publishes
// the resulting bundles.
type AnalysisRequestHandler struct {
	topic    string
	analysis *AnalysisUseCase
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewAnalysisRequestHandler(topic string, analysis *AnalysisUseCase, metrics domrepo.Metrics, l *applogger.Logger) *AnalysisRequestHandler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &AnalysisRequestHandler{topic: topic, analysis: analysis, metrics: metrics, l: l}
}

func (h *AnalysisRequestHandler) Topic() string { return h.topic }

func (h *AnalysisRequestHandler) Handle(ctx context.Context, payload []byte) error {
	start := time.Now()
	var msg models.AnalysisRequestMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		h.metrics.RecordError("kafka_decode")
		return fmt.Errorf("decode analysis request: %w", err)
	}
	if msg.Symbol == "" {
		h.metrics.RecordError("kafka_decode")
		return fmt.Errorf("analysis request: %w", ErrSymbolRequired)
	}
	if verrs := xhttp.ValidateStruct(ctx, &msg); len(verrs) > 0 {
		h.metrics.RecordError("kafka_decode")
		return fmt.Errorf("analysis request: %s", verrs[0].Message)
	}

	var now time.Time
	if msg.Now != "" {
		t, ok := util.ParseTime(msg.Now)
		if !ok {
			h.metrics.RecordError("kafka_decode")
			return fmt.Errorf("analysis request: invalid now %q", msg.Now)
		}
		now = t
	}

	bundle, err := h.analysis.Analyze(ctx, AnalyzeParams{
		Symbol:   msg.Symbol,
		Interval: msg.Interval,
		Bars:     msg.N,
		Now:      now,
		Inline:   msg.Bars,
		Publish:  true,
	})
	if err != nil {
		return err
	}
	h.metrics.RecordLatency("kafka_analysis", time.Since(start).Seconds())
	h.l.Debug("analysis request handled",
		applogger.String("symbol", bundle.Symbol),
		applogger.Int("signals", len(bundle.Timeline)),
	)
	return nil
}
