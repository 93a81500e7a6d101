package repository

import (
	"context"
	"fmt"

	"SignalFusion/internal/domain/models"
	domrepo "SignalFusion/internal/domain/repository"
	pkgkafka "SignalFusion/pkg/kafka"

	"github.com/google/uuid"
)

// MessagePublisher is the subset of the Kafka producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, m pkgkafka.Message) error
	Close() error
}

// KafkaBundlePublisher sends finished bundles to a Kafka topic keyed by
// symbol, so one instrument's bundles stay ordered on one partition.
type KafkaBundlePublisher struct {
	producer MessagePublisher
	topic    string
}

func NewKafkaBundlePublisher(p MessagePublisher, topic string) *KafkaBundlePublisher {
	return &KafkaBundlePublisher{producer: p, topic: topic}
}

// PublishBundle wraps b in an envelope with a fresh request id. The trace id
// of ctx, when present, is forwarded as a header.
func (p *KafkaBundlePublisher) PublishBundle(ctx context.Context, b *models.Bundle) error {
	if b == nil {
		return nil
	}
	env := models.BundleEnvelope{RequestID: uuid.New().String(), Bundle: b}
	trace := pkgkafka.TraceID(ctx)
	if trace == "" {
		trace = env.RequestID
	}
	err := p.producer.Publish(ctx, p.topic, pkgkafka.Message{
		Key:     []byte(b.Symbol),
		Value:   env,
		Headers: map[string]string{pkgkafka.TraceHeader: trace},
	})
	if err != nil {
		return fmt.Errorf("publish bundle %s: %w", b.Symbol, err)
	}
	return nil
}

func (p *KafkaBundlePublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.BundlePublisher = (*KafkaBundlePublisher)(nil)
