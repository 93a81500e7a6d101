package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

type funcHandler struct {
	topic string
	fn    func(context.Context, []byte) error
}

func (h funcHandler) Topic() string { return h.topic }
func (h funcHandler) Handle(ctx context.Context, b []byte) error { return h.fn(ctx, b) }

func TestProducerEncodesValuesAndHeaders(t *testing.T) {
	w := &captureWriter{}
	p := newProducer(w, "snappy")

	err := p.PublishBatch(context.Background(), "analysis.bundles", []Message{
		{Key: []byte("ACME"), Value: map[string]int{"score": 74}, Headers: map[string]string{TraceHeader: "abc"}},
		{Key: []byte("XYZ"), Value: "raw"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "analysis.bundles", w.msgs[0].Topic)
	assert.JSONEq(t, `{"score":74}`, string(w.msgs[0].Value))
	assert.Equal(t, "abc", ExtractTraceID(w.msgs[0]))
	assert.Equal(t, "raw", string(w.msgs[1].Value))

	w.err = errors.New("broker down")
	assert.Error(t, p.Publish(context.Background(), "t", Message{Value: []byte("x")}))
	assert.NoError(t, p.PublishBatch(context.Background(), "t", nil))
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
	_, err = NewConsumer()
	assert.Error(t, err)
}

func TestConsumerRetriesThenSucceeds(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(3, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)

	calls := 0
	h := funcHandler{topic: "in", fn: func(ctx context.Context, _ []byte) error {
		calls++
		assert.NotEmpty(t, TraceID(ctx))
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}}
	c.RegisterHandler(h)
	c.WithConsumerHook(NewHookChain(TraceHook(), nil))

	err = c.handle(h, &message{topic: "in", data: []byte("{}")})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumerGivesUpAfterRetryMax(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(1, time.Millisecond, time.Millisecond),
	)
	require.NoError(t, err)
	dlq := &captureWriter{}
	c.dlq = dlq
	c.cfg.DLQTopic = "in.dlq"

	var onError int
	c.WithConsumerHook(HookFuncs{Err: func(context.Context, string, kafka.Message, []byte, error) { onError++ }})
	calls := 0
	h := funcHandler{topic: "in", fn: func(context.Context, []byte) error {
		calls++
		return errors.New("permanent")
	}}
	c.RegisterHandler(h)

	c.process(&message{topic: "in", data: []byte("bad"), km: kafka.Message{Value: []byte("bad")}})
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, onError)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "in.dlq", dlq.msgs[0].Topic)
}

func TestConsumerRecoversHandlerPanic(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}), WithConsumerRetry(0, 0, 0))
	require.NoError(t, err)
	h := funcHandler{topic: "in", fn: func(context.Context, []byte) error { panic("boom") }}
	assert.Error(t, c.handle(h, &message{topic: "in"}))
}

func TestHookChainStopsOnBeforeError(t *testing.T) {
	var order []string
	first := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, d []byte) (context.Context, kafka.Message, []byte, error) {
			order = append(order, "first")
			return ctx, km, append(d, '!'), nil
		},
		After: func(context.Context, string, kafka.Message, []byte, error) { order = append(order, "after-first") },
	}
	second := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, d []byte) (context.Context, kafka.Message, []byte, error) {
			panic("bad hook")
		},
		Err: func(context.Context, string, kafka.Message, []byte, error) { order = append(order, "err-second") },
	}

	chain := NewHookChain(first, second)
	_, _, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	var he *HookError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "ERR_PANIC", he.Code)
	assert.Equal(t, []string{"first", "err-second"}, order)
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 80*time.Millisecond)
	}
}
