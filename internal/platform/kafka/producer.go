// Package kafka publishes resource events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/Apurer/go-gin-users-orders/internal/platform/metrics"
	"github.com/Apurer/go-gin-users-orders/internal/shared/events"
)

var _ events.Publisher = (*Publisher)(nil)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("kafka publisher closed")

// Publisher hands events to an asynchronous producer and keys them by resource so one
// record's history stays on one partition. Broker acknowledgements are counted and
// logged in the background, never on the request path.
type Publisher struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.EventMetrics

	mu      sync.RWMutex
	closed  bool
	drained sync.WaitGroup
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *metrics.EventMetrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// NewPublisher dials the brokers with an idempotent, fully acknowledged producer.
func NewPublisher(brokers []string, topic string, opts ...Option) (*Publisher, error) {
	producer, err := sarama.NewAsyncProducer(brokers, producerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newPublisher(producer, topic, opts...), nil
}

func producerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "users-orders-api"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	return config
}

// newPublisher starts the goroutines that drain the producer's result channels.
// The producer must report both successes and errors.
func newPublisher(producer sarama.AsyncProducer, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p.logger = p.logger.With(slog.String("component", "kafka-publisher"))

	p.drained.Add(2)
	go p.drainSuccesses()
	go p.drainErrors()
	return p
}

// MessageKey is the partitioning key for an event, e.g. "user:42".
func MessageKey(event events.Event) string {
	return fmt.Sprintf("%s:%d", event.Resource, event.ResourceID)
}

// Publish marshals the event to JSON and enqueues it. It blocks only while the
// producer buffer is full, and no longer than ctx allows.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(MessageKey(event)),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
		Metadata: event.Type,
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		err := ctx.Err()
		p.metrics.Observe(string(event.Type), err)
		p.logger.LogAttrs(ctx, slog.LevelError, "failed to enqueue event for kafka",
			slog.String("topic", p.topic),
			slog.String("key", MessageKey(event)),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to enqueue event: %w", err)
	}
}

func (p *Publisher) drainSuccesses() {
	defer p.drained.Done()
	for msg := range p.producer.Successes() {
		p.metrics.Observe(eventType(msg), nil)
		p.logger.LogAttrs(context.Background(), slog.LevelDebug, "event sent to kafka",
			slog.String("topic", msg.Topic),
			slog.String("key", messageKey(msg)),
			slog.Int("partition", int(msg.Partition)),
			slog.Int64("offset", msg.Offset),
		)
	}
}

func (p *Publisher) drainErrors() {
	defer p.drained.Done()
	for perr := range p.producer.Errors() {
		p.metrics.Observe(eventType(perr.Msg), perr.Err)
		p.logger.LogAttrs(context.Background(), slog.LevelError, "failed to send event to kafka",
			slog.String("topic", p.topic),
			slog.String("key", messageKey(perr.Msg)),
			slog.String("type", eventType(perr.Msg)),
			slog.String("error", perr.Err.Error()),
		)
	}
}

// Close flushes buffered events and waits until every outcome has been recorded.
// Publish fails with ErrPublisherClosed afterwards.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.producer.AsyncClose()
	p.drained.Wait()
	return nil
}

func eventType(msg *sarama.ProducerMessage) string {
	if msg == nil {
		return "unknown"
	}
	if t, ok := msg.Metadata.(events.Type); ok {
		return string(t)
	}
	return "unknown"
}

func messageKey(msg *sarama.ProducerMessage) string {
	if msg == nil || msg.Key == nil {
		return ""
	}
	key, err := msg.Key.Encode()
	if err != nil {
		return ""
	}
	return string(key)
}
