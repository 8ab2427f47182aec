package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes dataset events. A disabled producer (kafka.enabled =
// false) is a valid no-op so single-node deployments need no broker.
type Producer struct {
	writer  writerInterface
	enabled bool
	source  string
	log     logging.Logger
	metrics *prometheus.AppMetrics
}

// NewProducer builds the event producer.
func NewProducer(cfg config.KafkaConfig, log logging.Logger, metrics *prometheus.AppMetrics) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewAppMetrics(prometheus.NewNopCollector())
	}
	p := &Producer{
		enabled: cfg.Enabled,
		source:  "rd-observatory",
		log:     log.Named("kafka"),
		metrics: metrics,
	}
	if !cfg.Enabled {
		p.log.Info("kafka disabled, dataset events will not be published")
		return p
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  cfg.MaxRetries,
		RequiredAcks: kafka.RequireOne,
	}
	return p
}

// publish wraps a payload in the standard envelope and writes it, keyed so
// events for one dataset version stay ordered within a partition.
func (p *Producer) publish(ctx context.Context, topic, eventType, key string, payload interface{}) error {
	if !p.enabled {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "event payload serialization failed")
	}
	envelope := EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        p.source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       raw,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "event envelope serialization failed")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		return errors.Wrap(err, errors.ErrCodeExternalService, "publishing event failed").WithDetail(topic)
	}

	p.metrics.EventsPublished.WithLabelValues(topic, "ok").Inc()
	p.log.Debug("event published", logging.String("topic", topic), logging.String("type", eventType))
	return nil
}

// DatasetRefreshed announces a newly activated dataset version.
func (p *Producer) DatasetRefreshed(ctx context.Context, payload DatasetRefreshedPayload) error {
	return p.publish(ctx, TopicDatasetRefreshed, "dataset.refreshed", payload.Version, payload)
}

// ImportFailed reports a failed import attempt.
func (p *Producer) ImportFailed(ctx context.Context, payload ImportFailedPayload) error {
	return p.publish(ctx, TopicImportFailed, "import.failed", payload.Source, payload)
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
