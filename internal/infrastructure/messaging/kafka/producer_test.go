package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
)

type capturingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *capturingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *capturingWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_DatasetRefreshed(t *testing.T) {
	t.Parallel()

	w := &capturingWriter{}
	p := &Producer{writer: w, enabled: true, source: "rd-observatory"}
	p.log = logging.NewNopLogger()
	p.metrics = prometheus.NewAppMetrics(prometheus.NewNopCollector())

	payload := DatasetRefreshedPayload{
		Version:          "v42",
		Source:           "eurostat",
		ObservationCount: 123,
		Years:            []int{2022, 2023},
		LoadedAt:         time.Now().UTC(),
	}
	require.NoError(t, p.DatasetRefreshed(context.Background(), payload))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, TopicDatasetRefreshed, msg.Topic)
	assert.Equal(t, "v42", string(msg.Key), "keyed by version for partition ordering")

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, "dataset.refreshed", envelope.EventType)
	assert.NotEmpty(t, envelope.EventID)

	var decoded DatasetRefreshedPayload
	require.NoError(t, json.Unmarshal(envelope.Payload, &decoded))
	assert.Equal(t, payload.Version, decoded.Version)
	assert.Equal(t, payload.ObservationCount, decoded.ObservationCount)
}

func TestProducer_DisabledIsNoOp(t *testing.T) {
	t.Parallel()

	p := NewProducer(config.KafkaConfig{Enabled: false}, nil, nil)
	assert.NoError(t, p.DatasetRefreshed(context.Background(), DatasetRefreshedPayload{Version: "v1"}))
	assert.NoError(t, p.Close())
}

func TestProducer_WriteFailure(t *testing.T) {
	t.Parallel()

	w := &capturingWriter{err: context.DeadlineExceeded}
	p := &Producer{writer: w, enabled: true, source: "rd-observatory"}
	p.log = logging.NewNopLogger()
	p.metrics = prometheus.NewAppMetrics(prometheus.NewNopCollector())

	err := p.ImportFailed(context.Background(), ImportFailedPayload{Source: "eurostat", Reason: "boom"})
	assert.Error(t, err)
}

func TestProducer_Close(t *testing.T) {
	t.Parallel()

	w := &capturingWriter{}
	p := &Producer{writer: w, enabled: true}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
