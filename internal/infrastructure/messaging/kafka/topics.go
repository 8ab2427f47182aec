// Package kafka publishes dataset lifecycle events so downstream consumers
// (exports, alerting, warm-up jobs) learn about fresh imports.
package kafka

import (
	"encoding/json"
	"time"
)

// Topic constants.
const (
	TopicDatasetRefreshed = "rdobs.dataset.refreshed"
	TopicImportFailed     = "rdobs.import.failed"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// DatasetRefreshedPayload announces a newly activated dataset version.
type DatasetRefreshedPayload struct {
	Version          string    `json:"version"`
	Source           string    `json:"source"`
	ObservationCount int       `json:"observation_count"`
	Years            []int     `json:"years"`
	LoadedAt         time.Time `json:"loaded_at"`
}

// ImportFailedPayload reports a failed import attempt.
type ImportFailedPayload struct {
	Source   string    `json:"source"`
	Object   string    `json:"object,omitempty"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}
