// Package notify delivers alert events to Kafka.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/OHANAGROUP/nexfit/internal/domain"
	"github.com/OHANAGROUP/nexfit/internal/events"
)

// AlertTopic is the Kafka topic carrying alert.created events.
const AlertTopic = "alert_events"

// Publisher writes alert events to Kafka, keyed by tenant and subject so a
// subject's alerts stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for the given brokers.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        AlertTopic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		},
	}
}

// PublishAlertCreated serializes and writes one alert.created event.
func (p *Publisher) PublishAlertCreated(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(events.AlertCreated{
		AlertID:    alert.ID,
		TenantID:   alert.TenantID,
		SubjectID:  alert.SubjectID,
		Kind:       string(alert.Kind),
		Title:      alert.Title,
		Message:    alert.Message,
		Severity:   string(alert.Severity),
		DedupKey:   alert.DedupKey,
		DetectedOn: alert.DetectedOn,
		Metadata:   alert.Metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%s:%s", alert.TenantID, alert.SubjectID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("alert.created")},
			{Key: "tenant_id", Value: []byte(alert.TenantID)},
		},
	})
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
