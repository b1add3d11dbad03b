// Package events defines the event payloads published to Kafka.
package events

import "time"

// AlertCreated is emitted when the detector inserts a new alert, so
// downstream consumers (push, email digests) can fan it out.
type AlertCreated struct {
	AlertID    string         `json:"alert_id"`
	TenantID   string         `json:"tenant_id"`
	SubjectID  string         `json:"subject_id"`
	Kind       string         `json:"kind"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Severity   string         `json:"severity"`
	DedupKey   string         `json:"dedup_key"`
	DetectedOn time.Time      `json:"detected_on"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
