package domain

import "time"

type AlertType string

const (
	AlertCritical AlertType = "critical"
	AlertWarning  AlertType = "warning"
)

// HealthAlert is derived from a single document's observations at extraction
// time. Alerts are independent per document and get a fresh identity on every
// (re-)processing; only the Dismissed flag changes after creation.
type HealthAlert struct {
	ID            string    `json:"id"`
	Type          AlertType `json:"type"`
	DocumentID    string    `json:"document_id"`
	ObservationID string    `json:"observation_id"`
	TestName      string    `json:"test_name"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Date          string    `json:"date,omitempty"`
	Dismissed     bool      `json:"dismissed"`
	CreatedAt     time.Time `json:"created_at"`
}
