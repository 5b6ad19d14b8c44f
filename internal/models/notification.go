package models

import (
	"encoding/json"
	"time"
)

// NotificationType discriminates ledger entries.
type NotificationType string

const (
	NotificationThresholdAlert NotificationType = "threshold_alert"
	NotificationSOSEmergency   NotificationType = "sos_emergency"
	NotificationDailySummary   NotificationType = "daily_summary"
)

// NotificationStatus tracks the acknowledgment lifecycle.
type NotificationStatus string

const (
	NotificationSent         NotificationStatus = "sent"
	NotificationAcknowledged NotificationStatus = "acknowledged"
)

// Notification is one ledger entry. Entries are appended on send, mutated
// in place on acknowledgment and never deleted individually; the ledger
// truncates to its most recent 1000 entries as the only removal path.
type Notification struct {
	ID             string             `json:"id"`
	Type           NotificationType   `json:"type"`
	PatientID      string             `json:"patient_id"`
	GuardianIDs    []string           `json:"guardian_ids"`
	AlertLevel     AlertLevel         `json:"alert_level,omitempty"`
	Message        string             `json:"message"`
	Method         string             `json:"method,omitempty"`
	Status         NotificationStatus `json:"status"`
	AcknowledgedBy *string            `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time         `json:"acknowledged_at,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
	Payload        json.RawMessage    `json:"payload,omitempty"`
}

// DeliveryReceipt echoes a simulated delivery back to the caller.
type DeliveryReceipt struct {
	Success        bool      `json:"success"`
	NotificationID string    `json:"notification_id"`
	DeliveredTo    []string  `json:"delivered_to"`
	Method         string    `json:"delivery_method"`
	Timestamp      time.Time `json:"timestamp"`
	Message        string    `json:"message,omitempty"`
}

// SOSLocation is the optional GPS fix attached to an SOS alert.
type SOSLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AlertSummary is the trailing-window bucket count for a patient. Level
// buckets count every in-window notification regardless of type, and
// Unacknowledged counts anything still in sent status.
type AlertSummary struct {
	TotalAlerts     int       `json:"total_alerts"`
	CriticalAlerts  int       `json:"critical_alerts"`
	WarningAlerts   int       `json:"warning_alerts"`
	CautionAlerts   int       `json:"caution_alerts"`
	SOSAlerts       int       `json:"sos_alerts"`
	Unacknowledged  int       `json:"unacknowledged"`
	TimePeriodHours int       `json:"time_period_hours"`
	GeneratedAt     time.Time `json:"summary_generated"`
}
