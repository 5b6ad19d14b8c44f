package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fallvision-alarm/internal/models"
	"fallvision-alarm/internal/notifier"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxEntries bounds the retained history; after any append the ledger
// truncates to the most recent maxEntries (oldest dropped first).
const maxEntries = 1000

const (
	alertIDLayout   = "20060102150405"
	summaryIDLayout = "20060102"
)

// Ledger is the append-only notification log. One instance is constructed
// at startup and injected into request handlers; all mutation is
// serialized behind its mutex (read-modify-write of the full list plus
// persist would race otherwise). Persistence is best-effort: a failed
// store write is logged, the in-memory mutation is kept, and the
// operation still reports success.
type Ledger struct {
	mu       sync.Mutex
	store    Store
	notifier notifier.Notifier
	logger   *zap.Logger
	entries  []models.Notification

	now    func() time.Time
	suffix func() string
}

// New loads the history from the store and returns the ledger. A load
// failure starts an empty ledger rather than failing startup.
func New(store Store, n notifier.Notifier, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		store:    store,
		notifier: n,
		logger:   logger,
		now:      time.Now,
		suffix:   shortSuffix,
	}

	entries, err := store.Load()
	if err != nil {
		logger.Warn("Failed to load notification history, starting empty",
			zap.Error(err),
		)
		entries = nil
	}
	l.entries = entries
	return l
}

// shortSuffix returns 8 hex characters of randomness. Notification IDs
// keep their timestamp-derived shape but cannot collide at sub-second
// call rates.
func shortSuffix() string {
	return uuid.New().String()[:8]
}

// SendThresholdAlert records a threshold breach and notifies guardians.
// Delivery is simulated as always successful; method defaults to "all".
func (l *Ledger) SendThresholdAlert(ctx context.Context, patientID string, guardianIDs []string, alert models.LimbCheckResult, method string) models.DeliveryReceipt {
	if method == "" {
		method = "all"
	}

	message := alert.Message
	if message == "" {
		message = "Alert triggered"
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		l.logger.Error("Failed to marshal alert payload", zap.Error(err))
		payload = json.RawMessage("{}")
	}

	l.mu.Lock()
	now := l.now()
	notification := models.Notification{
		ID:          l.newID("ALERT", alertIDLayout, now),
		Type:        models.NotificationThresholdAlert,
		PatientID:   patientID,
		GuardianIDs: guardianIDs,
		AlertLevel:  alert.AlertLevel,
		Message:     message,
		Method:      method,
		Status:      models.NotificationSent,
		Timestamp:   now,
		Payload:     payload,
	}
	l.appendLocked(notification)
	l.mu.Unlock()

	l.deliver(ctx, notification)
	l.logger.Info("🚨 Threshold alert sent",
		zap.String("notification_id", notification.ID),
		zap.Int("guardians", len(guardianIDs)),
		zap.String("message", message),
	)

	return models.DeliveryReceipt{
		Success:        true,
		NotificationID: notification.ID,
		DeliveredTo:    guardianIDs,
		Method:         method,
		Timestamp:      now,
	}
}

// SendSOSAlert records an emergency SOS with optional location and vitals.
func (l *Ledger) SendSOSAlert(ctx context.Context, patientID string, guardianIDs []string, location *models.SOSLocation, vitals map[string]float64) models.DeliveryReceipt {
	payloadFields := map[string]interface{}{}
	if location != nil {
		payloadFields["location"] = location
	} else {
		payloadFields["location"] = map[string]string{"status": "unavailable"}
	}
	if vitals == nil {
		vitals = map[string]float64{}
	}
	payloadFields["vitals"] = vitals

	payload, err := json.Marshal(payloadFields)
	if err != nil {
		l.logger.Error("Failed to marshal SOS payload", zap.Error(err))
		payload = json.RawMessage("{}")
	}

	l.mu.Lock()
	now := l.now()
	notification := models.Notification{
		ID:          l.newID("SOS", alertIDLayout, now),
		Type:        models.NotificationSOSEmergency,
		PatientID:   patientID,
		GuardianIDs: guardianIDs,
		AlertLevel:  models.AlertRed,
		Message:     "🆘 EMERGENCY SOS ACTIVATED - Immediate assistance required!",
		Method:      "all",
		Status:      models.NotificationSent,
		Timestamp:   now,
		Payload:     payload,
	}
	l.appendLocked(notification)
	l.mu.Unlock()

	l.deliver(ctx, notification)
	l.logger.Error("🆘 SOS ALERT",
		zap.String("notification_id", notification.ID),
		zap.String("patient_id", patientID),
		zap.Int("guardians", len(guardianIDs)),
	)

	return models.DeliveryReceipt{
		Success:        true,
		NotificationID: notification.ID,
		DeliveredTo:    guardianIDs,
		Method:         "all",
		Timestamp:      now,
		Message:        "Emergency services and guardians notified",
	}
}

// SendDailySummary records a daily report built from the trailing 24h
// window. Duplicate summaries for the same day are allowed and retained.
func (l *Ledger) SendDailySummary(ctx context.Context, patientID string, guardianIDs []string) models.DeliveryReceipt {
	l.mu.Lock()
	now := l.now()
	summary := l.alertSummaryLocked(patientID, 24, now)

	payload, err := json.Marshal(summary)
	if err != nil {
		l.logger.Error("Failed to marshal summary payload", zap.Error(err))
		payload = json.RawMessage("{}")
	}

	notification := models.Notification{
		ID:          l.newID("SUMMARY", summaryIDLayout, now),
		Type:        models.NotificationDailySummary,
		PatientID:   patientID,
		GuardianIDs: guardianIDs,
		Message:     fmt.Sprintf("Daily Report: %d total alerts", summary.TotalAlerts),
		Status:      models.NotificationSent,
		Timestamp:   now,
		Payload:     payload,
	}
	l.appendLocked(notification)
	l.mu.Unlock()

	l.deliver(ctx, notification)
	l.logger.Info("📊 Daily summary sent",
		zap.String("notification_id", notification.ID),
		zap.String("patient_id", patientID),
		zap.Int("total_alerts", summary.TotalAlerts),
	)

	return models.DeliveryReceipt{
		Success:        true,
		NotificationID: notification.ID,
		DeliveredTo:    guardianIDs,
		Method:         "all",
		Timestamp:      now,
	}
}

// AcknowledgeAlert marks the notification as acknowledged and records who
// and when. Returns false when the id is unknown. Re-acknowledging simply
// overwrites acknowledger and timestamp (idempotent overwrite).
func (l *Ledger) AcknowledgeAlert(notificationID, acknowledgedBy string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID != notificationID {
			continue
		}
		now := l.now()
		by := acknowledgedBy
		l.entries[i].Status = models.NotificationAcknowledged
		l.entries[i].AcknowledgedBy = &by
		l.entries[i].AcknowledgedAt = &now
		l.persistLocked()

		l.logger.Info("Alert acknowledged",
			zap.String("notification_id", notificationID),
			zap.String("acknowledged_by", acknowledgedBy),
		)
		return true
	}
	return false
}

// UnacknowledgedAlerts returns the patient's threshold alerts still in
// sent status, in append (chronological) order.
func (l *Ledger) UnacknowledgedAlerts(patientID string) []models.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending := []models.Notification{}
	for _, n := range l.entries {
		if n.PatientID == patientID &&
			n.Type == models.NotificationThresholdAlert &&
			n.Status == models.NotificationSent {
			pending = append(pending, n)
		}
	}
	return pending
}

// AlertSummary buckets the patient's notifications within the trailing
// window by level and type.
func (l *Ledger) AlertSummary(patientID string, hours int) models.AlertSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.alertSummaryLocked(patientID, hours, l.now())
}

// Size reports the number of retained entries.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// History returns a copy of the retained entries in append order.
func (l *Ledger) History() []models.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	history := make([]models.Notification, len(l.entries))
	copy(history, l.entries)
	return history
}

func (l *Ledger) alertSummaryLocked(patientID string, hours int, now time.Time) models.AlertSummary {
	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	summary := models.AlertSummary{
		TimePeriodHours: hours,
		GeneratedAt:     now,
	}

	for _, n := range l.entries {
		if n.PatientID != patientID || !n.Timestamp.After(cutoff) {
			continue
		}
		summary.TotalAlerts++
		switch n.AlertLevel {
		case models.AlertRed:
			summary.CriticalAlerts++
		case models.AlertOrange:
			summary.WarningAlerts++
		case models.AlertYellow:
			summary.CautionAlerts++
		}
		if n.Type == models.NotificationSOSEmergency {
			summary.SOSAlerts++
		}
		if n.Status == models.NotificationSent {
			summary.Unacknowledged++
		}
	}
	return summary
}

// appendLocked appends, evicts to the newest maxEntries, then persists.
func (l *Ledger) appendLocked(n models.Notification) {
	l.entries = append(l.entries, n)
	if len(l.entries) > maxEntries {
		l.entries = l.entries[len(l.entries)-maxEntries:]
	}
	l.persistLocked()
}

func (l *Ledger) persistLocked() {
	snapshot := make([]models.Notification, len(l.entries))
	copy(snapshot, l.entries)
	if err := l.store.Save(snapshot); err != nil {
		l.logger.Error("Failed to save notification history",
			zap.Error(err),
		)
	}
}

func (l *Ledger) deliver(ctx context.Context, n models.Notification) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Notify(ctx, n); err != nil {
		l.logger.Error("Guardian notification delivery failed",
			zap.String("notification_id", n.ID),
			zap.Error(err),
		)
	}
}

func (l *Ledger) newID(prefix, layout string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format(layout), l.suffix())
}
