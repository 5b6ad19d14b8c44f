package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"fallvision-alarm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore records saves in memory and can simulate failures.
type fakeStore struct {
	entries   []models.Notification
	loadErr   error
	saveErr   error
	saveCalls int
}

func (s *fakeStore) Load() ([]models.Notification, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.entries, nil
}

func (s *fakeStore) Save(entries []models.Notification) error {
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries = entries
	return nil
}

func newTestLedger(t *testing.T, store Store) *Ledger {
	t.Helper()
	return New(store, nil, zap.NewNop())
}

// withCounterSuffix makes notification IDs deterministic and unique.
func withCounterSuffix(l *Ledger) {
	n := 0
	l.suffix = func() string {
		n++
		return fmt.Sprintf("%08x", n)
	}
}

func redAlert() models.LimbCheckResult {
	return models.LimbCheckResult{
		Limb:       models.LimbRightArm,
		Angle:      130,
		Status:     models.LimbStatusAlert,
		AlertLevel: models.AlertRed,
		Message:    "critical right arm angle",
	}
}

func TestSendThresholdAlert(t *testing.T) {
	store := &fakeStore{}
	l := newTestLedger(t, store)

	receipt := l.SendThresholdAlert(context.Background(), "patient-1", []string{"g1", "g2"}, redAlert(), "")

	assert.True(t, receipt.Success)
	assert.Equal(t, []string{"g1", "g2"}, receipt.DeliveredTo)
	assert.Equal(t, "all", receipt.Method)
	assert.Regexp(t, regexp.MustCompile(`^ALERT-\d{14}-[0-9a-f]{8}$`), receipt.NotificationID)

	require.Equal(t, 1, l.Size())
	entry := l.History()[0]
	assert.Equal(t, models.NotificationThresholdAlert, entry.Type)
	assert.Equal(t, models.AlertRed, entry.AlertLevel)
	assert.Equal(t, models.NotificationSent, entry.Status)
	assert.Equal(t, "critical right arm angle", entry.Message)
	assert.Nil(t, entry.AcknowledgedBy)

	var payload models.LimbCheckResult
	require.NoError(t, json.Unmarshal(entry.Payload, &payload))
	assert.Equal(t, models.LimbRightArm, payload.Limb)

	// One save for the append.
	assert.Equal(t, 1, store.saveCalls)
}

func TestSendThresholdAlert_DefaultsMessage(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})

	alert := redAlert()
	alert.Message = ""
	l.SendThresholdAlert(context.Background(), "patient-1", nil, alert, "sms")

	entry := l.History()[0]
	assert.Equal(t, "Alert triggered", entry.Message)
	assert.Equal(t, "sms", entry.Method)
}

func TestSendSOSAlert(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})

	location := &models.SOSLocation{Latitude: 51.5, Longitude: -0.12}
	vitals := map[string]float64{"heart_rate": 120}
	receipt := l.SendSOSAlert(context.Background(), "patient-1", []string{"g1"}, location, vitals)

	assert.True(t, receipt.Success)
	assert.Regexp(t, regexp.MustCompile(`^SOS-\d{14}-[0-9a-f]{8}$`), receipt.NotificationID)
	assert.Equal(t, "Emergency services and guardians notified", receipt.Message)

	entry := l.History()[0]
	assert.Equal(t, models.NotificationSOSEmergency, entry.Type)
	assert.Equal(t, models.AlertRed, entry.AlertLevel)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(entry.Payload, &payload))
	assert.Contains(t, string(payload["location"]), "51.5")
	assert.Contains(t, string(payload["vitals"]), "heart_rate")
}

func TestSendSOSAlert_MissingLocation(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})

	l.SendSOSAlert(context.Background(), "patient-1", nil, nil, nil)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(l.History()[0].Payload, &payload))
	assert.JSONEq(t, `{"status":"unavailable"}`, string(payload["location"]))
	assert.JSONEq(t, `{}`, string(payload["vitals"]))
}

func TestSendDailySummary(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})

	l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")
	l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")

	receipt := l.SendDailySummary(context.Background(), "patient-1", []string{"g1"})

	assert.True(t, receipt.Success)
	assert.Regexp(t, regexp.MustCompile(`^SUMMARY-\d{8}-[0-9a-f]{8}$`), receipt.NotificationID)

	entry := l.History()[2]
	assert.Equal(t, models.NotificationDailySummary, entry.Type)
	assert.Equal(t, "Daily Report: 2 total alerts", entry.Message)

	var summary models.AlertSummary
	require.NoError(t, json.Unmarshal(entry.Payload, &summary))
	assert.Equal(t, 2, summary.TotalAlerts)
	assert.Equal(t, 2, summary.CriticalAlerts)
	assert.Equal(t, 24, summary.TimePeriodHours)
}

func TestAcknowledgeAlert(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})

	receipt := l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")

	ok := l.AcknowledgeAlert(receipt.NotificationID, "guardian-1")
	require.True(t, ok)

	entry := l.History()[0]
	assert.Equal(t, models.NotificationAcknowledged, entry.Status)
	require.NotNil(t, entry.AcknowledgedBy)
	assert.Equal(t, "guardian-1", *entry.AcknowledgedBy)
	assert.NotNil(t, entry.AcknowledgedAt)
}

func TestAcknowledgeAlert_Unknown(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})
	assert.False(t, l.AcknowledgeAlert("ALERT-00000000000000-deadbeef", "guardian-1"))
}

func TestAcknowledgeAlert_OverwritesOnRepeat(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})

	receipt := l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")
	require.True(t, l.AcknowledgeAlert(receipt.NotificationID, "guardian-1"))
	require.True(t, l.AcknowledgeAlert(receipt.NotificationID, "guardian-2"))

	entry := l.History()[0]
	assert.Equal(t, models.NotificationAcknowledged, entry.Status)
	assert.Equal(t, "guardian-2", *entry.AcknowledgedBy)
}

func TestUnacknowledgedAlerts(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})

	first := l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")
	l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")
	l.SendThresholdAlert(context.Background(), "patient-2", nil, redAlert(), "")
	l.SendSOSAlert(context.Background(), "patient-1", nil, nil, nil)
	l.SendDailySummary(context.Background(), "patient-1", nil)

	l.AcknowledgeAlert(first.NotificationID, "guardian-1")

	pending := l.UnacknowledgedAlerts("patient-1")
	require.Len(t, pending, 1)
	assert.Equal(t, models.NotificationThresholdAlert, pending[0].Type)
	assert.NotEqual(t, first.NotificationID, pending[0].ID)
}

func TestUnacknowledgedAlerts_Empty(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})
	assert.Empty(t, l.UnacknowledgedAlerts("patient-1"))
}

func TestAlertSummary_Window(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})
	withCounterSuffix(l)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base.Add(-30 * time.Hour) }
	l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")

	l.now = func() time.Time { return base.Add(-2 * time.Hour) }
	l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")
	orange := redAlert()
	orange.AlertLevel = models.AlertOrange
	l.SendThresholdAlert(context.Background(), "patient-1", nil, orange, "")
	l.SendSOSAlert(context.Background(), "patient-1", nil, nil, nil)

	l.now = func() time.Time { return base }
	summary := l.AlertSummary("patient-1", 24)

	assert.Equal(t, 3, summary.TotalAlerts)
	assert.Equal(t, 2, summary.CriticalAlerts) // one threshold RED + the SOS
	assert.Equal(t, 1, summary.WarningAlerts)
	assert.Equal(t, 0, summary.CautionAlerts)
	assert.Equal(t, 1, summary.SOSAlerts)
	assert.Equal(t, 3, summary.Unacknowledged)
	assert.Equal(t, 24, summary.TimePeriodHours)
	assert.Equal(t, base, summary.GeneratedAt)
}

func TestAlertSummary_FiltersPatient(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})

	l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")
	l.SendThresholdAlert(context.Background(), "patient-2", nil, redAlert(), "")

	summary := l.AlertSummary("patient-2", 24)
	assert.Equal(t, 1, summary.TotalAlerts)
}

func TestLedger_EvictsOldestBeyondCap(t *testing.T) {
	l := newTestLedger(t, &fakeStore{})
	withCounterSuffix(l)

	for i := 0; i < maxEntries+1; i++ {
		l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")
	}

	assert.Equal(t, maxEntries, l.Size())

	// The very first entry (suffix 00000001) is gone; the second survives.
	history := l.History()
	assert.NotContains(t, history[0].ID, "00000001")
	assert.Contains(t, history[0].ID, "00000002")
}

func TestLedger_KeepsEntriesWhenSaveFails(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	l := newTestLedger(t, store)

	receipt := l.SendThresholdAlert(context.Background(), "patient-1", nil, redAlert(), "")

	assert.True(t, receipt.Success)
	assert.Equal(t, 1, l.Size())
}

func TestNew_StartsEmptyOnLoadFailure(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("corrupt file")}
	l := newTestLedger(t, store)
	assert.Equal(t, 0, l.Size())
}

func TestNew_LoadsExistingHistory(t *testing.T) {
	store := &fakeStore{entries: []models.Notification{
		{ID: "ALERT-20260830120000-deadbeef", Type: models.NotificationThresholdAlert, PatientID: "patient-1", Status: models.NotificationSent, Timestamp: time.Now()},
	}}
	l := newTestLedger(t, store)

	assert.Equal(t, 1, l.Size())
	assert.Len(t, l.UnacknowledgedAlerts("patient-1"), 1)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	store := NewFileStore(path)

	// Missing file loads as an empty ledger.
	entries, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	saved := []models.Notification{
		{
			ID:        "ALERT-20260830120000-deadbeef",
			Type:      models.NotificationThresholdAlert,
			PatientID: "patient-1",
			Status:    models.NotificationSent,
			Timestamp: now,
			Payload:   json.RawMessage(`{"limb":"right_arm"}`),
		},
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, saved[0].ID, loaded[0].ID)
	assert.JSONEq(t, `{"limb":"right_arm"}`, string(loaded[0].Payload))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	store := NewFileStore(path)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err := store.Load()
	assert.Error(t, err)
}

func TestLedger_PersistsThroughFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	l := New(NewFileStore(path), nil, zap.NewNop())

	receipt := l.SendThresholdAlert(context.Background(), "patient-1", []string{"g1"}, redAlert(), "")
	require.True(t, l.AcknowledgeAlert(receipt.NotificationID, "guardian-1"))

	// A fresh ledger over the same file sees the acknowledged entry.
	reloaded := New(NewFileStore(path), nil, zap.NewNop())
	require.Equal(t, 1, reloaded.Size())
	entry := reloaded.History()[0]
	assert.Equal(t, models.NotificationAcknowledged, entry.Status)
	assert.Equal(t, "guardian-1", *entry.AcknowledgedBy)
}
