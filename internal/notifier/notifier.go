package notifier

import (
	"context"

	"fallvision-alarm/internal/models"

	"go.uber.org/zap"
)

// Notifier is the guardian notification transport boundary. Real
// transports (email/SMS/push) live behind this interface; the engine only
// ever calls Notify best-effort.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// LogNotifier simulates delivery by logging the notification. It is the
// default transport.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates the simulated transport.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification as a simulated delivery. It never fails.
func (l *LogNotifier) Notify(ctx context.Context, n models.Notification) error {
	l.logger.Info("Simulated guardian notification",
		zap.String("notification_id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("patient_id", n.PatientID),
		zap.Strings("guardians", n.GuardianIDs),
		zap.String("alert_level", string(n.AlertLevel)),
		zap.String("message", n.Message),
	)
	return nil
}
