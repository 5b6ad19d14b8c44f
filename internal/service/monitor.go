package service

import (
	"context"
	"fmt"
	"time"

	"fallvision-alarm/internal/cache"
	"fallvision-alarm/internal/ledger"
	"fallvision-alarm/internal/models"
	"fallvision-alarm/internal/risk"
	"fallvision-alarm/internal/threshold"

	"go.uber.org/zap"
)

// CheckRequest is one monitoring request from the caller: the per-limb
// angle readings plus the brain-movement correlation and posture score.
type CheckRequest struct {
	PatientID        string               `json:"patient_id"`
	GuardianIDs      []string             `json:"guardian_ids"`
	Readings         []models.LimbReading `json:"readings"`
	BrainCorrelation float64              `json:"brain_correlation"`
	PostureScore     float64              `json:"posture_score"`
}

// MonitorService runs the evaluation pipeline: threshold checks, brain
// sync, risk scoring, then guardian notification for levels flagged
// notify-immediately. The cache is optional (nil disables it).
type MonitorService struct {
	checker *threshold.Checker
	scorer  *risk.Scorer
	ledger  *ledger.Ledger
	cache   *cache.StatusCache
	logger  *zap.Logger
}

// NewMonitorService wires the evaluation pipeline together.
func NewMonitorService(
	checker *threshold.Checker,
	scorer *risk.Scorer,
	l *ledger.Ledger,
	statusCache *cache.StatusCache,
	logger *zap.Logger,
) *MonitorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitorService{
		checker: checker,
		scorer:  scorer,
		ledger:  l,
		cache:   statusCache,
		logger:  logger,
	}
}

// Check evaluates one monitoring request end to end. RED limb alerts are
// forwarded to the notification ledger; everything else only shows up in
// the returned result.
func (s *MonitorService) Check(ctx context.Context, req CheckRequest) (*models.MonitoringResult, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}
	if len(req.Readings) == 0 {
		return nil, fmt.Errorf("at least one reading is required")
	}

	report := s.checker.CheckAllLimbs(req.Readings)
	brainSync := s.checker.CheckBrainSync(req.BrainCorrelation)
	riskScore := s.scorer.Score(req.Readings, req.BrainCorrelation, req.PostureScore)

	result := &models.MonitoringResult{
		Report:    report,
		BrainSync: brainSync,
		Risk:      riskScore,
		Timestamp: time.Now(),
	}

	for _, alert := range report.Alerts {
		levelConfig, ok := alert.AlertLevel.Config()
		if !ok || !levelConfig.NotifyImmediately {
			continue
		}
		s.ledger.SendThresholdAlert(ctx, req.PatientID, req.GuardianIDs, alert, "")
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, req.PatientID, result); err != nil {
			s.logger.Error("Failed to cache monitoring result",
				zap.String("patient_id", req.PatientID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Monitoring check completed",
		zap.String("patient_id", req.PatientID),
		zap.Int("alert_count", report.AlertCount),
		zap.Float64("total_risk", riskScore.TotalRisk),
		zap.String("risk_level", string(riskScore.Level)),
	)
	return result, nil
}

// SendSOS forwards an emergency SOS to the notification ledger.
func (s *MonitorService) SendSOS(ctx context.Context, patientID string, guardianIDs []string, location *models.SOSLocation, vitals map[string]float64) (models.DeliveryReceipt, error) {
	if patientID == "" {
		return models.DeliveryReceipt{}, fmt.Errorf("patient_id is required")
	}
	return s.ledger.SendSOSAlert(ctx, patientID, guardianIDs, location, vitals), nil
}

// SendDailySummary forwards a daily report to the notification ledger.
func (s *MonitorService) SendDailySummary(ctx context.Context, patientID string, guardianIDs []string) (models.DeliveryReceipt, error) {
	if patientID == "" {
		return models.DeliveryReceipt{}, fmt.Errorf("patient_id is required")
	}
	return s.ledger.SendDailySummary(ctx, patientID, guardianIDs), nil
}

// Acknowledge marks a notification acknowledged; false when unknown.
func (s *MonitorService) Acknowledge(notificationID, acknowledgedBy string) bool {
	return s.ledger.AcknowledgeAlert(notificationID, acknowledgedBy)
}

// Unacknowledged lists the patient's pending threshold alerts.
func (s *MonitorService) Unacknowledged(patientID string) []models.Notification {
	return s.ledger.UnacknowledgedAlerts(patientID)
}

// Summary returns the patient's trailing-window alert summary.
func (s *MonitorService) Summary(patientID string, hours int) models.AlertSummary {
	if hours <= 0 {
		hours = 24
	}
	return s.ledger.AlertSummary(patientID, hours)
}

// LatestStatus returns the cached most recent monitoring result.
func (s *MonitorService) LatestStatus(ctx context.Context, patientID string) (*models.MonitoringResult, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("%w: %s", cache.ErrNoStatus, patientID)
	}
	return s.cache.GetLatest(ctx, patientID)
}
