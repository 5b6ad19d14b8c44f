package threshold

import (
	"fmt"
	"math"
	"sort"
	"time"

	"fallvision-alarm/internal/models"

	"go.uber.org/zap"
)

// Brain-movement correlation cut points. Comparisons are strict-less-than
// against ascending thresholds, so exactly 0.65 is warning, not critical.
const (
	brainSyncCritical = 0.65
	brainSyncWarning  = 0.75
	brainSyncNormal   = 0.80
)

// Deviation-to-alert step function, in degrees beyond the safe bound.
const (
	deviationRed    = 15
	deviationOrange = 10
	deviationYellow = 5
)

// Checker evaluates limb angles and brain-movement correlation against
// safety bounds. Evaluation is pure over the inputs and the baseline;
// a Checker is safe for unlimited concurrent callers.
type Checker struct {
	baseline models.Baseline
	logger   *zap.Logger
}

// NewChecker creates a checker. A nil baseline selects the built-in
// safe-range table.
func NewChecker(baseline models.Baseline, logger *zap.Logger) *Checker {
	if baseline == nil {
		baseline = models.DefaultBaseline()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		baseline: baseline,
		logger:   logger,
	}
}

// CheckLimbAngle classifies a single limb angle. The angle itself is never
// range-validated; only its distance outside [min,max] matters. Unknown
// limbs return models.ErrUnknownLimb.
func (c *Checker) CheckLimbAngle(limb models.LimbID, angle float64) (models.LimbCheckResult, error) {
	rng, ok := c.baseline[limb]
	if !ok {
		c.logger.Error("Invalid limb identifier",
			zap.String("limb", string(limb)),
		)
		return models.LimbCheckResult{}, fmt.Errorf("%w: %s", models.ErrUnknownLimb, limb)
	}

	deviation := math.Abs(angle - rng.Optimal)

	var deviationFromRange float64
	direction := models.DirectionWithin
	switch {
	case angle < rng.Min:
		deviationFromRange = rng.Min - angle
		direction = models.DirectionBelow
	case angle > rng.Max:
		deviationFromRange = angle - rng.Max
		direction = models.DirectionAbove
	}

	level := alertLevelFor(deviationFromRange)
	status := models.LimbStatusSafe
	if level != models.AlertNone {
		status = models.LimbStatusAlert
	}

	result := models.LimbCheckResult{
		Limb:               limb,
		Angle:              round1(angle),
		Status:             status,
		AlertLevel:         level,
		Deviation:          round1(deviation),
		DeviationFromRange: round1(deviationFromRange),
		Direction:          direction,
		SafeRange:          rng.String(),
		Optimal:            rng.Optimal,
		Timestamp:          time.Now(),
	}
	result.Message = limbMessage(result)

	c.logger.Debug("Checked limb angle",
		zap.String("limb", string(limb)),
		zap.Float64("angle", result.Angle),
		zap.String("status", string(status)),
	)
	return result, nil
}

// CheckBrainSync classifies a brain-movement correlation coefficient.
func (c *Checker) CheckBrainSync(correlation float64) models.BrainSyncResult {
	result := models.BrainSyncResult{
		Value:     round2(correlation),
		Timestamp: time.Now(),
	}

	switch {
	case correlation < brainSyncCritical:
		result.Status = models.BrainSyncCritical
		result.AlertLevel = models.AlertRed
		result.Message = fmt.Sprintf("🚨 CRITICAL: Brain-movement sync at %.2f - significantly below safe threshold. High fall risk!", correlation)
		result.Recommendation = "Immediate rest required. Notify guardian and clinician."
	case correlation < brainSyncWarning:
		result.Status = models.BrainSyncWarning
		result.AlertLevel = models.AlertOrange
		result.Message = fmt.Sprintf("⚠️ WARNING: Brain-movement sync at %.2f - below optimal range.", correlation)
		result.Recommendation = "Reduce physical activity. Take breaks. Monitor closely."
	case correlation < brainSyncNormal:
		result.Status = models.BrainSyncCaution
		result.AlertLevel = models.AlertYellow
		result.Message = fmt.Sprintf("⚡ Moderate brain-movement sync at %.2f.", correlation)
		result.Recommendation = "Continue current activities. Maintain awareness."
	default:
		result.Status = models.BrainSyncExcellent
		result.Message = fmt.Sprintf("✓ Excellent brain-movement sync at %.2f!", correlation)
		result.Recommendation = "All systems optimal. Continue normal activities."
	}

	c.logger.Debug("Checked brain sync",
		zap.Float64("correlation", result.Value),
		zap.String("status", string(result.Status)),
	)
	return result
}

// CheckAllLimbs evaluates every reading in order and builds the aggregate
// report. Results preserves reading order; Alerts is the alerting subset
// stably sorted by level priority (RED first). Readings for unknown limbs
// are skipped so one bad identifier never aborts the batch.
func (c *Checker) CheckAllLimbs(readings []models.LimbReading) models.LimbReport {
	report := models.LimbReport{Timestamp: time.Now()}

	for _, reading := range readings {
		result, err := c.CheckLimbAngle(reading.Limb, reading.Angle)
		if err != nil {
			c.logger.Warn("Skipping reading for unknown limb",
				zap.String("limb", string(reading.Limb)),
				zap.Error(err),
			)
			continue
		}
		report.Results = append(report.Results, result)
		if result.Status == models.LimbStatusAlert {
			report.Alerts = append(report.Alerts, result)
		}
	}

	sort.SliceStable(report.Alerts, func(i, j int) bool {
		return report.Alerts[i].AlertLevel.Priority() < report.Alerts[j].AlertLevel.Priority()
	})

	for _, alert := range report.Alerts {
		switch alert.AlertLevel {
		case models.AlertRed:
			report.CriticalCount++
		case models.AlertOrange:
			report.WarningCount++
		case models.AlertYellow:
			report.CautionCount++
		}
	}
	report.AlertCount = len(report.Alerts)

	c.logger.Info("Checked all limbs",
		zap.Int("readings", len(readings)),
		zap.Int("alert_count", report.AlertCount),
	)
	return report
}

// alertLevelFor maps degrees beyond the safe bound to an alert level.
// Boundary values belong to the higher bucket (exactly 5 is YELLOW,
// exactly 15 is RED).
func alertLevelFor(deviationFromRange float64) models.AlertLevel {
	switch {
	case deviationFromRange >= deviationRed:
		return models.AlertRed
	case deviationFromRange >= deviationOrange:
		return models.AlertOrange
	case deviationFromRange >= deviationYellow:
		return models.AlertYellow
	default:
		return models.AlertNone
	}
}

func limbMessage(r models.LimbCheckResult) string {
	display := r.Limb.Display()
	switch r.AlertLevel {
	case models.AlertRed:
		return fmt.Sprintf("🚨 CRITICAL: %s angle (%.1f°) is FAR OUTSIDE safe range (%.1f° %s threshold). Immediate intervention required!",
			display, r.Angle, r.DeviationFromRange, r.Direction)
	case models.AlertOrange:
		return fmt.Sprintf("⚠️ WARNING: %s angle (%.1f°) is approaching danger zone (%.1f° %s threshold). Monitor closely.",
			display, r.Angle, r.DeviationFromRange, r.Direction)
	case models.AlertYellow:
		return fmt.Sprintf("⚡ CAUTION: %s angle (%.1f°) is slightly outside normal range (%.1f° %s threshold).",
			display, r.Angle, r.DeviationFromRange, r.Direction)
	default:
		return fmt.Sprintf("✓ %s angle (%.1f°) is within safe range.", display, r.Angle)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
