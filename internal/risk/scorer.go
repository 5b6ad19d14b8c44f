package risk

import (
	"fmt"
	"math"
	"time"

	"fallvision-alarm/internal/models"
	"fallvision-alarm/internal/threshold"

	"go.uber.org/zap"
)

// Per-signal weights of the composite score.
const (
	limbWeightRed    = 30
	limbWeightOrange = 15
	limbWeightYellow = 5
	maxLimbRisk      = 40

	brainRiskCritical = 40
	brainRiskWarning  = 25
	brainRiskCaution  = 10

	postureWeight = 0.2
	maxTotalRisk  = 100
)

// Risk level cut points on the composite score.
const (
	riskModerateFrom = 20
	riskHighFrom     = 35
)

// Scorer combines limb alerts, brain-sync status and posture stability
// into one composite fall-risk score. Pure over its inputs; safe for
// concurrent callers.
type Scorer struct {
	checker *threshold.Checker
	logger  *zap.Logger
}

// NewScorer creates a scorer on top of an existing checker.
func NewScorer(checker *threshold.Checker, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{
		checker: checker,
		logger:  logger,
	}
}

// Score computes the composite risk score. postureScore is expected in
// [0,100]; values above 100 simply contribute zero posture risk.
func (s *Scorer) Score(readings []models.LimbReading, brainCorrelation float64, postureScore float64) models.RiskScore {
	report := s.checker.CheckAllLimbs(readings)

	var limbRisk float64
	for _, result := range report.Results {
		switch result.AlertLevel {
		case models.AlertRed:
			limbRisk += limbWeightRed
		case models.AlertOrange:
			limbRisk += limbWeightOrange
		case models.AlertYellow:
			limbRisk += limbWeightYellow
		}
	}
	if limbRisk > maxLimbRisk {
		limbRisk = maxLimbRisk
	}

	brain := s.checker.CheckBrainSync(brainCorrelation)
	var brainRisk float64
	switch brain.Status {
	case models.BrainSyncCritical:
		brainRisk = brainRiskCritical
	case models.BrainSyncWarning:
		brainRisk = brainRiskWarning
	case models.BrainSyncCaution:
		brainRisk = brainRiskCaution
	}

	postureRisk := math.Max(0, maxTotalRisk-postureScore) * postureWeight

	totalRisk := limbRisk + brainRisk + postureRisk
	if totalRisk > maxTotalRisk {
		totalRisk = maxTotalRisk
	}

	level := riskLevelFor(totalRisk)

	score := models.RiskScore{
		TotalRisk: round1(totalRisk),
		Level:     level,
		Color:     level.Color(),
		Breakdown: models.RiskBreakdown{
			LimbRisk:    round1(limbRisk),
			BrainRisk:   round1(brainRisk),
			PostureRisk: round1(postureRisk),
		},
		LimbAlerts:      report.AlertCount,
		BrainStatus:     brain.Status,
		Recommendations: s.recommendations(level, report, brain),
		Timestamp:       time.Now(),
	}

	s.logger.Info("Calculated risk score",
		zap.Float64("total_risk", score.TotalRisk),
		zap.String("risk_level", string(level)),
		zap.Int("limb_alerts", report.AlertCount),
		zap.String("brain_status", string(brain.Status)),
	)
	return score
}

// recommendations builds the action list for the level, then prepends the
// signal-specific lines. The brain line is prepended last so it ends up
// first when both apply.
func (s *Scorer) recommendations(level models.RiskLevel, report models.LimbReport, brain models.BrainSyncResult) []string {
	recommendations := RecommendationsFor(level)

	if report.CriticalCount > 0 {
		recommendations = prepend(recommendations,
			fmt.Sprintf("⚠️ %d limb(s) in critical range - seek medical attention", report.CriticalCount))
	}
	if brain.Status == models.BrainSyncCritical || brain.Status == models.BrainSyncWarning {
		recommendations = prepend(recommendations,
			"🧠 Low brain-movement sync detected - rest recommended")
	}
	return recommendations
}

func riskLevelFor(totalRisk float64) models.RiskLevel {
	switch {
	case totalRisk < riskModerateFrom:
		return models.RiskLow
	case totalRisk < riskHighFrom:
		return models.RiskModerate
	default:
		return models.RiskHigh
	}
}

func prepend(list []string, entry string) []string {
	return append([]string{entry}, list...)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
