package models

import "time"

// RiskLevel is the composite fall-risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

var riskLevelColors = map[RiskLevel]string{
	RiskLow:      "#2D8C6E",
	RiskModerate: "#D4A017",
	RiskHigh:     "#C0392B",
}

// Color returns the fixed display color for the level.
func (l RiskLevel) Color() string {
	return riskLevelColors[l]
}

// RiskBreakdown itemizes the composite score by contributing signal.
type RiskBreakdown struct {
	LimbRisk    float64 `json:"limb_risk"`
	BrainRisk   float64 `json:"brain_risk"`
	PostureRisk float64 `json:"posture_risk"`
}

// RiskScore is the composite 0-100 fall-risk result. TotalRisk is always
// clamped to [0,100]; Recommendations is ordered with the most urgent
// action first.
type RiskScore struct {
	TotalRisk       float64         `json:"total_risk"`
	Level           RiskLevel       `json:"risk_level"`
	Color           string          `json:"risk_color"`
	Breakdown       RiskBreakdown   `json:"breakdown"`
	LimbAlerts      int             `json:"limb_alerts"`
	BrainStatus     BrainSyncStatus `json:"brain_status"`
	Recommendations []string        `json:"recommendations"`
	Timestamp       time.Time       `json:"timestamp"`
}

// MonitoringResult bundles everything produced by one monitoring check.
// It is what the caller consumes and what the latest-status cache mirrors.
type MonitoringResult struct {
	Report    LimbReport      `json:"report"`
	BrainSync BrainSyncResult `json:"brain_sync"`
	Risk      RiskScore       `json:"risk"`
	Timestamp time.Time       `json:"timestamp"`
}
