package models

import "time"

// AlertLevel is the closed severity enumeration. Priority ordering
// (RED before ORANGE before YELLOW) drives alert sorting and notification
// urgency; AlertNone marks a safe result.
type AlertLevel string

const (
	AlertNone   AlertLevel = ""
	AlertRed    AlertLevel = "RED"
	AlertOrange AlertLevel = "ORANGE"
	AlertYellow AlertLevel = "YELLOW"
)

// AlertLevelConfig is the fixed display metadata attached to each level.
type AlertLevelConfig struct {
	Priority          int    `json:"priority"`
	Label             string `json:"label"`
	Color             string `json:"color"`
	Icon              string `json:"icon"`
	NotifyImmediately bool   `json:"notify_immediately"`
}

var alertLevelConfigs = map[AlertLevel]AlertLevelConfig{
	AlertRed: {
		Priority:          1,
		Label:             "CRITICAL",
		Color:             "#C0392B",
		Icon:              "fa-circle-exclamation",
		NotifyImmediately: true,
	},
	AlertOrange: {
		Priority:          2,
		Label:             "WARNING",
		Color:             "#D4A017",
		Icon:              "fa-triangle-exclamation",
		NotifyImmediately: false,
	},
	AlertYellow: {
		Priority:          3,
		Label:             "CAUTION",
		Color:             "#F5C842",
		Icon:              "fa-circle-info",
		NotifyImmediately: false,
	},
}

// Config returns the display metadata for the level. The second return is
// false for AlertNone and unrecognized values.
func (l AlertLevel) Config() (AlertLevelConfig, bool) {
	cfg, ok := alertLevelConfigs[l]
	return cfg, ok
}

// Priority returns the sort priority; lower sorts first. AlertNone sorts
// after every real level.
func (l AlertLevel) Priority() int {
	if cfg, ok := alertLevelConfigs[l]; ok {
		return cfg.Priority
	}
	return len(alertLevelConfigs) + 1
}

// LimbStatus classifies a single limb check.
type LimbStatus string

const (
	LimbStatusSafe  LimbStatus = "safe"
	LimbStatusAlert LimbStatus = "alert"
)

// Direction reports where the angle sits relative to the safe range.
type Direction string

const (
	DirectionBelow  Direction = "below"
	DirectionAbove  Direction = "above"
	DirectionWithin Direction = "within"
)

// LimbCheckResult is the immutable outcome of evaluating one limb reading.
// AlertLevel is non-empty exactly when Status is LimbStatusAlert.
type LimbCheckResult struct {
	Limb               LimbID     `json:"limb"`
	Angle              float64    `json:"angle"`
	Status             LimbStatus `json:"status"`
	AlertLevel         AlertLevel `json:"alert_level,omitempty"`
	Deviation          float64    `json:"deviation"`
	DeviationFromRange float64    `json:"deviation_from_range"`
	Direction          Direction  `json:"direction"`
	SafeRange          string     `json:"safe_range"`
	Optimal            float64    `json:"optimal"`
	Timestamp          time.Time  `json:"timestamp"`
	Message            string     `json:"message"`
}

// BrainSyncStatus classifies the brain-movement correlation reading.
type BrainSyncStatus string

const (
	BrainSyncCritical  BrainSyncStatus = "critical"
	BrainSyncWarning   BrainSyncStatus = "warning"
	BrainSyncCaution   BrainSyncStatus = "caution"
	BrainSyncExcellent BrainSyncStatus = "excellent"
)

// BrainSyncResult is the outcome of evaluating a brain-movement
// correlation coefficient.
type BrainSyncResult struct {
	Value          float64         `json:"value"`
	Status         BrainSyncStatus `json:"status"`
	AlertLevel     AlertLevel      `json:"alert_level,omitempty"`
	Message        string          `json:"message"`
	Recommendation string          `json:"recommendation"`
	Timestamp      time.Time       `json:"timestamp"`
}

// LimbReport aggregates the per-limb results of one evaluation batch.
// Results preserves reading order; Alerts is the alerting subset sorted by
// level priority (stable on ties).
type LimbReport struct {
	Results       []LimbCheckResult `json:"results"`
	Alerts        []LimbCheckResult `json:"alerts"`
	AlertCount    int               `json:"alert_count"`
	CriticalCount int               `json:"critical_count"`
	WarningCount  int               `json:"warning_count"`
	CautionCount  int               `json:"caution_count"`
	Timestamp     time.Time         `json:"timestamp"`
}
