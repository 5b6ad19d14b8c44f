package risk

import "fallvision-alarm/internal/models"

// RecommendationsFor returns the fixed action list for a risk level,
// most urgent entry first. A fresh slice is returned on every call so
// callers may prepend without aliasing.
func RecommendationsFor(level models.RiskLevel) []string {
	switch level {
	case models.RiskHigh:
		return []string{
			"🚨 IMMEDIATE ACTION: Contact guardian/caregiver now",
			"🛑 STOP all physical activities immediately",
			"💺 Sit or lie down in a safe location",
			"📞 Keep phone nearby for emergency calls",
		}
	case models.RiskModerate:
		return []string{
			"⚠️ Reduce activity level and movement speed",
			"👀 Ensure caregiver is aware of your status",
			"🚶 Move slowly and deliberately",
			"🪑 Use support (walls, railings, walker)",
		}
	default:
		return []string{
			"✓ Continue normal activities with standard precautions",
			"💪 Maintain regular exercise routine",
			"📊 Keep monitoring as scheduled",
		}
	}
}
