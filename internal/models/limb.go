package models

import (
	"errors"
	"fmt"
)

// LimbID identifies one of the four monitored body segments.
type LimbID string

const (
	LimbRightArm LimbID = "right_arm"
	LimbLeftArm  LimbID = "left_arm"
	LimbRightLeg LimbID = "right_leg"
	LimbLeftLeg  LimbID = "left_leg"
)

// AllLimbs is the canonical evaluation order for map-shaped callers.
var AllLimbs = []LimbID{LimbRightArm, LimbLeftArm, LimbRightLeg, LimbLeftLeg}

var limbDisplayNames = map[LimbID]string{
	LimbRightArm: "Right Arm",
	LimbLeftArm:  "Left Arm",
	LimbRightLeg: "Right Leg",
	LimbLeftLeg:  "Left Leg",
}

// ErrUnknownLimb is returned when a reading carries a limb identifier
// outside the closed LimbID set.
var ErrUnknownLimb = errors.New("unknown limb identifier")

// Display returns the human-readable limb name used in alert messages.
func (l LimbID) Display() string {
	if name, ok := limbDisplayNames[l]; ok {
		return name
	}
	return string(l)
}

// SafeRange is the non-alerting angle interval for a limb, in degrees.
// Optimal is informational only and never affects the alert level.
type SafeRange struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Optimal float64 `json:"optimal" yaml:"optimal"`
}

// String renders the range the way alert payloads display it, e.g. "70-110°".
func (r SafeRange) String() string {
	return fmt.Sprintf("%g-%g°", r.Min, r.Max)
}

// Baseline maps each limb to its safe range. Callers may supply a per-user
// baseline; DefaultBaseline returns the standard biomechanical table.
type Baseline map[LimbID]SafeRange

// DefaultBaseline returns a fresh copy of the standard biomechanical
// thresholds so per-user overrides never mutate the defaults.
func DefaultBaseline() Baseline {
	return Baseline{
		LimbRightArm: {Min: 70, Max: 110, Optimal: 85},
		LimbLeftArm:  {Min: 70, Max: 110, Optimal: 82},
		LimbRightLeg: {Min: 155, Max: 175, Optimal: 168},
		LimbLeftLeg:  {Min: 155, Max: 175, Optimal: 165},
	}
}

// LimbReading is one caller-supplied angle measurement. Readings are
// evaluated in slice order and never persisted.
type LimbReading struct {
	Limb  LimbID  `json:"limb"`
	Angle float64 `json:"angle"`
}

// ReadingsFromMap converts a limb→angle map into ordered readings using the
// canonical limb order. Limbs absent from the map are skipped.
func ReadingsFromMap(angles map[LimbID]float64) []LimbReading {
	readings := make([]LimbReading, 0, len(angles))
	for _, limb := range AllLimbs {
		if angle, ok := angles[limb]; ok {
			readings = append(readings, LimbReading{Limb: limb, Angle: angle})
		}
	}
	return readings
}
