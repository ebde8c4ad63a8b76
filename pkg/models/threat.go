package models

import "strings"

// ThreatLevel classifies how dangerous a detection is. Levels are ordered,
// so comparing two values with < and > is meaningful.
type ThreatLevel int

const (
	LevelClean ThreatLevel = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

// String returns the canonical upper-case name used in reports and in the
// quarantine journal.
func (l ThreatLevel) String() string {
	switch l {
	case LevelClean:
		return "CLEAN"
	case LevelLow:
		return "LOW"
	case LevelMedium:
		return "MEDIUM"
	case LevelHigh:
		return "HIGH"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseThreatLevel maps a level name back to its value. Matching is
// case-insensitive; the second return value reports whether the name was
// recognized.
func ParseThreatLevel(s string) (ThreatLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CLEAN":
		return LevelClean, true
	case "LOW":
		return LevelLow, true
	case "MEDIUM":
		return LevelMedium, true
	case "HIGH":
		return LevelHigh, true
	case "CRITICAL":
		return LevelCritical, true
	default:
		return LevelClean, false
	}
}

// IsThreat reports whether the level denotes an actual detection.
func (l ThreatLevel) IsThreat() bool {
	return l > LevelClean
}

// DetectionMethod identifies which stage of the detection pipeline produced
// a verdict.
type DetectionMethod string

const (
	MethodSignature DetectionMethod = "signature"
	MethodPattern   DetectionMethod = "pattern"
	MethodHeuristic DetectionMethod = "heuristic"

	// MethodManual marks files quarantined by an operator without a scan
	// verdict.
	MethodManual DetectionMethod = "manual"
)
