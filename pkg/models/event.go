package models

import "time"

// EventType names the kind of real-time protection event.
type EventType string

const (
	EventFileCreated       EventType = "created"
	EventFileModified      EventType = "modified"
	EventFileMoved         EventType = "moved"
	EventProtectionStarted EventType = "protection_started"
	EventProtectionStopped EventType = "protection_stopped"
)

// Actions recorded on a ProtectionEvent after the monitor handled it.
const (
	ActionScanned        = "scanned"
	ActionQuarantined    = "quarantined"
	ActionThreatDetected = "threat_detected"
	ActionError          = "error"
)

// ProtectionEvent describes one file-system event observed by the real-time
// monitor and what was done about it.
type ProtectionEvent struct {
	Type      EventType   `json:"type"`
	FilePath  string      `json:"file_path,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Action    string      `json:"action,omitempty"`
	Result    *ScanResult `json:"result,omitempty"` // Set when the file was scanned
}
