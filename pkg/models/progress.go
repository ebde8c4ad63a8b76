package models

import "time"

// ScanStatus is the orchestrator's lifecycle state.
type ScanStatus string

const (
	StatusIdle      ScanStatus = "idle"
	StatusCounting  ScanStatus = "counting"
	StatusScanning  ScanStatus = "scanning"
	StatusPaused    ScanStatus = "paused"
	StatusCancelled ScanStatus = "cancelled"
	StatusCompleted ScanStatus = "completed"
)

// ScanProgress is a point-in-time snapshot of a running scan. Snapshots are
// values; holding one never observes later mutation.
type ScanProgress struct {
	SessionID    string      `json:"session_id"`
	Status       ScanStatus  `json:"status"`
	TotalFiles   int         `json:"total_files"`
	ScannedFiles int         `json:"scanned_files"`
	ThreatsFound int         `json:"threats_found"`
	CurrentFile  string      `json:"current_file,omitempty"`
	StartTime    time.Time   `json:"start_time"`
	EndTime      time.Time   `json:"end_time,omitempty"`
	LastResult   *ScanResult `json:"-"`
}

// Percent returns scan completion in the range 0..100. Unknown totals
// report 0.
func (p ScanProgress) Percent() float64 {
	if p.TotalFiles <= 0 {
		return 0
	}
	return float64(p.ScannedFiles) / float64(p.TotalFiles) * 100
}

// Elapsed returns how long the scan ran, or has been running when it is
// still in flight.
func (p ScanProgress) Elapsed() time.Duration {
	if p.StartTime.IsZero() {
		return 0
	}
	if !p.EndTime.IsZero() {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}
