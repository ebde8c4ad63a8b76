package models

import "time"

// Detection is the verdict of the detection pipeline for one file's content.
// A zero Detection means clean.
type Detection struct {
	Level       ThreatLevel     // Severity of the match
	Name        string          // Threat name, e.g. "EICAR-Test-File"
	Description string          // Human-readable explanation
	Method      DetectionMethod // Pipeline stage that matched
}

// IsThreat reports whether the detection denotes a real finding.
func (d Detection) IsThreat() bool {
	return d.Level.IsThreat()
}

// ScanResult records the outcome of scanning a single file. Results are
// immutable once produced.
type ScanResult struct {
	FilePath    string          `json:"file_path"`
	FileSize    int64           `json:"file_size"`
	FileHash    string          `json:"file_hash,omitempty"` // SHA-256 hex
	Level       ThreatLevel     `json:"threat_level"`
	ThreatName  string          `json:"threat_name,omitempty"`
	Description string          `json:"description,omitempty"`
	Method      DetectionMethod `json:"detection_method,omitempty"`
	ScanTime    time.Time       `json:"scan_time"`
}

// IsThreat reports whether the file was classified above clean.
func (r ScanResult) IsThreat() bool {
	return r.Level.IsThreat()
}
