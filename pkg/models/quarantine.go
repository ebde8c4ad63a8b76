package models

// QuarantinedItem is one record in the quarantine journal. Field names match
// the on-disk JSON document, which is the single source of truth for the
// store.
type QuarantinedItem struct {
	ID              string `json:"id"`
	OriginalPath    string `json:"original_path"`
	QuarantinePath  string `json:"quarantine_path"`
	FileHash        string `json:"file_hash"`
	FileSize        int64  `json:"file_size"`
	ThreatName      string `json:"threat_name"`
	ThreatLevel     string `json:"threat_level"`
	ThreatDesc      string `json:"threat_description"`
	QuarantineDate  string `json:"quarantine_date"` // RFC 3339
	DetectionMethod string `json:"detection_method"`
}

// Level parses the stored threat level name. Records written by other
// versions may carry names this build does not know; those read as CLEAN.
func (q QuarantinedItem) Level() ThreatLevel {
	level, _ := ParseThreatLevel(q.ThreatLevel)
	return level
}
