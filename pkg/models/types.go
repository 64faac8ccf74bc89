package models

import "time"

//-- Signatures --

// Signature is a known-threat fingerprint. The content hash is the unique key;
// a signature is never mutated after insertion.
//
// The json field names mirror the legacy definitions schema (hash, name, type,
// severity) so exported definition sets stay interchangeable.
type Signature struct {
	Hash     string   `json:"hash"`
	Name     string   `json:"name"`
	Category string   `json:"type"`
	Severity Severity `json:"severity"`
}

//-- Findings --

// ThreatFinding is produced for a single scanned file. Immutable.
type ThreatFinding struct {
	Path       string          `json:"path"`
	ThreatName string          `json:"name"`
	Category   string          `json:"type"`
	Severity   Severity        `json:"severity"`
	Method     DetectionMethod `json:"method"`
	DetectedAt time.Time       `json:"detected_at"`
}

//-- Scan Runs --

// ScanRun is the history record appended when a scan finishes, whether it ran
// to completion or was stopped by the user.
type ScanRun struct {
	ScanType     ScanType  `json:"scan_type"`
	FilesScanned int       `json:"files_scanned"`
	ThreatsFound int       `json:"threats_found"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

//-- Quarantine --

// QuarantineEntry records one isolated file. The on-disk quarantine log is an
// ordered JSON array of these objects; the field names are the wire format and
// must not change.
type QuarantineEntry struct {
	OriginalPath   string `json:"original_path"`
	QuarantinePath string `json:"quarantine_path"`
	Timestamp      string `json:"timestamp"`
}

// QuarantineStatus classifies whether the isolated file is still on disk.
const (
	QuarantineSecured = "Secured"
	QuarantineMissing = "Missing"
)

//-- Schedule --

// ScheduleConfig is the persisted daily-scan trigger. LastRun is maintained by
// the scheduler itself, never by the user, and enforces at most one triggered
// scan per calendar day.
type ScheduleConfig struct {
	Enabled bool     `json:"enabled"`
	Type    ScanType `json:"type"`
	Time    string   `json:"time"`     // "HH:mm"
	LastRun string   `json:"last_run"` // "YYYY-MM-DD" or ""
}

//-- Events --

// Progress is a point-in-time snapshot emitted per scanned file. Percent is
// monotonically non-decreasing within a run and capped at 99 until the
// finished event fires.
type Progress struct {
	Percent     int    `json:"percent"`
	CurrentPath string `json:"current_path"`
	ETA         string `json:"eta"`
}

//-- CLI Output --

// ScanOutput is the JSON document a scan command prints on completion.
type ScanOutput struct {
	Target       string          `json:"target"`
	ScanType     ScanType        `json:"scan_type"`
	Outcome      ScanOutcome     `json:"outcome"`
	FilesScanned int             `json:"files_scanned"`
	ThreatsFound int             `json:"threats_found"`
	DurationSecs float64         `json:"duration_seconds"`
	Findings     []ThreatFinding `json:"findings"`
	Summary      ScanSummary     `json:"summary"`
	Error        string          `json:"error,omitempty"`
}

// ScanSummary buckets findings by severity.
type ScanSummary struct {
	CriticalThreats int `json:"critical"`
	HighThreats     int `json:"high"`
	MediumThreats   int `json:"medium"`
	LowThreats      int `json:"low"`
	TotalThreats    int `json:"total_threats"`
}

// Tally increments the bucket for one finding.
func (s *ScanSummary) Tally(f ThreatFinding) {
	switch f.Severity {
	case SeverityCritical:
		s.CriticalThreats++
	case SeverityHigh:
		s.HighThreats++
	case SeverityMedium:
		s.MediumThreats++
	case SeverityLow:
		s.LowThreats++
	}
	s.TotalThreats++
}
