package models

import "time"

//-- Scan Types --

// ScanType selects the target set and the progress strategy for a run.
type ScanType string

const (
	ScanQuick  ScanType = "Quick"
	ScanFull   ScanType = "Full"
	ScanCustom ScanType = "Custom"
	ScanFile   ScanType = "File"
)

// Valid reports whether t is one of the four supported scan types.
func (t ScanType) Valid() bool {
	switch t {
	case ScanQuick, ScanFull, ScanCustom, ScanFile:
		return true
	}
	return false
}

//-- Severity --

type Severity string

const (
	//  threats that demand immediate removal (active ransomware families).
	SeverityCritical Severity = "Critical"
	//  confirmed malware signatures.
	SeverityHigh Severity = "High"
	//  heuristic matches that warrant review.
	SeverityMedium Severity = "Medium"
	//  low-confidence or informational detections.
	SeverityLow Severity = "Low"
)

// Rank orders severities for summaries. Unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

//-- Threat Categories --

const (
	CategoryVirus      = "Virus"
	CategoryRansomware = "Ransomware"
	CategorySuspicious = "Suspicious"
)

//-- Detection Methods --

type DetectionMethod string

const (
	//  exact content-hash match against the signature store.
	MethodSignature DetectionMethod = "Signature"
	//  rule-of-thumb filename analysis, no signature involved.
	MethodHeuristic DetectionMethod = "Heuristic"
	//  a hash typed in by the operator rather than computed from a file.
	MethodManual DetectionMethod = "Manual Check"
)

//-- Controller States --

type ScanState string

const (
	StateIdle    ScanState = "Idle"
	StateRunning ScanState = "Running"
	StatePaused  ScanState = "Paused"
)

// ScanOutcome records how the most recent run ended.
type ScanOutcome string

const (
	OutcomeNone      ScanOutcome = ""
	OutcomeCompleted ScanOutcome = "Completed"
	OutcomeStopped   ScanOutcome = "Stopped"
)

//-- Limits & Defaults --

const (
	// FilePermSecure enforces strict owner-only access on quarantine logs and
	// config files to prevent local data leakage.
	FilePermSecure = 0600

	// DefaultHashChunkSize is the read buffer for streamed hashing. The chunk
	// size affects I/O throughput only, never the resulting digest.
	DefaultHashChunkSize = 64 * 1024

	// prevents memory exhaustion by capping the size of JSON logs parsed into memory.
	MaxLogFileBytes = 64 * 1024 * 1024 // 64 MB

	// DefaultSchedulerInterval is the poll cadence for the daily-scan trigger.
	DefaultSchedulerInterval = time.Minute

	// TimestampLayout is the wire format for quarantine log timestamps.
	TimestampLayout = "2006-01-02 15:04:05"
	// ClockLayout is the HH:mm trigger format used by the schedule config.
	ClockLayout = "15:04"
	// DateLayout is the calendar-day format for the schedule's last_run field.
	DateLayout = "2006-01-02"
)

// SuspiciousExtensions lists the executable-adjacent suffixes the double
// extension heuristic fires on.
var SuspiciousExtensions = []string{".exe", ".bat", ".vbs"}
