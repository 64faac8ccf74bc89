package scan

import "github.com/git-atharvb/nexashield-app/pkg/models"

// EventSink receives the controller's event stream. Findings are delivered
// immediately in filesystem-walk order, never batched, so a caller can react
// (quarantine, render) while the scan is still running. Methods are invoked
// from the scan worker goroutine.
type EventSink interface {
	Progress(p models.Progress)
	ThreatFound(f models.ThreatFinding)
	// Finished fires exactly once per run, for completed and stopped runs
	// alike, carrying total files processed and total threats found.
	Finished(filesScanned, threatsFound int)
}

// EventFuncs adapts plain callbacks to EventSink. Nil funcs are skipped.
type EventFuncs struct {
	OnProgress func(p models.Progress)
	OnThreat   func(f models.ThreatFinding)
	OnFinished func(filesScanned, threatsFound int)
}

func (e EventFuncs) Progress(p models.Progress) {
	if e.OnProgress != nil {
		e.OnProgress(p)
	}
}

func (e EventFuncs) ThreatFound(f models.ThreatFinding) {
	if e.OnThreat != nil {
		e.OnThreat(f)
	}
}

func (e EventFuncs) Finished(filesScanned, threatsFound int) {
	if e.OnFinished != nil {
		e.OnFinished(filesScanned, threatsFound)
	}
}
